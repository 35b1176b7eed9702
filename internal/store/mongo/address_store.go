package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

type AddressStore struct {
	coll *mongo.Collection
}

func (s *AddressStore) Insert(ctx context.Context, address *models.Address) error {
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}

	_, err := s.coll.InsertOne(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}
	return nil
}

func (s *AddressStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var address models.Address
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&address)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return &address, nil
}

func (s *AddressStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer cursor.Close(ctx)

	var addresses []models.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, fmt.Errorf("failed to decode addresses: %w", err)
	}
	return addresses, nil
}
