package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

type SellerStore struct {
	coll *mongo.Collection
}

func (s *SellerStore) Insert(ctx context.Context, seller *models.Seller) error {
	if seller.ID.IsZero() {
		seller.ID = primitive.NewObjectID()
	}

	_, err := s.coll.InsertOne(ctx, seller)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert seller: %w", err)
	}
	return nil
}

func (s *SellerStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Seller, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *SellerStore) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *SellerStore) findOne(ctx context.Context, filter bson.M) (*models.Seller, error) {
	var seller models.Seller
	err := s.coll.FindOne(ctx, filter).Decode(&seller)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find seller: %w", err)
	}
	return &seller, nil
}

func (s *SellerStore) SetVerification(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"verificationCode":   code,
		"verificationExpiry": expiry,
		"updatedAt":          time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("failed to set seller verification: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *SellerStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": time.Now()},
		"$unset": bson.M{"verificationCode": "", "verificationExpiry": ""},
	})
	if err != nil {
		return fmt.Errorf("failed to mark seller verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
