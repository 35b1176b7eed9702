package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

type ProductStore struct {
	coll *mongo.Collection
}

func (s *ProductStore) Insert(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}

	_, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *ProductStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *ProductStore) List(ctx context.Context) ([]models.Product, error) {
	return s.list(ctx, bson.M{})
}

func (s *ProductStore) ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error) {
	return s.list(ctx, bson.M{"sellerId": sellerID})
}

func (s *ProductStore) list(ctx context.Context, filter bson.M) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) SetStock(ctx context.Context, id primitive.ObjectID, inStock bool) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"inStock":   inStock,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
