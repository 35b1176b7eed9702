// Package mongo implements the store interfaces on top of MongoDB.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/greencart/greencart-golang/internal/logger"
)

// Stores bundles every MongoDB-backed store over a single client.
type Stores struct {
	client *mongo.Client
	db     *mongo.Database

	Users     *UserStore
	Sellers   *SellerStore
	Products  *ProductStore
	Addresses *AddressStore
	Orders    *OrderStore
}

// Connect dials MongoDB, verifies the connection and creates the unique
// indexes the data model relies on (user/seller email uniqueness).
func Connect(uri, dbName string, log *logger.Logger) (*Stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)

	for _, coll := range []string{"users", "sellers"} {
		_, err = db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %s email index: %w", coll, err)
		}
	}

	log.Info("Connected to MongoDB", "db", dbName)

	return &Stores{
		client:    client,
		db:        db,
		Users:     &UserStore{coll: db.Collection("users")},
		Sellers:   &SellerStore{coll: db.Collection("sellers")},
		Products:  &ProductStore{coll: db.Collection("products")},
		Addresses: &AddressStore{coll: db.Collection("addresses")},
		Orders:    &OrderStore{coll: db.Collection("orders")},
	}, nil
}

func (s *Stores) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
