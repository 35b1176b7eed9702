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

type OrderStore struct {
	coll *mongo.Collection
}

func (s *OrderStore) Insert(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	_, err := s.coll.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *OrderStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// MarkPaid flips isPaid on a single document, conditionally on it still
// being unpaid. The filter makes a replayed gateway event a no-op: the
// second delivery matches the document but modifies nothing.
func (s *OrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.coll.UpdateOne(
		ctx,
		bson.M{"_id": id, "isPaid": false},
		bson.M{"$set": bson.M{"isPaid": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}

	// Nothing matched: either the order is already paid or it is gone.
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	if n == 0 {
		return false, store.ErrNotFound
	}
	return false, nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, markPaid bool) error {
	set := bson.M{"orderStatus": status, "updatedAt": time.Now()}
	if markPaid {
		set["isPaid"] = true
	}

	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes an order. Deleting an order that no longer exists is
// deliberately not an error; failed-payment webhooks are re-delivered.
func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// visibleFilter restricts listings to orders a buyer or seller should
// see: COD orders, or card orders the gateway has confirmed.
func visibleFilter() bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"paymentType": models.PaymentCOD},
		bson.M{"isPaid": true},
	}}
}

func (s *OrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	filter := visibleFilter()
	filter["userId"] = userID
	return s.list(ctx, filter)
}

func (s *OrderStore) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.list(ctx, visibleFilter())
}

func (s *OrderStore) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (s *OrderStore) DeleteStaleUnpaidOnline(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{
		"paymentType": models.PaymentOnline,
		"isPaid":      false,
		"createdAt":   bson.M{"$lt": before},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale orders: %w", err)
	}
	return res.DeletedCount, nil
}
