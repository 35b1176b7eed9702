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

type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CartItems == nil {
		user.CartItems = map[string]int{}
	}

	_, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) SetVerification(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error {
	return s.update(ctx, id, bson.M{
		"verificationCode":   code,
		"verificationExpiry": expiry,
	})
}

func (s *UserStore) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": time.Now()},
		"$unset": bson.M{"verificationCode": "", "verificationExpiry": ""},
	})
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdateCart(ctx context.Context, id primitive.ObjectID, items map[string]int) error {
	if items == nil {
		items = map[string]int{}
	}
	return s.update(ctx, id, bson.M{"cartItems": items})
}

func (s *UserStore) ClearCart(ctx context.Context, id primitive.ObjectID) error {
	return s.update(ctx, id, bson.M{"cartItems": map[string]int{}})
}

func (s *UserStore) update(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
