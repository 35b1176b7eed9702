// Package store defines the persistence interfaces the rest of the
// application depends on. MongoDB implementations live in store/mongo;
// in-memory implementations used by tests live in store/memory.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// UserStore persists customer accounts. The cart lives on the user
// document, so cart mutations go through here too.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerification(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateCart(ctx context.Context, id primitive.ObjectID, items map[string]int) error
	ClearCart(ctx context.Context, id primitive.ObjectID) error
}

type SellerStore interface {
	Insert(ctx context.Context, seller *models.Seller) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Seller, error)
	GetByEmail(ctx context.Context, email string) (*models.Seller, error)
	SetVerification(ctx context.Context, id primitive.ObjectID, code string, expiry time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
}

type ProductStore interface {
	Insert(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListBySeller(ctx context.Context, sellerID primitive.ObjectID) ([]models.Product, error)
	SetStock(ctx context.Context, id primitive.ObjectID, inStock bool) error
}

type AddressStore interface {
	Insert(ctx context.Context, address *models.Address) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Address, error)
}

// OrderStore persists orders. MarkPaid must be conditional on the order
// being unpaid so that replayed gateway events stay no-ops; it reports
// whether this call performed the transition. Delete is tolerant: deleting
// an absent order is not an error.
type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	MarkPaid(ctx context.Context, id primitive.ObjectID) (bool, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string, markPaid bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	DeleteStaleUnpaidOnline(ctx context.Context, before time.Time) (int64, error)
}
