package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

func TestUserStoreDuplicateEmail(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &models.User{Email: "a@example.com"}))
	err := s.Insert(ctx, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestUserStoreVerificationLifecycle(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	u := &models.User{Email: "a@example.com"}
	require.NoError(t, s.Insert(ctx, u))

	expiry := time.Now().Add(10 * time.Minute)
	require.NoError(t, s.SetVerification(ctx, u.ID, "123456", expiry))

	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.VerificationCode)
	assert.Equal(t, "123456", *got.VerificationCode)
	assert.False(t, got.IsVerified)

	require.NoError(t, s.MarkVerified(ctx, u.ID))
	got, err = s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.VerificationCode)
	assert.Nil(t, got.VerificationExpiry)
}

func TestUserStoreCart(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	u := &models.User{Email: "a@example.com"}
	require.NoError(t, s.Insert(ctx, u))

	items := map[string]int{"p1": 2, "p2": 1}
	require.NoError(t, s.UpdateCart(ctx, u.ID, items))

	// The stored cart must not alias the caller's map.
	items["p1"] = 99
	got, err := s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CartItems["p1"])

	require.NoError(t, s.ClearCart(ctx, u.ID))
	got, err = s.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CartItems)
}

func TestProductStoreListBySeller(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()

	sellerA := primitive.NewObjectID()
	sellerB := primitive.NewObjectID()
	require.NoError(t, s.Insert(ctx, &models.Product{SellerID: sellerA, Name: "Apples"}))
	require.NoError(t, s.Insert(ctx, &models.Product{SellerID: sellerA, Name: "Pears"}))
	require.NoError(t, s.Insert(ctx, &models.Product{SellerID: sellerB, Name: "Milk"}))

	mine, err := s.ListBySeller(ctx, sellerA)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProductStoreSetStock(t *testing.T) {
	s := NewProductStore()
	ctx := context.Background()

	p := &models.Product{Name: "Apples", InStock: true}
	require.NoError(t, s.Insert(ctx, p))
	require.NoError(t, s.SetStock(ctx, p.ID, false))

	got, err := s.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.InStock)

	assert.ErrorIs(t, s.SetStock(ctx, primitive.NewObjectID(), true), store.ErrNotFound)
}

func TestOrderStoreMarkPaid(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	o := &models.Order{PaymentType: models.PaymentOnline}
	require.NoError(t, s.Insert(ctx, o))

	transitioned, err := s.MarkPaid(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// Second call is a no-op, not an error.
	transitioned, err = s.MarkPaid(ctx, o.ID)
	require.NoError(t, err)
	assert.False(t, transitioned)

	_, err = s.MarkPaid(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderStoreDeleteTolerant(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	o := &models.Order{PaymentType: models.PaymentOnline}
	require.NoError(t, s.Insert(ctx, o))

	require.NoError(t, s.Delete(ctx, o.ID))
	require.NoError(t, s.Delete(ctx, o.ID))

	_, err := s.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrderStoreListVisibility(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	now := time.Now()
	cod := &models.Order{UserID: userID, PaymentType: models.PaymentCOD, CreatedAt: now.Add(-2 * time.Hour)}
	unpaidOnline := &models.Order{UserID: userID, PaymentType: models.PaymentOnline, CreatedAt: now.Add(-time.Hour)}
	paidOnline := &models.Order{UserID: userID, PaymentType: models.PaymentOnline, IsPaid: true, CreatedAt: now}
	for _, o := range []*models.Order{cod, unpaidOnline, paidOnline} {
		require.NoError(t, s.Insert(ctx, o))
	}

	got, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first, unpaid online order hidden.
	assert.Equal(t, paidOnline.ID, got[0].ID)
	assert.Equal(t, cod.ID, got[1].ID)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderStoreDeleteStaleUnpaidOnline(t *testing.T) {
	s := NewOrderStore()
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	stale := &models.Order{PaymentType: models.PaymentOnline, CreatedAt: old}
	paid := &models.Order{PaymentType: models.PaymentOnline, IsPaid: true, CreatedAt: old}
	cod := &models.Order{PaymentType: models.PaymentCOD, CreatedAt: old}
	for _, o := range []*models.Order{stale, paid, cod} {
		require.NoError(t, s.Insert(ctx, o))
	}

	n, err := s.DeleteStaleUnpaidOnline(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetByID(ctx, stale.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetByID(ctx, paid.ID)
	assert.NoError(t, err)
	_, err = s.GetByID(ctx, cod.ID)
	assert.NoError(t, err)
}

func TestAddressStoreListByUser(t *testing.T) {
	s := NewAddressStore()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	require.NoError(t, s.Insert(ctx, &models.Address{UserID: userID, City: "Pune"}))
	require.NoError(t, s.Insert(ctx, &models.Address{UserID: primitive.NewObjectID(), City: "Delhi"}))

	got, err := s.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pune", got[0].City)
}

func TestSellerStoreGetByEmail(t *testing.T) {
	s := NewSellerStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, &models.Seller{Email: "shop@example.com", Name: "Shop"}))

	got, err := s.GetByEmail(ctx, "shop@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Shop", got.Name)

	_, err = s.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
