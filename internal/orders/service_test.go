package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/config"
	"github.com/greencart/greencart-golang/internal/logger"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/payments"
	"github.com/greencart/greencart-golang/internal/store"
	"github.com/greencart/greencart-golang/internal/store/memory"
)

// --- Mocks ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, params payments.CheckoutParams) (string, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) VerifyEvent(payload []byte, sigHeader string) (payments.Event, error) {
	args := m.Called(payload, sigHeader)
	return args.Get(0).(payments.Event), args.Error(1)
}

func (m *MockGateway) SessionMetadata(ctx context.Context, paymentIntentID string) (string, string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.String(1), args.Error(2)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, html string) error {
	args := m.Called(to, subject, html)
	return args.Error(0)
}

// sentSubjects collects the subjects of every email the mock saw.
func (m *MockMailer) sentSubjects() []string {
	var out []string
	for _, call := range m.Calls {
		if call.Method == "Send" {
			out = append(out, call.Arguments.String(1))
		}
	}
	return out
}

// --- Test fixture ---

type fixture struct {
	svc       *Service
	orders    *memory.OrderStore
	products  *memory.ProductStore
	users     *memory.UserStore
	addresses *memory.AddressStore
	gateway   *MockGateway
	mailer    *MockMailer

	user    *models.User
	address *models.Address
	product *models.Product
}

func defaultPricing() config.PricingConfig {
	return config.PricingConfig{
		TaxRate:           0.04,
		ShippingThreshold: 150,
		ShippingFlat:      20,
		MinOnlineAmount:   50,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		orders:    memory.NewOrderStore(),
		products:  memory.NewProductStore(),
		users:     memory.NewUserStore(),
		addresses: memory.NewAddressStore(),
		gateway:   new(MockGateway),
		mailer:    new(MockMailer),
	}

	f.svc = NewService(defaultPricing(), Stores{
		Orders:    f.orders,
		Products:  f.products,
		Users:     f.users,
		Addresses: f.addresses,
	}, f.gateway, f.mailer, nil, logger.New())

	ctx := context.Background()

	f.user = &models.User{Name: "Ana", Email: "ana@example.com", CartItems: map[string]int{"x": 1}}
	require.NoError(t, f.users.Insert(ctx, f.user))

	f.address = &models.Address{UserID: f.user.ID, City: "Pune", Street: "12 Main St"}
	require.NoError(t, f.addresses.Insert(ctx, f.address))

	f.product = &models.Product{Name: "Organic Apples", Price: 120, OfferPrice: 100, InStock: true}
	require.NoError(t, f.products.Insert(ctx, f.product))

	return f
}

func (f *fixture) items(qty int) []models.OrderItem {
	return []models.OrderItem{{ProductID: f.product.ID, Quantity: qty}}
}

// countOrders avoids relying on listing visibility rules.
func countOrders(t *testing.T, s *memory.OrderStore, ids ...primitive.ObjectID) int {
	t.Helper()
	n := 0
	for _, id := range ids {
		if _, err := s.GetByID(context.Background(), id); err == nil {
			n++
		}
	}
	return n
}

// --- Totals ---

func TestComputeTotals(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		base     float64
		tax      float64
		shipping float64
		amount   float64
	}{
		{"above free shipping threshold", 200, 8, 0, 208},
		{"below threshold pays flat shipping", 100, 4, 20, 124},
		{"just under the threshold", 149.99, 5, 20, 174.99},
		{"tax is floored", 130, 5, 20, 155}, // 130*0.04 = 5.2 -> 5
		{"exactly at threshold ships free", 150, 6, 0, 156},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := f.svc.ComputeTotals(tc.base)
			assert.Equal(t, tc.tax, got.Tax)
			assert.Equal(t, tc.shipping, got.Shipping)
			assert.InDelta(t, tc.amount, got.Amount, 1e-9)
		})
	}
}

// --- COD checkout ---

func TestPlaceCOD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	order, err := f.svc.PlaceCOD(ctx, f.user.ID, f.items(2), f.address.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCOD, order.PaymentType)
	assert.Equal(t, models.StatusPreparing, order.Status)
	assert.False(t, order.IsPaid)
	assert.Equal(t, 208.0, order.Amount) // 2*100 + floor(8) tax, free shipping

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Amount, stored.Amount)

	assert.Equal(t, []string{"Order Placed - GreenCart"}, f.mailer.sentSubjects())
}

func TestPlaceCODRejectsForeignAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Address{UserID: primitive.NewObjectID(), City: "Delhi"}
	require.NoError(t, f.addresses.Insert(ctx, other))

	_, err := f.svc.PlaceCOD(ctx, f.user.ID, f.items(1), other.ID)
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = f.svc.PlaceCOD(ctx, f.user.ID, f.items(1), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidAddress)

	f.mailer.AssertNotCalled(t, "Send")
}

func TestPlaceCODValidatesItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.PlaceCOD(ctx, f.user.ID, nil, f.address.ID)
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = f.svc.PlaceCOD(ctx, f.user.ID, f.items(0), f.address.ID)
	assert.ErrorIs(t, err, ErrInvalidItem)

	unknown := []models.OrderItem{{ProductID: primitive.NewObjectID(), Quantity: 1}}
	_, err = f.svc.PlaceCOD(ctx, f.user.ID, unknown, f.address.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// --- Online checkout ---

func TestPlaceOnline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var captured payments.CheckoutParams
	f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(payments.CheckoutParams)
		}).
		Return("https://checkout.example/session", nil)

	url, err := f.svc.PlaceOnline(ctx, f.user.ID, f.items(2), f.address.ID, "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.example/session", url)

	assert.Equal(t, f.user.ID.Hex(), captured.UserID)
	assert.Equal(t, "https://shop.example/loader?next=my-orders", captured.SuccessURL)
	assert.Equal(t, "https://shop.example/cart", captured.CancelURL)

	// Unit price carries the floored tax in the smallest currency unit:
	// floor(100 + 100*0.04) = 104 -> 10400. Base 200 ships free, so no
	// shipping line.
	require.Len(t, captured.Items, 1)
	assert.Equal(t, int64(10400), captured.Items[0].UnitAmount)
	assert.Equal(t, int64(2), captured.Items[0].Quantity)

	// The provisional order exists but is unpaid and hidden from listings.
	orderID, err := primitive.ObjectIDFromHex(captured.OrderID)
	require.NoError(t, err)
	stored, err := f.orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)
	assert.Equal(t, models.PaymentOnline, stored.PaymentType)

	listed, err := f.orders.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// No email until the gateway confirms payment.
	f.mailer.AssertNotCalled(t, "Send")
}

func TestPlaceOnlineAddsShippingLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var captured payments.CheckoutParams
	f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(payments.CheckoutParams)
		}).
		Return("https://checkout.example/session", nil)

	// Base 100 is under the free-shipping threshold.
	_, err := f.svc.PlaceOnline(ctx, f.user.ID, f.items(1), f.address.ID, "https://shop.example")
	require.NoError(t, err)

	require.Len(t, captured.Items, 2)
	assert.Equal(t, "Shipping", captured.Items[1].Name)
	assert.Equal(t, int64(2000), captured.Items[1].UnitAmount)
}

func TestPlaceOnlineBelowMinimum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cheap := &models.Product{Name: "Mint Leaves", OfferPrice: 10, InStock: true}
	require.NoError(t, f.products.Insert(ctx, cheap))

	// 10 + floor(0.4) tax + 20 shipping = 30, under the 50 minimum.
	_, err := f.svc.PlaceOnline(ctx, f.user.ID,
		[]models.OrderItem{{ProductID: cheap.ID, Quantity: 1}}, f.address.ID, "https://shop.example")
	assert.ErrorIs(t, err, ErrBelowMinimum)

	// Rejected before anything was persisted or sent to the gateway.
	n, err := f.orders.DeleteStaleUnpaidOnline(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)
	f.gateway.AssertNotCalled(t, "CreateCheckoutSession")
}

func TestPlaceOnlineGatewayFailureLeavesProvisionalOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return("", assert.AnError)

	_, err := f.svc.PlaceOnline(ctx, f.user.ID, f.items(1), f.address.ID, "https://shop.example")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBelowMinimum)

	// The provisional order stays behind for the sweeper to reclaim.
	n, err := f.orders.DeleteStaleUnpaidOnline(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

// --- Webhook reconciliation ---

// placeOnlineOrder runs the online checkout and returns the provisional
// order's id.
func placeOnlineOrder(t *testing.T, f *fixture) primitive.ObjectID {
	t.Helper()

	var captured payments.CheckoutParams
	f.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(payments.CheckoutParams)
		}).
		Return("https://checkout.example/session", nil).Once()

	_, err := f.svc.PlaceOnline(context.Background(), f.user.ID, f.items(2), f.address.ID, "https://shop.example")
	require.NoError(t, err)

	orderID, err := primitive.ObjectIDFromHex(captured.OrderID)
	require.NoError(t, err)
	return orderID
}

func TestWebhookPaymentSucceeded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := placeOnlineOrder(t, f)

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	f.gateway.On("VerifyEvent", payload, "sig").
		Return(payments.Event{Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_123"}, nil)
	f.gateway.On("SessionMetadata", mock.Anything, "pi_123").
		Return(orderID.Hex(), f.user.ID.Hex(), nil)
	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))

	order, err := f.orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.IsPaid)

	user, err := f.users.GetByID(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, user.CartItems)

	assert.Equal(t, []string{"Payment Successful - GreenCart"}, f.mailer.sentSubjects())

	// The paid order now shows up in listings.
	listed, err := f.orders.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, orderID, listed[0].ID)
}

func TestWebhookPaymentSucceededReplay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := placeOnlineOrder(t, f)

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	f.gateway.On("VerifyEvent", payload, "sig").
		Return(payments.Event{Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_123"}, nil)
	f.gateway.On("SessionMetadata", mock.Anything, "pi_123").
		Return(orderID.Hex(), f.user.ID.Hex(), nil)
	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))

	// The replay is acknowledged but triggers no second email.
	f.mailer.AssertNumberOfCalls(t, "Send", 1)
}

func TestWebhookPaymentSucceededMissingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payload := []byte(`{"type":"payment_intent.succeeded"}`)
	f.gateway.On("VerifyEvent", payload, "sig").
		Return(payments.Event{Type: payments.EventPaymentSucceeded, PaymentIntentID: "pi_gone"}, nil)
	f.gateway.On("SessionMetadata", mock.Anything, "pi_gone").
		Return(primitive.NewObjectID().Hex(), f.user.ID.Hex(), nil)

	// The order was purged; acknowledge so the gateway stops retrying.
	assert.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	f.mailer.AssertNotCalled(t, "Send")
}

func TestWebhookPaymentFailed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := placeOnlineOrder(t, f)

	payload := []byte(`{"type":"payment_intent.payment_failed"}`)
	f.gateway.On("VerifyEvent", payload, "sig").
		Return(payments.Event{Type: payments.EventPaymentFailed, PaymentIntentID: "pi_123"}, nil)
	f.gateway.On("SessionMetadata", mock.Anything, "pi_123").
		Return(orderID.Hex(), f.user.ID.Hex(), nil)

	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	assert.Zero(t, countOrders(t, f.orders, orderID))

	// Replay: the second delete finds nothing and still succeeds.
	require.NoError(t, f.svc.HandleWebhook(ctx, payload, "sig"))
	f.mailer.AssertNotCalled(t, "Send")
}

func TestWebhookBadSignature(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := placeOnlineOrder(t, f)

	payload := []byte(`tampered`)
	f.gateway.On("VerifyEvent", payload, "bad").
		Return(payments.Event{}, payments.ErrBadSignature)

	err := f.svc.HandleWebhook(ctx, payload, "bad")
	assert.ErrorIs(t, err, payments.ErrBadSignature)

	// Nothing changed.
	order, err := f.orders.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, order.IsPaid)
	f.mailer.AssertNotCalled(t, "Send")
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	f := newFixture(t)

	payload := []byte(`{"type":"charge.refunded"}`)
	f.gateway.On("VerifyEvent", payload, "sig").
		Return(payments.Event{Type: payments.EventIgnored, RawType: "charge.refunded"}, nil)

	assert.NoError(t, f.svc.HandleWebhook(context.Background(), payload, "sig"))
}

// --- Status updates ---

func TestUpdateStatusDeliveredMarksCODPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	order, err := f.svc.PlaceCOD(ctx, f.user.ID, f.items(1), f.address.ID)
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, order.ID, models.StatusOutForDelivery)
	require.NoError(t, err)
	assert.False(t, updated.IsPaid)

	updated, err = f.svc.UpdateStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)

	stored, err := f.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPaid)
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

func TestUpdateStatusDeliveredLeavesCardPaymentAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := placeOnlineOrder(t, f)

	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	// Delivering an online order never flips the paid flag; only the
	// gateway webhook does that.
	updated, err := f.svc.UpdateStatus(ctx, orderID, models.StatusDelivered)
	require.NoError(t, err)
	assert.False(t, updated.IsPaid)
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateStatus(ctx, primitive.NewObjectID(), "Shipped")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, primitive.NewObjectID(), models.StatusDelivered)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Listings ---

func TestUserOrdersHydration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	order, err := f.svc.PlaceCOD(ctx, f.user.ID, f.items(3), f.address.ID)
	require.NoError(t, err)

	details, err := f.svc.UserOrders(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)

	d := details[0]
	assert.Equal(t, order.ID, d.ID)
	require.Len(t, d.Items, 1)
	require.NotNil(t, d.Items[0].Product)
	assert.Equal(t, f.product.Name, d.Items[0].Product.Name)
	assert.Equal(t, 3, d.Items[0].Quantity)
	require.NotNil(t, d.Address)
	assert.Equal(t, f.address.City, d.Address.City)
}

func TestUserOrdersOmitUnpaidOnline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mailer.On("Send", f.user.Email, mock.Anything, mock.Anything).Return(nil)

	cod, err := f.svc.PlaceCOD(ctx, f.user.ID, f.items(1), f.address.ID)
	require.NoError(t, err)
	onlineID := placeOnlineOrder(t, f)

	details, err := f.svc.UserOrders(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, cod.ID, details[0].ID)

	_, err = f.orders.MarkPaid(ctx, onlineID)
	require.NoError(t, err)

	details, err = f.svc.UserOrders(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

// --- Sweeper ---

func TestPurgeStaleOnline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)

	staleOnline := &models.Order{UserID: f.user.ID, PaymentType: models.PaymentOnline, CreatedAt: old}
	paidOnline := &models.Order{UserID: f.user.ID, PaymentType: models.PaymentOnline, IsPaid: true, CreatedAt: old}
	oldCOD := &models.Order{UserID: f.user.ID, PaymentType: models.PaymentCOD, CreatedAt: old}
	freshOnline := &models.Order{UserID: f.user.ID, PaymentType: models.PaymentOnline, CreatedAt: time.Now()}
	for _, o := range []*models.Order{staleOnline, paidOnline, oldCOD, freshOnline} {
		require.NoError(t, f.orders.Insert(ctx, o))
	}

	n, err := f.svc.PurgeStaleOnline(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.Zero(t, countOrders(t, f.orders, staleOnline.ID))
	assert.Equal(t, 3, countOrders(t, f.orders, paidOnline.ID, oldCOD.ID, freshOnline.ID))
}
