// Package orders implements the order lifecycle: checkout (COD and
// hosted card payment), webhook reconciliation, fulfillment status
// updates, order listings and the stale-checkout sweeper.
package orders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/config"
	"github.com/greencart/greencart-golang/internal/events"
	"github.com/greencart/greencart-golang/internal/logger"
	"github.com/greencart/greencart-golang/internal/mailer"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/payments"
	"github.com/greencart/greencart-golang/internal/store"
)

// Stores groups the persistence dependencies of the order flow.
type Stores struct {
	Orders    store.OrderStore
	Products  store.ProductStore
	Users     store.UserStore
	Addresses store.AddressStore
}

type Service struct {
	pricing config.PricingConfig
	stores  Stores
	gateway payments.Gateway
	mailer  mailer.Mailer
	events  events.Publisher
	log     *logger.Logger
}

// NewService wires the order service. events may be nil (publishing
// disabled); gateway may be nil only if no online checkout is exposed.
func NewService(pricing config.PricingConfig, stores Stores, gateway payments.Gateway, m mailer.Mailer, pub events.Publisher, log *logger.Logger) *Service {
	return &Service{
		pricing: pricing,
		stores:  stores,
		gateway: gateway,
		mailer:  m,
		events:  pub,
		log:     log,
	}
}

// Totals is the amount breakdown computed once at checkout.
type Totals struct {
	Base     float64
	Tax      float64
	Shipping float64
	Amount   float64
}

// pricedItem carries what the hosted checkout page needs to display.
type pricedItem struct {
	Name       string
	OfferPrice float64
	Quantity   int
}

// ComputeTotals applies the configured business rules to a base
// subtotal: tax is floored, the flat shipping fee applies only below the
// free-shipping threshold.
func (s *Service) ComputeTotals(base float64) Totals {
	t := Totals{Base: base}
	t.Tax = math.Floor(base * s.pricing.TaxRate)
	if base < s.pricing.ShippingThreshold {
		t.Shipping = s.pricing.ShippingFlat
	}
	t.Amount = base + t.Tax + t.Shipping
	return t
}

// priceItems resolves every line item against the product catalog and
// returns the base subtotal. Unknown products or non-positive quantities
// are validation errors; nothing has been persisted yet.
func (s *Service) priceItems(ctx context.Context, items []models.OrderItem) (float64, []pricedItem, error) {
	if len(items) == 0 {
		return 0, nil, ErrEmptyItems
	}

	base := 0.0
	priced := make([]pricedItem, 0, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return 0, nil, fmt.Errorf("%w: item %d has invalid quantity", ErrInvalidItem, i)
		}
		product, err := s.stores.Products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return 0, nil, fmt.Errorf("%w: item %d", ErrProductNotFound, i)
			}
			return 0, nil, fmt.Errorf("failed to price items: %w", err)
		}
		base += product.OfferPrice * float64(item.Quantity)
		priced = append(priced, pricedItem{
			Name:       product.Name,
			OfferPrice: product.OfferPrice,
			Quantity:   item.Quantity,
		})
	}
	return base, priced, nil
}

// checkAddress verifies the delivery address exists and belongs to the
// purchaser.
func (s *Service) checkAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	address, err := s.stores.Addresses.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidAddress
		}
		return fmt.Errorf("failed to check address: %w", err)
	}
	if address.UserID != userID {
		return ErrInvalidAddress
	}
	return nil
}

// PlaceCOD creates a cash-on-delivery order. The order starts unpaid in
// "Preparing"; payment is collected at delivery. One "order placed"
// email goes out immediately (best-effort).
func (s *Service) PlaceCOD(ctx context.Context, userID primitive.ObjectID, items []models.OrderItem, addressID primitive.ObjectID) (*models.Order, error) {
	if err := s.checkAddress(ctx, userID, addressID); err != nil {
		return nil, err
	}
	base, _, err := s.priceItems(ctx, items)
	if err != nil {
		return nil, err
	}
	totals := s.ComputeTotals(base)

	now := time.Now()
	order := &models.Order{
		UserID:      userID,
		Items:       items,
		AddressID:   addressID,
		Amount:      totals.Amount,
		PaymentType: models.PaymentCOD,
		IsPaid:      false,
		Status:      models.StatusPreparing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.stores.Orders.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.notifyUser(ctx, userID, "Order Placed - GreenCart", order.ID.Hex(), "Order Preparing")
	s.publish(events.SubjectOrderCreated, order)

	return order, nil
}

// PlaceOnline creates a provisional card order and a hosted checkout
// session. Orders below the configured minimum are rejected before
// anything is persisted. No email is sent until the gateway confirms
// payment.
func (s *Service) PlaceOnline(ctx context.Context, userID primitive.ObjectID, items []models.OrderItem, addressID primitive.ObjectID, origin string) (string, error) {
	if err := s.checkAddress(ctx, userID, addressID); err != nil {
		return "", err
	}
	base, priced, err := s.priceItems(ctx, items)
	if err != nil {
		return "", err
	}
	totals := s.ComputeTotals(base)

	if totals.Amount < s.pricing.MinOnlineAmount {
		return "", ErrBelowMinimum
	}

	now := time.Now()
	order := &models.Order{
		UserID:      userID,
		Items:       items,
		AddressID:   addressID,
		Amount:      totals.Amount,
		PaymentType: models.PaymentOnline,
		IsPaid:      false,
		Status:      models.StatusPreparing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.stores.Orders.Insert(ctx, order); err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	// Line items carry the taxed unit price in the currency's smallest
	// unit; the shipping fee gets its own line so the gateway total
	// matches the stored amount.
	lineItems := make([]payments.LineItem, 0, len(priced)+1)
	for _, item := range priced {
		taxedUnit := math.Floor(item.OfferPrice + item.OfferPrice*s.pricing.TaxRate)
		lineItems = append(lineItems, payments.LineItem{
			Name:       item.Name,
			UnitAmount: int64(taxedUnit * 100),
			Quantity:   int64(item.Quantity),
		})
	}
	if totals.Shipping > 0 {
		lineItems = append(lineItems, payments.LineItem{
			Name:       "Shipping",
			UnitAmount: int64(totals.Shipping * 100),
			Quantity:   1,
		})
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		OrderID:    order.ID.Hex(),
		UserID:     userID.Hex(),
		SuccessURL: origin + "/loader?next=my-orders",
		CancelURL:  origin + "/cart",
		Items:      lineItems,
	})
	if err != nil {
		// The provisional order stays behind; the sweeper reclaims it.
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.publish(events.SubjectOrderCreated, order)
	return url, nil
}

// HandleWebhook processes a raw gateway notification. The signature is
// verified before anything else; an invalid signature changes no state.
// Delivery is at-least-once, so every branch tolerates replay.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.gateway.VerifyEvent(payload, sigHeader)
	if err != nil {
		return err
	}

	switch event.Type {
	case payments.EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case payments.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	default:
		s.log.Info("Ignoring webhook event", "type", event.RawType)
		return nil
	}
}

func (s *Service) handlePaymentSucceeded(ctx context.Context, event payments.Event) error {
	orderHex, userHex, err := s.gateway.SessionMetadata(ctx, event.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to resolve session metadata: %w", err)
	}
	orderID, err := primitive.ObjectIDFromHex(orderHex)
	if err != nil {
		return fmt.Errorf("invalid order id in metadata: %w", err)
	}
	userID, err := primitive.ObjectIDFromHex(userHex)
	if err != nil {
		return fmt.Errorf("invalid user id in metadata: %w", err)
	}

	transitioned, err := s.stores.Orders.MarkPaid(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The order was already purged (e.g. by the sweeper). There is
			// nothing left to reconcile; acknowledge so the gateway stops
			// retrying.
			s.log.Warn("Paid webhook for missing order", "order_id", orderHex)
			return nil
		}
		return err
	}
	if !transitioned {
		// Replayed event: the order is already paid. The cart was cleared
		// and the email sent the first time around.
		s.log.Info("Duplicate paid webhook", "order_id", orderHex)
		return nil
	}

	if err := s.stores.Users.ClearCart(ctx, userID); err != nil {
		s.log.Error("Failed to clear cart after payment", "user_id", userHex, "error", err)
	}

	s.notifyUser(ctx, userID, "Payment Successful - GreenCart", orderHex, "Paid")

	if order, err := s.stores.Orders.GetByID(ctx, orderID); err == nil {
		s.publish(events.SubjectOrderPaid, order)
	}
	return nil
}

func (s *Service) handlePaymentFailed(ctx context.Context, event payments.Event) error {
	orderHex, _, err := s.gateway.SessionMetadata(ctx, event.PaymentIntentID)
	if err != nil {
		return fmt.Errorf("failed to resolve session metadata: %w", err)
	}
	orderID, err := primitive.ObjectIDFromHex(orderHex)
	if err != nil {
		return fmt.Errorf("invalid order id in metadata: %w", err)
	}

	// A card order is provisional until paid; a failed payment must not
	// leave a pending order with a dead checkout link. Delete tolerates
	// replay (the second delete finds nothing and succeeds).
	if err := s.stores.Orders.Delete(ctx, orderID); err != nil {
		return err
	}
	s.log.Info("Removed order after failed payment", "order_id", orderHex)
	return nil
}

// UpdateStatus moves an order through the fulfillment states. Delivering
// a COD order is the moment it becomes paid; a card order's paid flag is
// never touched here.
func (s *Service) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	order, err := s.stores.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	markPaid := status == models.StatusDelivered &&
		order.PaymentType == models.PaymentCOD &&
		!order.IsPaid

	if err := s.stores.Orders.UpdateStatus(ctx, orderID, status, markPaid); err != nil {
		return nil, err
	}
	order.Status = status
	if markPaid {
		order.IsPaid = true
	}

	s.notifyUser(ctx, order.UserID, fmt.Sprintf("Order Status Updated - %s", status), orderID.Hex(), status)
	s.publish(events.SubjectOrderStatusUpdated, order)

	return order, nil
}

// HydratedItem replaces the product reference with the full document for
// client display. Product is nil if the catalog entry has since vanished.
type HydratedItem struct {
	Product  *models.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// OrderDetail is an order with its items and address hydrated.
type OrderDetail struct {
	models.Order
	Items   []HydratedItem  `json:"items"`
	Address *models.Address `json:"address"`
}

// UserOrders lists a purchaser's own orders (COD or paid only), newest
// first, hydrated for display.
func (s *Service) UserOrders(ctx context.Context, userID primitive.ObjectID) ([]OrderDetail, error) {
	orders, err := s.stores.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, orders), nil
}

// AllOrders lists every visible order for the seller dashboard.
func (s *Service) AllOrders(ctx context.Context) ([]OrderDetail, error) {
	orders, err := s.stores.Orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, orders), nil
}

func (s *Service) hydrate(ctx context.Context, orders []models.Order) []OrderDetail {
	details := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		detail := OrderDetail{Order: o, Items: make([]HydratedItem, 0, len(o.Items))}
		for _, item := range o.Items {
			product, err := s.stores.Products.GetByID(ctx, item.ProductID)
			if err != nil {
				product = nil
			}
			detail.Items = append(detail.Items, HydratedItem{Product: product, Quantity: item.Quantity})
		}
		if address, err := s.stores.Addresses.GetByID(ctx, o.AddressID); err == nil {
			detail.Address = address
		}
		details = append(details, detail)
	}
	return details
}

// PurgeStaleOnline removes unpaid card orders older than ttl. These are
// abandoned checkouts whose session expired without a webhook.
func (s *Service) PurgeStaleOnline(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.stores.Orders.DeleteStaleUnpaidOnline(ctx, time.Now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Purged stale unpaid online orders", "count", n)
	}
	return n, nil
}

// notifyUser sends an order email. Failures are logged and swallowed:
// notification is best-effort and never rolls back an order mutation.
func (s *Service) notifyUser(ctx context.Context, userID primitive.ObjectID, subject, orderHex, status string) {
	user, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load user for notification", "user_id", userID.Hex(), "error", err)
		return
	}
	if err := s.mailer.Send(user.Email, subject, mailer.OrderEmail(user.Name, orderHex, status)); err != nil {
		s.log.Error("Failed to send order email", "to", user.Email, "error", err)
	}
}

func (s *Service) publish(subject string, order *models.Order) {
	if s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var err error
		switch subject {
		case events.SubjectOrderCreated:
			err = s.events.OrderCreated(ctx, order)
		case events.SubjectOrderPaid:
			err = s.events.OrderPaid(ctx, order)
		case events.SubjectOrderStatusUpdated:
			err = s.events.OrderStatusUpdated(ctx, order)
		}
		if err != nil {
			s.log.Warn("Failed to publish order event", "subject", subject, "error", err)
		}
	}()
}

var (
	ErrEmptyItems      = errors.New("items list cannot be empty")
	ErrInvalidItem     = errors.New("invalid item")
	ErrInvalidAddress  = errors.New("invalid delivery address")
	ErrProductNotFound = errors.New("product not found")
	ErrBelowMinimum    = errors.New("order amount below online payment minimum")
	ErrInvalidStatus   = errors.New("invalid order status")
)
