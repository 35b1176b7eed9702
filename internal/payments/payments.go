// Package payments abstracts the hosted-checkout gateway. The order
// service talks to the Gateway interface; the Stripe implementation is
// constructed in main and injected (no package-level client state).
package payments

import (
	"context"
	"errors"
)

// ErrBadSignature is returned when a webhook payload fails signature
// verification. The caller must reject the request without touching any
// state.
var ErrBadSignature = errors.New("webhook signature verification failed")

// LineItem is one displayable charge line on the hosted checkout page.
// UnitAmount is in the currency's smallest unit (paise for INR).
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// CheckoutParams describes the session to create. OrderID and UserID
// travel as opaque metadata and come back with the webhook.
type CheckoutParams struct {
	OrderID    string
	UserID     string
	SuccessURL string
	CancelURL  string
	Items      []LineItem
}

type EventType string

const (
	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
	EventIgnored          EventType = "ignored"
)

// Event is a verified, normalized webhook notification.
type Event struct {
	Type            EventType
	PaymentIntentID string
	// RawType keeps the gateway's own event name for logging.
	RawType string
}

type Gateway interface {
	// CreateCheckoutSession returns the URL the purchaser is redirected to.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	// VerifyEvent checks the signature and normalizes the event.
	VerifyEvent(payload []byte, sigHeader string) (Event, error)
	// SessionMetadata resolves the order/user metadata attached to the
	// checkout session that produced the given payment intent.
	SessionMetadata(ctx context.Context, paymentIntentID string) (orderID, userID string, err error)
}
