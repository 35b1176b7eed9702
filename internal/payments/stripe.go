package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/greencart/greencart-golang/internal/config"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	currency      string
}

func NewStripe(cfg config.StripeConfig) *StripeGateway {
	return &StripeGateway{
		api:           client.New(cfg.SecretKey, nil),
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(params.Items))
	for _, item := range params.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
				UnitAmount: stripe.Int64(item.UnitAmount),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lineItems,
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	sessionParams.Context = ctx
	sessionParams.AddMetadata("orderId", params.OrderID)
	sessionParams.AddMetadata("userId", params.UserID)

	sess, err := g.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (Event, error) {
	event, err := webhook.ConstructEvent(payload, sigHeader, g.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	out := Event{RawType: string(event.Type)}

	switch event.Type {
	case "payment_intent.succeeded":
		out.Type = EventPaymentSucceeded
	case "payment_intent.payment_failed":
		out.Type = EventPaymentFailed
	default:
		out.Type = EventIgnored
		return out, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return Event{}, fmt.Errorf("failed to parse payment intent: %w", err)
	}
	out.PaymentIntentID = intent.ID
	return out, nil
}

// SessionMetadata lists checkout sessions by payment intent (there is at
// most one) and returns the order/user metadata set at creation.
func (g *StripeGateway) SessionMetadata(ctx context.Context, paymentIntentID string) (string, string, error) {
	listParams := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	listParams.Context = ctx

	iter := g.api.CheckoutSessions.List(listParams)
	for iter.Next() {
		sess := iter.CheckoutSession()
		return sess.Metadata["orderId"], sess.Metadata["userId"], nil
	}
	if err := iter.Err(); err != nil {
		return "", "", fmt.Errorf("failed to list checkout sessions: %w", err)
	}
	return "", "", fmt.Errorf("no checkout session found for payment intent %s", paymentIntentID)
}
