// Package events publishes order lifecycle events for downstream
// consumers (analytics, fulfillment tooling). Publishing is optional and
// fire-and-forget; the order flow never blocks on it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/greencart/greencart-golang/internal/logger"
	"github.com/greencart/greencart-golang/internal/models"
)

const (
	SubjectOrderCreated       = "order.created"
	SubjectOrderPaid          = "order.paid"
	SubjectOrderStatusUpdated = "order.status_updated"
)

// Publisher is implemented by the NATS publisher below; the order
// service treats a nil Publisher as "eventing disabled".
type Publisher interface {
	OrderCreated(ctx context.Context, order *models.Order) error
	OrderPaid(ctx context.Context, order *models.Order) error
	OrderStatusUpdated(ctx context.Context, order *models.Order) error
	Close()
}

type OrderEvent struct {
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Status      string  `json:"status"`
	IsPaid      bool    `json:"is_paid"`
	OccurredAt  string  `json:"occurred_at"`
}

type NatsPublisher struct {
	nc  *nats.Conn
	log *logger.Logger
}

func NewNatsPublisher(url string, log *logger.Logger) (*NatsPublisher, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var nc *nats.Conn
	var err error

	for i := 0; i < 3; i++ {
		nc, err = nats.Connect(url,
			nats.Name("GreenCart API"),
			nats.MaxReconnects(5),
			nats.ReconnectWait(2*time.Second),
			nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
				log.Warn("NATS disconnected", "error", err)
			}),
			nats.ReconnectHandler(func(nc *nats.Conn) {
				log.Info("NATS reconnected", "url", nc.ConnectedUrl())
			}),
		)

		if err == nil {
			log.Info("Connected to NATS", "url", url)
			return &NatsPublisher{nc: nc, log: log}, nil
		}

		log.Warn("Failed to connect to NATS", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		case <-time.After(2 * time.Second):
			continue
		}
	}

	return nil, fmt.Errorf("failed to connect to NATS after retries: %w", err)
}

func (p *NatsPublisher) OrderCreated(ctx context.Context, order *models.Order) error {
	return p.publish(SubjectOrderCreated, order)
}

func (p *NatsPublisher) OrderPaid(ctx context.Context, order *models.Order) error {
	return p.publish(SubjectOrderPaid, order)
}

func (p *NatsPublisher) OrderStatusUpdated(ctx context.Context, order *models.Order) error {
	return p.publish(SubjectOrderStatusUpdated, order)
}

func (p *NatsPublisher) publish(subject string, order *models.Order) error {
	event := OrderEvent{
		OrderID:     order.ID.Hex(),
		UserID:      order.UserID.Hex(),
		Amount:      order.Amount,
		PaymentType: order.PaymentType,
		Status:      order.Status,
		IsPaid:      order.IsPaid,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
	}
}
