package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment types
const (
	PaymentCOD    = "COD"
	PaymentOnline = "Online"
)

// Fulfillment statuses. A new order always starts in StatusPreparing.
const (
	StatusPreparing      = "Preparing"
	StatusOutForDelivery = "Out for delivery"
	StatusDelivered      = "Delivered"
)

// ValidStatus reports whether s is one of the fulfillment statuses a
// seller may set.
func ValidStatus(s string) bool {
	switch s {
	case StatusPreparing, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// OrderItem is one line of an order: a product reference and a quantity.
// The unit price is NOT stored here; the order's Amount is computed once
// at creation and never recomputed from the items.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product" bson:"product"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Order is the model for the 'orders' collection.
type Order struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	Items       []OrderItem        `json:"items" bson:"items"`
	AddressID   primitive.ObjectID `json:"address" bson:"address"`
	Amount      float64            `json:"amount" bson:"amount"`
	PaymentType string             `json:"paymentType" bson:"paymentType"`
	IsPaid      bool               `json:"isPaid" bson:"isPaid"`
	Status      string             `json:"orderStatus" bson:"orderStatus"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}
