package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is the model for the 'products' collection.
// OfferPrice is the price the customer actually pays; Price is the
// strike-through list price shown next to it.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SellerID    primitive.ObjectID `json:"sellerId" bson:"sellerId"`
	Name        string             `json:"name" bson:"name"`
	Slug        string             `json:"slug" bson:"slug"`
	Description []string           `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	Price       float64            `json:"price" bson:"price"`
	OfferPrice  float64            `json:"offerPrice" bson:"offerPrice"`
	Images      []string           `json:"image" bson:"image"`
	InStock     bool               `json:"inStock" bson:"inStock"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
