package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is the model for the 'addresses' collection (delivery addresses).
type Address struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	FirstName string             `json:"firstName" bson:"firstName"`
	LastName  string             `json:"lastName" bson:"lastName"`
	Email     string             `json:"email" bson:"email"`
	Street    string             `json:"street" bson:"street"`
	City      string             `json:"city" bson:"city"`
	State     string             `json:"state" bson:"state"`
	Zipcode   string             `json:"zipcode" bson:"zipcode"`
	Country   string             `json:"country" bson:"country"`
	Phone     string             `json:"phone" bson:"phone"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
