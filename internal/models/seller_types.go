package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SellerAddress is the embedded address block on a seller document.
type SellerAddress struct {
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
	Zipcode string `json:"zipcode" bson:"zipcode"`
}

// Seller is the model for the 'sellers' collection.
type Seller struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"number"`
	PasswordHash string             `json:"-" bson:"password"`
	PAN          string             `json:"pan" bson:"pan"`
	Address      SellerAddress      `json:"address" bson:"address"`
	IsVerified   bool               `json:"isVerified" bson:"isVerified"`

	VerificationCode   *string    `json:"-" bson:"verificationCode,omitempty"`
	VerificationExpiry *time.Time `json:"-" bson:"verificationExpiry,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
