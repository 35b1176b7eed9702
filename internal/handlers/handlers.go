package handlers

import (
	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/config"
	"github.com/greencart/greencart-golang/internal/logger"
	"github.com/greencart/greencart-golang/internal/mailer"
	"github.com/greencart/greencart-golang/internal/orders"
	"github.com/greencart/greencart-golang/internal/store"
	"github.com/greencart/greencart-golang/internal/uploads"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Cfg       *config.Config
	Tokens    *auth.Tokens
	Users     store.UserStore
	Sellers   store.SellerStore
	Products  store.ProductStore
	Addresses store.AddressStore
	Orders    *orders.Service
	Mailer    mailer.Mailer
	Uploader  uploads.ImageUploader
	Log       *logger.Logger
}
