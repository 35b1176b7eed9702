package main

import (
	"context"
	"log"
	"time"

	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/config"
	"github.com/greencart/greencart-golang/internal/events"
	"github.com/greencart/greencart-golang/internal/handlers"
	"github.com/greencart/greencart-golang/internal/logger"
	"github.com/greencart/greencart-golang/internal/mailer"
	"github.com/greencart/greencart-golang/internal/orders"
	"github.com/greencart/greencart-golang/internal/payments"
	"github.com/greencart/greencart-golang/internal/routes"
	"github.com/greencart/greencart-golang/internal/store/mongo"
	"github.com/greencart/greencart-golang/internal/uploads"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New()

	// 1. --- Database Connection ---
	db, err := mongo.Connect(cfg.Mongo.URI, cfg.Mongo.DB, appLog)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Outbound Services (Payments, Mail, Image Uploads) ---
	gateway := payments.NewStripe(cfg.Stripe)

	smtp, err := mailer.NewSMTP(cfg.SMTP)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	uploader, err := uploads.NewCloudinary(cfg.Cloudinary.URL)
	if err != nil {
		log.Fatalf("Failed to initialize image uploads: %v", err)
	}

	// 3. --- Event Publishing (optional) ---
	// Without a NATS_URL the service runs standalone and skips publishing.
	var publisher events.Publisher
	if cfg.NATS.URL != "" {
		nats, err := events.NewNatsPublisher(cfg.NATS.URL, appLog)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer nats.Close()
		publisher = nats
	}

	// --- Application Setup ---
	tokens := auth.NewTokens(cfg.JWT.Secret, cfg.JWT.TTL)

	orderService := orders.NewService(cfg.Pricing, orders.Stores{
		Orders:    db.Orders,
		Products:  db.Products,
		Users:     db.Users,
		Addresses: db.Addresses,
	}, gateway, smtp, publisher, appLog)

	app := &handlers.Handlers{
		Cfg:       cfg,
		Tokens:    tokens,
		Users:     db.Users,
		Sellers:   db.Sellers,
		Products:  db.Products,
		Addresses: db.Addresses,
		Orders:    orderService,
		Mailer:    smtp,
		Uploader:  uploader,
		Log:       appLog,
	}

	// --- 4. Background Worker (Stale Checkout Sweeper) ---
	// Card orders are created before the customer reaches the hosted
	// checkout page. If they abandon it, the unpaid order lingers; this
	// worker removes the ones past their TTL.
	go func() {
		ticker := time.NewTicker(cfg.Sweeper.Interval)
		defer ticker.Stop()

		appLog.Info("Background worker started: sweeping abandoned checkouts", "interval", cfg.Sweeper.Interval.String())

		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := orderService.PurgeStaleOnline(ctx, cfg.Sweeper.OrderTTL)
			cancel()
			if err != nil {
				appLog.Error("Stale order sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				appLog.Info("Removed abandoned checkouts", "count", removed)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	appLog.Info("Starting GreenCart API server", "port", cfg.HTTP.Port)
	if err := router.Run(":" + cfg.HTTP.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
