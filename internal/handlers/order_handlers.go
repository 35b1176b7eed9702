package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/middleware"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/orders"
	"github.com/greencart/greencart-golang/internal/payments"
	"github.com/greencart/greencart-golang/internal/store"
)

//
// --- Order Handlers ---
//

type OrderItemInput struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderInput struct {
	Items   []OrderItemInput `json:"items" binding:"required,min=1"`
	Address string           `json:"address" binding:"required"`
}

// parseOrderInput converts the wire format into model order items.
func parseOrderInput(input PlaceOrderInput) ([]models.OrderItem, primitive.ObjectID, error) {
	addressID, err := primitive.ObjectIDFromHex(input.Address)
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, it := range input.Items {
		productID, err := primitive.ObjectIDFromHex(it.Product)
		if err != nil {
			return nil, primitive.NilObjectID, err
		}
		items = append(items, models.OrderItem{ProductID: productID, Quantity: it.Quantity})
	}
	return items, addressID, nil
}

// orderError maps service errors onto the response envelope.
func orderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrEmptyItems),
		errors.Is(err, orders.ErrInvalidItem),
		errors.Is(err, orders.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
	case errors.Is(err, orders.ErrBelowMinimum):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Minimum order value not met for online payments"})
	case errors.Is(err, orders.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid order status"})
	case errors.Is(err, orders.ErrProductNotFound), errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
	}
}

// PlaceOrderCOD is the handler for POST /api/order/cod
func (h *Handlers) PlaceOrderCOD(c *gin.Context) {
	// 1. --- Get User & Input ---
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
		return
	}
	items, addressID, err := parseOrderInput(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
		return
	}

	// 2. --- Place the Order ---
	if _, err := h.Orders.PlaceCOD(c.Request.Context(), userID, items, addressID); err != nil {
		orderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Order Placed Successfully"})
}

// PlaceOrderStripe is the handler for POST /api/order/stripe
// It returns the hosted checkout URL the client redirects to.
func (h *Handlers) PlaceOrderStripe(c *gin.Context) {
	// 1. --- Get User & Input ---
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	var input PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
		return
	}
	items, addressID, err := parseOrderInput(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
		return
	}

	// The storefront origin builds the success/cancel redirect URLs.
	origin := c.GetHeader("Origin")
	if origin == "" && len(h.Cfg.HTTP.AllowedOrigins) > 0 {
		origin = h.Cfg.HTTP.AllowedOrigins[0]
	}

	// 2. --- Create Order + Checkout Session ---
	url, err := h.Orders.PlaceOnline(c.Request.Context(), userID, items, addressID, origin)
	if err != nil {
		// The purchaser needs the redirect URL, so a gateway failure is
		// surfaced rather than swallowed.
		if errors.Is(err, orders.ErrBelowMinimum) ||
			errors.Is(err, orders.ErrEmptyItems) ||
			errors.Is(err, orders.ErrInvalidItem) ||
			errors.Is(err, orders.ErrInvalidAddress) ||
			errors.Is(err, orders.ErrProductNotFound) {
			orderError(c, err)
			return
		}
		h.Log.Error("Checkout session creation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

// StripeWebhook is the handler for POST /api/order/stripe/webhook
// The body must stay raw: the signature covers the exact bytes sent.
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook Error: unable to read body")
		return
	}
	sig := c.GetHeader("Stripe-Signature")

	if err := h.Orders.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		if errors.Is(err, payments.ErrBadSignature) {
			c.String(http.StatusBadRequest, "Webhook Error: %v", err)
			return
		}
		h.Log.Error("Webhook processing failed", "error", err)
		// Non-2xx makes the gateway retry; processing is idempotent.
		c.String(http.StatusInternalServerError, "Webhook Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetUserOrders is the handler for GET /api/order/user
func (h *Handlers) GetUserOrders(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	details, err := h.Orders.UserOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": details})
}

// GetAllOrders is the handler for GET /api/order/seller
func (h *Handlers) GetAllOrders(c *gin.Context) {
	details, err := h.Orders.AllOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": details})
}

type UpdateStatusInput struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// UpdateOrderStatus is the handler for PUT /api/order/update-status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
		return
	}
	orderID, err := primitive.ObjectIDFromHex(input.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid data"})
		return
	}

	if _, err := h.Orders.UpdateStatus(c.Request.Context(), orderID, input.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Order not found"})
			return
		}
		orderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order status updated successfully"})
}
