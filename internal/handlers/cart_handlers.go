package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/middleware"
)

//
// --- Cart Handlers ---
//

// UpdateCartInput replaces the whole cart: the client owns the map and
// sends it back on every change (the storefront contract).
type UpdateCartInput struct {
	CartItems map[string]int `json:"cartItems" binding:"required"`
}

// UpdateCart is the handler for POST /api/cart/update
func (h *Handlers) UpdateCart(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	var input UpdateCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// Drop zero/negative quantities and malformed product ids.
	items := make(map[string]int, len(input.CartItems))
	for id, qty := range input.CartItems {
		if qty <= 0 {
			continue
		}
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid product id in cart"})
			return
		}
		items[id] = qty
	}

	if err := h.Users.UpdateCart(c.Request.Context(), userID, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart Updated"})
}
