package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/middleware"
	"github.com/greencart/greencart-golang/internal/models"
)

//
// --- Address Handlers ---
//

type AddAddressInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Street    string `json:"street" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Zipcode   string `json:"zipcode" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
}

// AddAddress is the handler for POST /api/address/add
func (h *Handlers) AddAddress(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	var input AddAddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	now := time.Now()
	address := &models.Address{
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Street:    input.Street,
		City:      input.City,
		State:     input.State,
		Zipcode:   input.Zipcode,
		Country:   input.Country,
		Phone:     input.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Addresses.Insert(c.Request.Context(), address); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add address"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Address added successfully"})
}

// GetAddresses is the handler for GET /api/address/get
func (h *Handlers) GetAddresses(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	addresses, err := h.Addresses.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch addresses"})
		return
	}
	if addresses == nil {
		addresses = []models.Address{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "addresses": addresses})
}
