package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/mailer"
	"github.com/greencart/greencart-golang/internal/middleware"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

//
// --- Seller Auth Handlers ---
//

// Indian PAN card format, required for seller onboarding.
var panRegex = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)

type RegisterSellerInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	PANNumber string `json:"panNumber" binding:"required"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
}

// RegisterSeller is the handler for POST /api/seller/register
func (h *Handlers) RegisterSeller(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterSellerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	input.PANNumber = strings.ToUpper(strings.TrimSpace(input.PANNumber))
	if !panRegex.MatchString(input.PANNumber) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid PAN number format"})
		return
	}

	// 2. --- Existing account? ---
	existing, err := h.Sellers.GetByEmail(c.Request.Context(), input.Email)
	if err == nil {
		if existing.IsVerified {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already registered"})
			return
		}
		ok := h.sendVerificationCode(c, func(code string, expiry time.Time) error {
			return h.Sellers.SetVerification(c.Request.Context(), existing.ID, code, expiry)
		}, existing.Name, existing.Email)
		if ok {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification code re-sent to email"})
		}
		return
	}
	if !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	// 3. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to hash password"})
		return
	}

	// 4. --- Create the Seller (unverified) ---
	code, expiry, err := auth.GenerateVerificationCodeWithExpiry()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate verification code"})
		return
	}

	now := time.Now()
	seller := &models.Seller{
		Name:         input.FirstName + " " + input.LastName,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: password.Hash,
		PAN:          input.PANNumber,
		Address: models.SellerAddress{
			Street:  input.Street,
			City:    input.City,
			State:   input.State,
			Country: input.Country,
			Zipcode: input.Zip,
		},
		IsVerified:         false,
		VerificationCode:   &code,
		VerificationExpiry: &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.Sellers.Insert(c.Request.Context(), seller); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create seller"})
		return
	}

	if err := h.Mailer.Send(seller.Email, "Verify Your Seller Account - GreenCart", mailer.VerificationEmail(input.FirstName, code)); err != nil {
		h.Log.Error("Failed to send verification email", "to", seller.Email, "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Verification code sent to email"})
}

// VerifySellerEmail is the handler for POST /api/seller/verify-email
func (h *Handlers) VerifySellerEmail(c *gin.Context) {
	var input VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	seller, err := h.Sellers.GetByEmail(c.Request.Context(), input.Email)
	if err != nil || seller.VerificationCode == nil || *seller.VerificationCode != input.Code {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid verification code"})
		return
	}
	if seller.VerificationExpiry != nil && seller.VerificationExpiry.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Verification code expired"})
		return
	}

	if err := h.Sellers.MarkVerified(c.Request.Context(), seller.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully"})
}

// SellerLogin is the handler for POST /api/seller/login
func (h *Handlers) SellerLogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	seller, err := h.Sellers.GetByEmail(c.Request.Context(), input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	password := models.Password{Hash: seller.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if !seller.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Please verify your email before login"})
		return
	}

	token, err := h.Tokens.Generate(seller.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}
	h.setSessionCookie(c, "sellerToken", token)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"seller":  gin.H{"id": seller.ID.Hex(), "name": seller.Name, "email": seller.Email},
	})
}

// SellerLogout is the handler for GET /api/seller/logout
func (h *Handlers) SellerLogout(c *gin.Context) {
	h.clearSessionCookie(c, "sellerToken")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged Out"})
}

// IsSellerAuth is the handler for GET /api/seller/is-auth
func (h *Handlers) IsSellerAuth(c *gin.Context) {
	sellerID := c.MustGet(middleware.CtxSellerID).(primitive.ObjectID)

	seller, err := h.Sellers.GetByID(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Seller not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "seller": seller})
}
