package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/mailer"
	"github.com/greencart/greencart-golang/internal/middleware"
	"github.com/greencart/greencart-golang/internal/models"
	"github.com/greencart/greencart-golang/internal/store"
)

//
// --- User Auth Handlers ---
//

// setSessionCookie writes an httpOnly session cookie. SameSite=None is
// required in production where the storefront runs on another origin.
func (h *Handlers) setSessionCookie(c *gin.Context, name, token string) {
	if h.Cfg.HTTP.CookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(name, token, int(h.Cfg.JWT.TTL.Seconds()), "/", "", h.Cfg.HTTP.CookieSecure, true)
}

func (h *Handlers) clearSessionCookie(c *gin.Context, name string) {
	if h.Cfg.HTTP.CookieSecure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(name, "", -1, "/", "", h.Cfg.HTTP.CookieSecure, true)
}

// sendVerificationCode issues a fresh code, stores it and emails it.
func (h *Handlers) sendVerificationCode(c *gin.Context, set func(code string, expiry time.Time) error, name, email string) bool {
	code, expiry, err := auth.GenerateVerificationCodeWithExpiry()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate verification code"})
		return false
	}
	if err := set(code, expiry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save verification code"})
		return false
	}
	if err := h.Mailer.Send(email, "Verify Your Email - GreenCart", mailer.VerificationEmail(name, code)); err != nil {
		h.Log.Error("Failed to send verification email", "to", email, "error", err)
	}
	return true
}

type RegisterUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// RegisterUser is the handler for POST /api/user/register
func (h *Handlers) RegisterUser(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// 2. --- Existing account? ---
	existing, err := h.Users.GetByEmail(c.Request.Context(), input.Email)
	if err == nil {
		if existing.IsVerified {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already exists"})
			return
		}
		// Unverified account: re-send a fresh code instead of duplicating.
		ok := h.sendVerificationCode(c, func(code string, expiry time.Time) error {
			return h.Users.SetVerification(c.Request.Context(), existing.ID, code, expiry)
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

	// 4. --- Create the User (unverified) ---
	code, expiry, err := auth.GenerateVerificationCodeWithExpiry()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate verification code"})
		return
	}

	now := time.Now()
	user := &models.User{
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       password.Hash,
		IsVerified:         false,
		CartItems:          map[string]int{},
		VerificationCode:   &code,
		VerificationExpiry: &expiry,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := h.Users.Insert(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create user"})
		return
	}

	// 5. --- Send the Code ---
	if err := h.Mailer.Send(user.Email, "Welcome to GreenCart! Verify Your Email", mailer.VerificationEmail(user.Name, code)); err != nil {
		h.Log.Error("Failed to send verification email", "to", user.Email, "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Verification code sent to email"})
}

type VerifyEmailInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyEmail is the handler for POST /api/user/verify-email
func (h *Handlers) VerifyEmail(c *gin.Context) {
	var input VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.Users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil || user.VerificationCode == nil || *user.VerificationCode != input.Code {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid verification code"})
		return
	}
	if user.VerificationExpiry != nil && user.VerificationExpiry.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Verification code expired"})
		return
	}

	if err := h.Users.MarkVerified(c.Request.Context(), user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified successfully"})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginUser is the handler for POST /api/user/login
func (h *Handlers) LoginUser(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	// 2. --- Check Credentials ---
	user, err := h.Users.GetByEmail(c.Request.Context(), input.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if !user.IsVerified {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Please verify your email before login"})
		return
	}

	// 3. --- Issue Session Cookie ---
	token, err := h.Tokens.Generate(user.ID.Hex())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create session"})
		return
	}
	h.setSessionCookie(c, "token", token)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"email": user.Email, "name": user.Name},
	})
}

// IsAuth is the handler for GET /api/user/is-auth
func (h *Handlers) IsAuth(c *gin.Context) {
	userID := c.MustGet(middleware.CtxUserID).(primitive.ObjectID)

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// Logout is the handler for GET /api/user/logout
func (h *Handlers) Logout(c *gin.Context) {
	h.clearSessionCookie(c, "token")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged Out"})
}
