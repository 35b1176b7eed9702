package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/greencart/greencart-golang/internal/auth"
	"github.com/greencart/greencart-golang/internal/store"
)

// Context keys set by the auth middlewares.
const (
	CtxUserID   = "userID"
	CtxSellerID = "sellerID"
)

// AuthUser guards customer routes. It reads the 'token' cookie, validates
// the JWT and stores the user's ObjectID in the gin context.
func AuthUser(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("token")
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized"})
			return
		}

		sub, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized"})
			return
		}

		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized"})
			return
		}

		c.Set(CtxUserID, userID)
		c.Next()
	}
}

// AuthSeller guards seller routes. On top of validating the
// 'sellerToken' cookie it confirms the seller account still exists.
func AuthSeller(tokens *auth.Tokens, sellers store.SellerStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("sellerToken")
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized"})
			return
		}

		sub, err := tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			return
		}

		sellerID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not Authorized"})
			return
		}

		if _, err := sellers.GetByID(c.Request.Context(), sellerID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Forbidden"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Authentication failed"})
			return
		}

		c.Set(CtxSellerID, sellerID)
		c.Next()
	}
}
