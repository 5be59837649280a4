package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserID is the gin context key holding the authenticated user id.
	ContextUserID = "uid"
	// ContextAdmin is true when the token carries the "admin" custom claim.
	ContextAdmin = "admin"
)

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware verifies the Firebase ID token in the Authorization header and
// sets the user id in context
func AuthMiddleware(verifier IDTokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with 'Bearer '"})
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if idToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil || token.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, token.UID)
		c.Set(ContextAdmin, token.Claims["admin"] == true)
		c.Next()
	}
}
