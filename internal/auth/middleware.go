package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware and read by the handlers.
const (
	ctxUserID = "user_id"
	ctxEmail  = "user_email"
	ctxRole   = "user_role"
)

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. Empty string means the header is missing or malformed.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || strings.TrimSpace(scheme) != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthMiddleware validates the bearer token and stores the caller's
// identity on the request context. Only access tokens pass.
func AuthMiddleware(accessTokenSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Bearer token required")
			return
		}

		claims, err := ValidateToken(token, accessTokenSecret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				abortUnauthorized(c, "Token expired")
				return
			}
			abortUnauthorized(c, "Invalid or malformed token")
			return
		}

		if claims.TokenType != tokenTypeAccess {
			abortUnauthorized(c, "Access token required")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole gates a route group on an exact role match. It must run
// after AuthMiddleware.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) == "" {
			abortUnauthorized(c, "User role not found")
			return
		}

		if GetRole(c) != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}

		c.Next()
	}
}

func GetUserID(c *gin.Context) (int, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := v.(int)
	return id, ok
}

// GetRole returns the authenticated user's role, or "" when unset.
func GetRole(c *gin.Context) string {
	v, exists := c.Get(ctxRole)
	if !exists {
		return ""
	}
	role, _ := v.(string)
	return role
}
