package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"innoportal/internal/auth"
	"innoportal/internal/models"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the signed-in user id.
const SessionUserKey = "user_id"

// UserLoader resolves a user id to a user.
type UserLoader interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// LoadUser resolves the caller from the session cookie, then from a bearer token, and
// stores it on the request context. Anonymous requests pass through.
func LoadUser(users UserLoader, tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID string
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserKey).(string); ok {
			userID = id
		} else if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer ")); err == nil {
				userID = claims.UserID
			}
		}

		if userID != "" {
			if user, err := users.Get(c.Request.Context(), userID); err == nil {
				c.Set(CheckUserKey, user)
			}
		}
		c.Next()
	}
}

// CurrentUser returns the resolved caller or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CheckUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RoleRequired rejects callers whose role is not listed.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}
