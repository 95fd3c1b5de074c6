package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"

	"github.com/gin-gonic/gin"
)

const (
	userIDHeader   = "X-User-ID"
	userContextKey = "currentUser"
)

// UserProvider loads a user by id for the identity middleware.
type UserProvider interface {
	GetUser(ctx context.Context, id int64) (*entity.User, error)
}

// Identity resolves the caller from the X-User-ID header and stores
// the user in the request context. Requests without a valid header are
// rejected.
func Identity(users UserProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(userIDHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + userIDHeader + " header"})
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid " + userIDHeader + " header"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, entity.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// AdminOnly rejects requests from non-admin users. Must run after
// Identity.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Identity, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := v.(*entity.User)
	if !ok {
		return nil
	}
	return user
}
