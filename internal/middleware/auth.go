package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/comment-votes/internal/auth"
)

const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// AuthMiddleware requires a valid bearer token and stores the caller's
// user_id on the context.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok, err := identify(c, secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok, err := identify(c, secret); ok && err == nil {
			setIdentity(c, id)
		}
		c.Next()
	}
}

func identify(c *gin.Context, secret []byte) (auth.Identity, bool, error) {
	header := c.GetHeader("Authorization")
	tokenString, found := strings.CutPrefix(header, "Bearer ")
	if !found || tokenString == "" {
		return auth.Identity{}, false, nil
	}
	id, err := auth.ParseToken(secret, tokenString)
	return id, true, err
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(UserIDKey, id.UserID)
	c.Set(UsernameKey, id.Username)
}
