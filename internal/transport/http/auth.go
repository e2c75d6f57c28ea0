package httptransport

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inventory-server-go/internal/domain/auth"
	"inventory-server-go/internal/platform/logging"
	"inventory-server-go/internal/transport/http/envelope"
)

// Context keys written by the auth middleware.
const (
	ContextAccountID = "account_id"
	ContextUsername  = "username"
	ContextClaims    = "claims"
)

// NewAuthMiddleware returns a middleware that verifies the Authorization
// bearer token against the session manager and stores the caller identity in
// the gin context. Missing or invalid tokens are rejected with a 401
// envelope.
func NewAuthMiddleware(manager *auth.Manager, env *envelope.Builder, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			rejectUnauthorized(c, env, "missing bearer token")
			return
		}
		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}

		claims, err := manager.VerifyBearer(token)
		if err != nil {
			if logger != nil {
				logger.DebugTag("AUTH", "rejected token: %v", err)
			}
			rejectUnauthorized(c, env, "invalid or expired token")
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

func rejectUnauthorized(c *gin.Context, env *envelope.Builder, message string) {
	envelope.Write(c, env.FailureStatus(http.StatusUnauthorized, "unauthorized", message))
	c.Abort()
}

// AccountID reads the authenticated account id the middleware stored.
func AccountID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(ContextAccountID)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// Username reads the authenticated username the middleware stored.
func Username(c *gin.Context) (string, bool) {
	value, ok := c.Get(ContextUsername)
	if !ok {
		return "", false
	}
	name, ok := value.(string)
	return name, ok
}

// BearerClaims reads the full verified claims the middleware stored.
func BearerClaims(c *gin.Context) (*auth.Claims, bool) {
	value, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}
