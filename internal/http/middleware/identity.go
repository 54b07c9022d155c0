package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/briarkeep/briarkeep-backend/internal/platform/ctxutil"
	"github.com/briarkeep/briarkeep-backend/internal/platform/logger"
)

const (
	headerUserID    = "X-User-Id"
	headerSessionID = "X-Session-Id"
)

// IdentityMiddleware trusts identity headers set by the upstream gateway.
// Authentication itself happens there; this process only needs a stable
// user id for ownership checks and a session id for per-session behavior.
type IdentityMiddleware struct {
	log *logger.Logger
}

func NewIdentityMiddleware(log *logger.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{log: log.With("middleware", "IdentityMiddleware")}
}

func (im *IdentityMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerUserID))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing identity", "code": "unauthorized"},
			})
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			im.log.Warn("rejecting malformed user id header", "value", raw)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "invalid identity", "code": "unauthorized"},
			})
			return
		}

		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			UserID:    userID,
			SessionID: strings.TrimSpace(c.GetHeader(headerSessionID)),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
