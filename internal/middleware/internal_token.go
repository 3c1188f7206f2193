package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stylistbook/internal/pkg/response"
)

const internalTokenHeader = "X-Internal-Token"

// InternalTokenAuth protects internal endpoints with a static token sent as
// X-Internal-Token or as a bearer token.
func InternalTokenAuth(expected string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			logAuthFailure(c, logger, http.StatusInternalServerError, "token_not_configured")
			response.Abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal token is not configured")
			return
		}

		token := c.GetHeader(internalTokenHeader)
		if token == "" {
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token = strings.TrimSpace(parts[1])
			}
		}
		if token == "" {
			logAuthFailure(c, logger, http.StatusUnauthorized, "missing_token")
			response.Abort(c, http.StatusUnauthorized, "AUTH_MISSING", "Internal token is required")
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			logAuthFailure(c, logger, http.StatusForbidden, "invalid_token")
			response.Abort(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token")
			return
		}

		c.Next()
	}
}

func logAuthFailure(c *gin.Context, logger *zap.Logger, status int, reason string) {
	logger.Warn("internal auth rejected",
		zap.Int("status", status),
		zap.String("reason", reason),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", RequestIDFrom(c)),
	)
}
