package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// ContextKeyUserID is the context key for storing user ID.
const ContextKeyUserID = "user_id"

// AuthMiddleware rejects requests whose cookie or bearer token does not
// pass the gate.
func AuthMiddleware(gate *core.Gate, cookieName string, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := gate.Authenticate(handshakeFromRequest(c.Request, cookieName))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("unauthenticated request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}

		c.Set(ContextKeyUserID, id.UserID)

		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		ev := logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start))
		if userID := c.GetInt64(ContextKeyUserID); userID > 0 {
			ev = ev.Int64("user_id", userID)
		}
		ev.Msg("http request")
	}
}
