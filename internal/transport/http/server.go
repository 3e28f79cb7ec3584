package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the HTTP server: health check, WebSocket endpoint and
// the authenticated presence API. The WebSocket endpoint sits on the bare
// mux; gin's response writer refuses to hijack once Accept has written
// the upgrade headers.
func NewServer(hub *core.Hub, gate *core.Gate, dispatcher *core.Dispatcher, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	presence := NewPresenceHandlers(hub.Registry(), logger)
	api := router.Group("/api", AuthMiddleware(gate, cfg.AuthCookieName, logger))
	api.GET("/presence", presence.List)
	api.GET("/presence/:id", presence.Get)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, gate, dispatcher, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// handshakeFromRequest collects the credential sources of an HTTP request.
func handshakeFromRequest(r *stdhttp.Request, cookieName string) core.Handshake {
	hs := core.Handshake{Authorization: r.Header.Get("Authorization")}
	if cookie, err := r.Cookie(cookieName); err == nil {
		hs.Cookie = cookie.Value
	}
	return hs
}
