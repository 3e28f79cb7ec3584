package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// PresenceHandlers exposes the registry's view of who is online.
type PresenceHandlers struct {
	registry *core.Registry
	log      *zerolog.Logger
}

// NewPresenceHandlers creates presence handlers over the registry.
func NewPresenceHandlers(registry *core.Registry, logger *zerolog.Logger) *PresenceHandlers {
	return &PresenceHandlers{registry: registry, log: logger}
}

// PresenceListResponse lists online users.
type PresenceListResponse struct {
	Online []int64 `json:"online"`
	Count  int     `json:"count"`
}

// UserPresenceResponse reports a single user's presence.
type UserPresenceResponse struct {
	UserID int64 `json:"user_id"`
	Online bool  `json:"online"`
}

// List returns the IDs of all online users.
// GET /api/presence
func (h *PresenceHandlers) List(c *gin.Context) {
	ids := h.registry.UserIDs()
	c.JSON(http.StatusOK, PresenceListResponse{Online: ids, Count: len(ids)})
}

// Get reports whether one user is online.
// GET /api/presence/:id
func (h *PresenceHandlers) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		h.log.Debug().Str("id", c.Param("id")).Msg("invalid user id")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	_, online := h.registry.Lookup(userID)
	c.JSON(http.StatusOK, UserPresenceResponse{UserID: userID, Online: online})
}
