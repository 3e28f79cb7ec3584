package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
)

// Close frame payloads are limited to 125 bytes, two of which hold the code.
const maxCloseReason = 123

var (
	errReauthFailed   = errors.New("re-authentication failed")
	errClosedByServer = errors.New("closed by server")
)

// WSHandler authenticates the upgrade request and bridges the WebSocket
// to the hub and dispatcher.
type WSHandler struct {
	hub        *core.Hub
	gate       *core.Gate
	dispatcher *core.Dispatcher
	cfg        *config.Config
	accept     *websocket.AcceptOptions
	log        *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, gate *core.Gate, dispatcher *core.Dispatcher, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	accept := &websocket.AcceptOptions{OriginPatterns: cfg.AllowedOrigins}
	if len(cfg.AllowedOrigins) == 0 {
		accept.InsecureSkipVerify = true
	}
	return &WSHandler{
		hub:        hub,
		gate:       gate,
		dispatcher: dispatcher,
		cfg:        cfg,
		accept:     accept,
		log:        logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	hs := handshakeFromRequest(r, h.cfg.AuthCookieName)
	id, err := h.gate.Authenticate(hs)
	if err != nil {
		h.log.Info().Err(err).Str("remote", r.RemoteAddr).Msg("ws connection rejected")
		stdhttp.Error(w, "unauthorized", stdhttp.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	client := newWSConn(uuid.NewString(), id.UserID, hs, h.cfg.SendBuffer)
	h.hub.Connect(id.UserID, client)
	defer h.hub.Disconnect(id.UserID, client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	// Close before cancelling: a cancelled read context tears the socket
	// down without the close frame.
	status, reason := h.closeStatus(err, client)
	conn.Close(status, reason)
	cancel()
	<-errCh
	client.Close("connection finished")
}

func (h *WSHandler) closeStatus(err error, client *wsConn) (websocket.StatusCode, string) {
	switch {
	case errors.Is(err, errReauthFailed):
		return websocket.StatusPolicyViolation, "authentication required"
	case errors.Is(err, errClosedByServer):
		return websocket.StatusGoingAway, client.closeReason
	case err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF):
		return websocket.StatusNormalClosure, "closing"
	}

	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		return status, "closing"
	}
	if status == -1 {
		status = websocket.StatusInternalError
	}
	h.log.Warn().Err(err).Str("conn_id", client.ID()).Msg("ws connection closed with error")
	reason := err.Error()
	if len(reason) > maxCloseReason {
		reason = reason[:maxCloseReason]
	}
	return status, reason
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *wsConn) error {
	limiter := newRateLimiter(h.cfg.MessagesPerMinute)

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID()).Msg("read ws inbound")
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(frame, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID()).Msg("malformed ws inbound")
			if err := client.reply(ctx, errorOutbound("", &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed envelope"})); err != nil {
				return err
			}
			continue
		}

		if !limiter.allow() {
			if err := client.reply(ctx, errorOutbound(inbound.ID, &proto.Error{Code: "rate_limited", Msg: "too many messages"})); err != nil {
				return err
			}
			continue
		}

		req, protoErr := inboundToRequest(inbound)
		if protoErr != nil {
			if err := client.reply(ctx, errorOutbound(inbound.ID, protoErr)); err != nil {
				return err
			}
			continue
		}

		receipt, err := h.dispatcher.Send(ctx, client, *req)
		if err != nil {
			var ce *core.CoreError
			if !errors.As(err, &ce) {
				ce = &core.CoreError{Code: core.ErrCodePersistenceFailed, Message: "message could not be stored"}
			}
			out := errorOutbound(inbound.ID, &proto.Error{Code: ce.Code, Msg: ce.Message})
			if ce.Code == core.ErrCodeUnauthorized {
				h.log.Info().Int64("user_id", client.userID).Str("conn_id", client.ID()).Msg("closing connection: credential no longer valid")
				// Written directly: the write loop stops as soon as we return.
				_ = wsjson.Write(ctx, conn, out)
				return errReauthFailed
			}
			if err := client.reply(ctx, out); err != nil {
				return err
			}
			continue
		}

		if err := client.reply(ctx, ackOutbound(inbound.ID, receipt.Message)); err != nil {
			return err
		}
		receipt.Fanout(ctx)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *wsConn) error {
	for {
		select {
		case ob := <-client.out:
			if err := wsjson.Write(ctx, conn, ob); err != nil {
				h.log.Debug().Err(err).Str("conn_id", client.ID()).Msg("write ws frame")
				return err
			}
		case <-client.done:
			return errClosedByServer
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
