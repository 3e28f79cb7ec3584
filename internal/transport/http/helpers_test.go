package http

import (
	"context"
	"encoding/json"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/config"
	"github.com/vovakirdan/wirechat-relay/internal/core"
	"github.com/vovakirdan/wirechat-relay/internal/proto"
	"github.com/vovakirdan/wirechat-relay/internal/store"
	"github.com/vovakirdan/wirechat-relay/internal/store/sqlite"
)

type testEnv struct {
	ts    *httptest.Server
	store *sqlite.SQLiteStore
	jwt   *auth.JWTConfig
	hub   *core.Hub
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = "testsecret"
	cfg.JWTAudience = "test"
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	}

	logger := zerolog.Nop()
	hub := core.NewHub(&logger)
	gate := core.NewGate(auth.NewVerifier(jwtConfig), &logger)
	dispatcher := core.NewDispatcher(gate, st, hub.Registry(), &logger)

	server := NewServer(hub, gate, dispatcher, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		hub.Shutdown()
		ts.Close()
	})

	return &testEnv{ts: ts, store: st, jwt: jwtConfig, hub: hub}
}

func (e *testEnv) createUser(t *testing.T, name string) (*store.User, string) {
	t.Helper()
	return e.createUserWithTTL(t, name, e.jwt.TTL)
}

func (e *testEnv) createUserWithTTL(t *testing.T, name string, ttl time.Duration) (*store.User, string) {
	t.Helper()

	user, err := e.store.CreateUser(context.Background(), &store.User{
		FirstName:    name,
		Username:     strings.ToLower(name),
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}

	cfg := *e.jwt
	cfg.TTL = ttl
	token, err := auth.GenerateToken(&cfg, auth.Identity{UserID: user.ID, UUID: user.UUID, DisplayName: user.DisplayName()})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return user, token
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

// dial connects with a bearer token and waits until the hub has registered
// the connection.
func (e *testEnv) dial(t *testing.T, ctx context.Context, userID int64, token string) *websocket.Conn {
	t.Helper()

	header := stdhttp.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.Dial(ctx, e.wsURL(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	e.waitOnline(t, userID, true)
	return conn
}

func (e *testEnv) waitOnline(t *testing.T, userID int64, online bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := e.hub.Registry().Lookup(userID); ok == online {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %d online=%v not observed", userID, online)
}

type rawOutbound struct {
	Type  string          `json:"type"`
	ID    string          `json:"id"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// readFrame reads frames until one matches the type and, for events, the
// event name. Presence events not asked for are skipped.
func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, typ, event string) rawOutbound {
	t.Helper()

	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read %s/%s: %v", typ, event, err)
		}
		if out.Type == typ && (event == "" || out.Event == event) {
			return out
		}
		if out.Type == proto.OutboundTypeEvent && out.Event == proto.EventNameUserStatus {
			continue
		}
		t.Fatalf("unexpected frame while waiting for %s/%s: %+v", typ, event, out)
	}
}

// expectSilence asserts that no chat message or ack arrives within wait.
func expectSilence(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	for {
		var out rawOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			return
		}
		if out.Event == proto.EventNameUserStatus {
			continue
		}
		t.Fatalf("expected no frames, got %+v", out)
	}
}

func sendMessage(t *testing.T, ctx context.Context, conn *websocket.Conn, requestID string, data proto.SendData) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMessage, ID: requestID, Data: payload}); err != nil {
		t.Fatalf("send %s: %v", requestID, err)
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", fmt.Sprintf("%T", v), err)
	}
	return v
}
