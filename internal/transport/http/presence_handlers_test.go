package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) get(t *testing.T, path, token string) *stdhttp.Response {
	t.Helper()

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, e.ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPresenceAPI(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice, aliceToken := env.createUser(t, "Alice")
	bob, bobToken := env.createUser(t, "Bob")
	env.dial(t, ctx, alice.ID, aliceToken)

	resp := env.get(t, "/api/presence", bobToken)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var list PresenceListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Equal(t, []int64{alice.ID}, list.Online)
	require.Equal(t, 1, list.Count)

	resp = env.get(t, "/api/presence/"+strconv.FormatInt(bob.ID, 10), bobToken)
	require.Equal(t, stdhttp.StatusOK, resp.StatusCode)
	var single UserPresenceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&single))
	require.Equal(t, UserPresenceResponse{UserID: bob.ID, Online: false}, single)
}

func TestPresenceAPIErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "Alice")

	require.Equal(t, stdhttp.StatusUnauthorized, env.get(t, "/api/presence", "").StatusCode)
	require.Equal(t, stdhttp.StatusUnauthorized, env.get(t, "/api/presence", "bogus").StatusCode)
	require.Equal(t, stdhttp.StatusBadRequest, env.get(t, "/api/presence/abc", token).StatusCode)
	require.Equal(t, stdhttp.StatusBadRequest, env.get(t, "/api/presence/0", token).StatusCode)
}
