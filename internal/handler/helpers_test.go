package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"presencehub/internal/app/chat"
	"presencehub/internal/app/identity"
	"presencehub/internal/app/user"
	"presencehub/internal/configs"
)

// newTestServer runs a hub and the full router behind an httptest.Server. Extra
// environment entries override the generous test defaults.
func newTestServer(t *testing.T, environ map[string]string) (*httptest.Server, *AppDeps) {
	t.Helper()

	vars := map[string]string{
		"REGISTER_BURST": "1000",
		"CONNECT_BURST":  "1000",
	}
	for k, v := range environ {
		vars[k] = v
	}

	cfg, err := configs.LoadConfigFrom(vars)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	identities := identity.NewRegistry()
	hub := chat.NewHub(identities)
	go func() {
		_ = hub.Run(ctx)
	}()

	deps := NewAppDeps(ctx, cfg, identities, hub)
	srv := httptest.NewServer(Router(deps))

	t.Cleanup(srv.Close)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})

	return srv, deps
}

type apiResponse struct {
	Status  string          `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	User    user.User       `json:"user"`
	Users   []user.User     `json:"users"`
	Raw     json.RawMessage `json:"-"`
}

func doRequest(t *testing.T, req *http.Request) (int, apiResponse) {
	t.Helper()

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var out apiResponse
	require.NoError(t, json.Unmarshal(body, &out), "non-JSON response: %s", body)
	out.Raw = body

	return res.StatusCode, out
}

func postRegister(t *testing.T, srv *httptest.Server, body string, header http.Header) (int, apiResponse) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/new-user", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return doRequest(t, req)
}

func register(t *testing.T, srv *httptest.Server, name string) user.User {
	t.Helper()

	body, err := json.Marshal(map[string]string{"name": name})
	require.NoError(t, err)

	status, out := postRegister(t, srv, string(body), nil)
	require.Equal(t, http.StatusOK, status, "register %q: %s", name, out.Raw)

	return out.User
}

func get(t *testing.T, srv *httptest.Server, path string) (int, apiResponse) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)

	return doRequest(t, req)
}
