package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presencehub/internal/pkg/resp"
)

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, out := get(t, srv, "/ping")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, resp.StatusOK, out.Status)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	register(t, srv, "Alice")

	status, out := get(t, srv, "/health")
	require.Equal(t, http.StatusOK, status)

	var health struct {
		Service    string `json:"service"`
		Online     int    `json:"online"`
		Registered int    `json:"registered"`
	}
	require.NoError(t, json.Unmarshal(out.Raw, &health))
	assert.Equal(t, "presencehub", health.Service)
	assert.Equal(t, 0, health.Online, "registered but not joined")
	assert.Equal(t, 1, health.Registered)
}

func TestListUsersEmpty(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, out := get(t, srv, "/api/users")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","users":[]}`, string(out.Raw))
}
