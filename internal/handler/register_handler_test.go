package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/resp"
)

func TestRegisterSuccess(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	status, out := postRegister(t, srv, `{"name":"Alice"}`, nil)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, resp.StatusOK, out.Status)
	assert.Equal(t, "Alice", out.User.Name)
	assert.NotEmpty(t, out.User.ID)
	assert.Equal(t, 1, deps.Identities.Len())
}

func TestRegisterRejects(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   int
	}{
		{"empty body", ``, http.StatusBadRequest, errs.ErrEmptyBody},
		{"empty object", `{}`, http.StatusBadRequest, errs.ErrEmptyBody},
		{"malformed json", `{"name":`, http.StatusBadRequest, errs.ErrInvalidJSONFormat},
		{"unknown field", `{"nick":"Alice"}`, http.StatusBadRequest, errs.ErrInvalidJSONFormat},
		{"trailing data", `{"name":"Alice"} {"name":"Bob"}`, http.StatusBadRequest, errs.ErrExtraContentInBody},
		{"blank name", `{"name":"   "}`, http.StatusBadRequest, errs.ErrNameRequired},
		{"empty name", `{"name":""}`, http.StatusBadRequest, errs.ErrNameRequired},
		{"name too long", `{"name":"` + strings.Repeat("é", MaxNameLength+1) + `"}`, http.StatusBadRequest, errs.ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, out := postRegister(t, srv, tt.body, nil)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, resp.StatusError, out.Status)
			assert.Equal(t, tt.wantCode, out.Code)
		})
	}

	assert.Equal(t, 0, deps.Identities.Len())
}

func TestRegisterEmptyBodyMessage(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, out := postRegister(t, srv, ``, nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Empty request body!", out.Message)
}

func TestRegisterLongestNameAccepted(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	u := register(t, srv, strings.Repeat("é", MaxNameLength))
	assert.Equal(t, MaxNameLength, len([]rune(u.Name)))
}

func TestRegisterDuplicate(t *testing.T) {
	srv, deps := newTestServer(t, nil)

	first := register(t, srv, "Alice")

	status, out := postRegister(t, srv, `{"name":"Alice"}`, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, errs.ErrNameTaken, out.Code)
	assert.Equal(t, "This name is already taken!", out.Message)
	assert.Equal(t, 1, deps.Identities.Len())

	other := register(t, srv, "alice")
	assert.NotEqual(t, first.ID, other.ID, "names are case-sensitive")
}

func TestRegisterIgnoresContentType(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	status, out := postRegister(t, srv, `{"name":"Alice"}`, http.Header{"Content-Type": {"text/plain"}})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice", out.User.Name)
}

func TestRegisterRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"REGISTER_RATE":  "0.001",
		"REGISTER_BURST": "1",
	})

	register(t, srv, "Alice")

	status, out := postRegister(t, srv, `{"name":"Bob"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, errs.ErrRateLimitExceeded, out.Code)
}
