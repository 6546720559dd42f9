package handler

import (
	"net/http"

	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/resp"
)

// HandlePing is the keepalive endpoint. Clients hit it to keep idle hosting awake.
func HandlePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, nil)
	}
}

// HandleHealth reports liveness plus the hub's roster and registry sizes.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := deps.Hub.Snapshot(r.Context())
		if users == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"service":    "presencehub",
			"online":     len(users),
			"registered": deps.Identities.Len(),
		})
	}
}

// HandleListUsers returns the current roster in join order.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users := deps.Hub.Snapshot(r.Context())
		if users == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": users,
		})
	}
}
