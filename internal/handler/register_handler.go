/*
Package handler provides HTTP handler functions for name registration.
*/
package handler

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"presencehub/internal/app/identity"
	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/req"
	"presencehub/internal/pkg/resp"
)

// MaxNameLength is the longest accepted display name, in runes.
const MaxNameLength = 64

type RegisterInput struct {
	Name *string `json:"name"`
}

// HandleRegister claims a display name and returns the allocated user.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Pow.Enabled() && !deps.Pow.CheckProofToken(r) {
			logx.Warn("Registration rejected: missing or invalid proof token.", "ip", r.RemoteAddr)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var input RegisterInput

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// {} is treated like a missing body
		if input.Name == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrEmptyBody))
			return
		}

		name := *input.Name

		if strings.TrimSpace(name) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrNameRequired))
			return
		}

		if utf8.RuneCountInString(name) > MaxNameLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrNameTooLong, MaxNameLength))
			return
		}

		u, err := deps.Identities.Register(name)
		if err != nil {
			var dup *identity.DuplicateNameError
			switch {
			case errors.As(err, &dup):
				resp.RespondError(w, r, errs.NewError(errs.ErrNameTaken))
			case errors.Is(err, identity.ErrEmptyName):
				resp.RespondError(w, r, errs.NewError(errs.ErrNameRequired))
			default:
				logx.Error(err, "Registration failed unexpectedly.")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		// the token is only spent on success; a concurrent request may have won it
		if deps.Pow.Enabled() && !deps.Pow.ConsumeProofToken(r) {
			deps.Identities.Unregister(u)
			logx.Warn("Registration rejected: proof token already used.", "ip", r.RemoteAddr)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": u,
		})
	}
}
