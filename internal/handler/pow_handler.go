package handler

import (
	"errors"
	"net/http"

	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/logx"
	"presencehub/internal/pkg/pow"
	"presencehub/internal/pkg/req"
	"presencehub/internal/pkg/resp"
)

type PowVerifyInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowChallenge issues a nonce and the current difficulty.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowDisabled))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      deps.Pow.GenerateNonce(),
			"difficulty": deps.Pow.Difficulty(),
		})
	}
}

// HandlePowVerify exchanges a solved challenge for a proof token.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.Enabled() {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowDisabled))
			return
		}

		var input PowVerifyInput

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Nonce == "" || input.Counter == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		token, err := deps.Pow.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			if !errors.Is(err, pow.ErrNonceInvalid) && !errors.Is(err, pow.ErrProofInsufficient) {
				logx.Error(err, "Unexpected proof validation failure.")
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"token":     token,
			"expiresIn": int(pow.ProofTokenDuration.Seconds()),
		})
	}
}
