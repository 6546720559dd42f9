/*
Package resp writes the JSON envelopes returned by the HTTP endpoints.

Success bodies are {"status":"ok", ...fields}; error bodies are
{"status":"error","code":N,"message":"..."}.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"presencehub/internal/pkg/errs"
	"presencehub/internal/pkg/logx"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondJSON sets the headers and writes payload with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(httpStatus)

	if _, err := w.Write(body); err != nil {
		logx.Warn("Failed to write response body", "error", err.Error())
	}
}

// RespondSuccess writes HTTP 200 with fields merged next to "status":"ok".
func RespondSuccess(w http.ResponseWriter, r *http.Request, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["status"] = StatusOK

	RespondJSON(w, r, http.StatusOK, body)
}

// RespondError writes customErr using its HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, ErrorResponse{
		Status:  StatusError,
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
