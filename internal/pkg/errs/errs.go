package errs

import (
	"fmt"
	"net/http"
	"strings"

	"presencehub/internal/pkg/logx"
)

// CustomError carries a business code, a client-facing message and the HTTP status
// used when the error is written as a response.
type CustomError struct {
	Code    int
	Message string
	Status  int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError builds a *CustomError from a registered code. details are printf
// arguments for templated messages; for ErrUnknown the first detail may be the
// underlying error, which is logged rather than exposed. Unregistered codes fall
// back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	template, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("unknown error code %d", code),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknown := errorMap[ErrUnknown]
		return &unknown
	}

	customErr := template

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	switch {
	case len(details) == 0:
	case code == ErrUnknown:
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	case strings.Contains(customErr.Message, "%"):
		customErr.Message = fmt.Sprintf(customErr.Message, details...)
	default:
		logx.Warn("Details provided for an error without placeholders. Details ignored.", "code", code)
	}

	return &customErr
}
