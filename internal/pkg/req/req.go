/*
Package req binds HTTP request bodies into Go values and maps binding failures to
application errors.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"presencehub/internal/pkg/errs"
)

// MaxJSONBodySize caps the bytes read from a JSON request body.
const MaxJSONBodySize int64 = 16 << 10 // 16 KB

// BindJSON decodes the request body into dst.
//
// The Content-Type header is not checked: registration clients historically sent
// JSON under arbitrary types. A missing body yields ErrEmptyBody; unknown fields and
// syntax errors yield ErrInvalidJSONFormat.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	if r.Body == nil {
		return errs.NewError(errs.ErrEmptyBody)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errs.NewError(errs.ErrEmptyBody)
		case errors.As(err, &maxErr):
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		default:
			return errs.NewError(errs.ErrInvalidJSONFormat)
		}
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
