/*
Package errs provides the application error type and the error codes returned to
HTTP clients.
*/
package errs

// 1xxx: General request handling errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the endpoint.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the caller's IP exhausted its token bucket.
	ErrRateLimitExceeded = 1007

	// ErrEmptyBody indicates a missing body or an empty JSON object.
	ErrEmptyBody = 1008
)

// 2xxx: Registration errors
const (
	// ErrNameTaken indicates that the requested display name belongs to a present user.
	ErrNameTaken = 2001

	// ErrNameRequired indicates a blank display name.
	ErrNameRequired = 2002

	// ErrNameTooLong indicates a display name longer than the allowed rune count.
	ErrNameTooLong = 2003
)

// 3xxx: Anti-abuse errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the submitted proof is wrong or its nonce expired.
	ErrPowChallengeInvalid = 3002

	// ErrPowDisabled indicates that the server runs without a Proof-of-Work requirement.
	ErrPowDisabled = 3003
)

// 5xxx: Internal errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000
)
