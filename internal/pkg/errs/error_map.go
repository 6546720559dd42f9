package errs

import "net/http"

// errorMap holds the message template and HTTP status for every error code.
// Messages containing printf verbs are formatted with NewError's details.
var errorMap = map[int]CustomError{
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed request body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrEmptyBody:             {Code: ErrEmptyBody, Message: "Empty request body!", Status: http.StatusBadRequest},

	ErrNameTaken:    {Code: ErrNameTaken, Message: "This name is already taken!", Status: http.StatusConflict},
	ErrNameRequired: {Code: ErrNameRequired, Message: "Name cannot be empty.", Status: http.StatusBadRequest},
	ErrNameTooLong:  {Code: ErrNameTooLong, Message: "Name must be at most %d characters.", Status: http.StatusBadRequest},

	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again.", Status: http.StatusForbidden},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again.", Status: http.StatusBadRequest},
	ErrPowDisabled:          {Code: ErrPowDisabled, Message: "Verification is not enabled on this server.", Status: http.StatusNotFound},

	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
