package services

import (
	"net/http"

	apperrors "vastucraft/pkg/errors"
)

// statusFor maps an error code to the HTTP status returned to the client.
// Persistence failures are reported as a client error; anything unclassified is a 500.
func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.ErrCodeValidation, apperrors.ErrCodePersistence:
		return http.StatusBadRequest
	case apperrors.ErrCodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
