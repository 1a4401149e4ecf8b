package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
	"github.com/MKhiriev/go-secret-keeper/internal/store"
)

// errInvalidJSON is reported for request bodies that do not decode.
var errInvalidJSON = errors.New("request body must be JSON")

var errorStatusMap = map[error]int{
	errInvalidJSON:                   http.StatusBadRequest,
	service.ErrInvalidDataProvided:   http.StatusBadRequest,
	service.ErrValidationNoSecretID:  http.StatusBadRequest,
	service.ErrValidationNoUserID:    http.StatusBadRequest,
	service.ErrValidationNoEmail:     http.StatusBadRequest,
	service.ErrVersionIsNotSpecified: http.StatusBadRequest,
	service.ErrSecretNotFound:        http.StatusNotFound,
	service.ErrUserNotFound:          http.StatusNotFound,

	store.ErrVersionConflict:   http.StatusConflict,
	store.ErrEmailAlreadyTaken: http.StatusConflict,
	kv.ErrInvalidKey:           http.StatusBadRequest,
	kv.ErrBatchTooLarge:        http.StatusBadRequest,
	kv.ErrInvalidValue:         http.StatusBadRequest,

	store.ErrReadingRecord:        http.StatusInternalServerError,
	store.ErrDecodingRecord:       http.StatusInternalServerError,
	store.ErrCommitingTransaction: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		// 4xx entries win over 5xx ones when an error matches both
		if status < http.StatusInternalServerError && errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status mapped from err. 5xx responses hide
// the error text.
func writeError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	message := err.Error()
	switch {
	case errors.Is(err, service.ErrSecretNotFound):
		message = "Secret not found or already read."
	case status >= http.StatusInternalServerError:
		message = http.StatusText(status)
	}
	http.Error(w, message, status)
}
