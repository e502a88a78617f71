// internal/contract/errors.go
package contract

import "net/http"

// ErrorKind classifies every failure that can cross the wire.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "Unauthorized"
	KindInvalidInput ErrorKind = "InvalidInput"
	KindNotFound     ErrorKind = "NotFound"
	KindStoreFailure ErrorKind = "StoreFailure"
)

// Status maps a kind to its HTTP status code.
func (k ErrorKind) Status() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// KindForStatus is the inverse of Status, used by clients decoding a failure.
func KindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusBadRequest:
		return KindInvalidInput
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindStoreFailure
	}
}

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Message string `json:"message" validate:"required"`
	Field   string `json:"field,omitempty"`
}
