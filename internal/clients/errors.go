// internal/clients/errors.go
package clients

import (
	"errors"
	"fmt"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// APIError is a failed contract operation. Status is 0 when the request was rejected
// before reaching the server.
type APIError struct {
	Operation string
	Kind      contract.ErrorKind
	Status    int
	Message   string
	Field     string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s (%d): %s", e.Operation, e.Kind, e.Status, e.Message)
	if e.Field != "" {
		msg += " [field " + e.Field + "]"
	}
	return msg
}

// Is lets callers match on the kind sentinels with errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Kind == contract.KindUnauthorized
	case ErrNotFound:
		return e.Kind == contract.KindNotFound
	case ErrInvalidInput:
		return e.Kind == contract.KindInvalidInput
	}
	return false
}

// IsUnauthorized distinguishes "not signed in" from an empty watchlist.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
