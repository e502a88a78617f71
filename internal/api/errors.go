// internal/api/errors.go
package api

import (
	"errors"

	"github.com/sarcascoder/Netflix-clone/internal/contract"
	"github.com/sarcascoder/Netflix-clone/internal/store"
)

var errUnauthorized = errors.New("authentication required")

// apiError is a classified failure, ready to be written as a contract.ErrorBody.
type apiError struct {
	kind    contract.ErrorKind
	message string
	field   string
	cause   error
}

// classify maps any handler or store error onto one of the contract error kinds.
// Unknown errors become StoreFailure with a generic message; the cause is only logged.
func classify(err error) apiError {
	var violation *contract.SchemaViolation
	switch {
	case errors.Is(err, errUnauthorized):
		return apiError{kind: contract.KindUnauthorized, message: "Unauthorized", cause: err}
	case errors.As(err, &violation):
		return apiError{kind: contract.KindInvalidInput, message: violation.Error(), field: violation.Field, cause: err}
	case errors.Is(err, store.ErrTitleNotFound):
		return apiError{kind: contract.KindNotFound, message: "Title not found", cause: err}
	case errors.Is(err, store.ErrUnknownTitle):
		return apiError{kind: contract.KindNotFound, message: "Unknown title", field: "titleId", cause: err}
	default:
		return apiError{kind: contract.KindStoreFailure, message: "Internal server error", cause: err}
	}
}

func (e apiError) body() contract.ErrorBody {
	return contract.ErrorBody{Message: e.message, Field: e.field}
}

// outcome is the metrics label for a terminal request state.
func outcome(kind contract.ErrorKind) string {
	switch kind {
	case contract.KindUnauthorized:
		return "unauthorized"
	case contract.KindInvalidInput:
		return "invalid_input"
	case contract.KindNotFound:
		return "not_found"
	default:
		return "store_failure"
	}
}
