// internal/contract/validate.go
package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in errors are the JSON wire names.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// SchemaViolation describes the first field that failed validation.
type SchemaViolation struct {
	Field   string
	Rule    string
	Message string
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate returns v unchanged if it conforms to its struct tags, otherwise a *SchemaViolation.
func Validate[T any](v T) (T, error) {
	err := Validator().Struct(v)
	if err == nil {
		return v, nil
	}
	return v, toViolation(err, "")
}

// ValidateList validates every element, reporting the first failure with its index.
func ValidateList[T any](items []T) ([]T, error) {
	for i, item := range items {
		if err := Validator().Struct(item); err != nil {
			return items, toViolation(err, fmt.Sprintf("[%d].", i))
		}
	}
	return items, nil
}

// Decode unmarshals data into T and validates the result.
func Decode[T any](data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, decodeViolation(err)
	}
	return Validate(v)
}

// DecodeList unmarshals a JSON array into []T and validates every element.
// A JSON null decodes to an empty, non-nil slice.
func DecodeList[T any](data []byte) ([]T, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, decodeViolation(err)
	}
	if items == nil {
		items = []T{}
	}
	return ValidateList(items)
}

func decodeViolation(err error) *SchemaViolation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &SchemaViolation{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &SchemaViolation{Rule: "json", Message: "malformed JSON body"}
}

func toViolation(err error, prefix string) *SchemaViolation {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &SchemaViolation{Rule: "invalid", Message: err.Error()}
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	// drop the root struct name
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	return &SchemaViolation{
		Field:   prefix + field,
		Rule:    fe.Tag(),
		Message: ruleMessage(fe),
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "boolean":
		return "must be true or false"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
