package validator

import (
	"github.com/SAP-F-2025/correction-service/internal/errors"
)

// Use shared validation errors from errors package
type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

// ToValidationErrors converts go-playground field errors into ValidationErrors.
func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}
