package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/correction-service/internal/errors"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")

	// Correction preconditions. A request failing one of these can never succeed.
	ErrInvalidCorrectionRequest = errors.New("invalid correction request")
	ErrResultNotFound           = errors.New("result not found")
	ErrTestNotFound             = errors.New("test not found")
	ErrTestMismatch             = errors.New("correction request does not match the result's test")

	ErrQuestionNotFound  = errors.New("question not found")
	ErrQuestionNotInTest = errors.New("question does not belong to the result's test")
	ErrResultFinished    = errors.New("result is already finished")
	ErrNothingToCorrect  = errors.New("result has no answers to correct")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	err     error
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	return bre.err
}

// NewBusinessRuleError builds a rule violation that still matches cause with errors.Is.
func NewBusinessRuleError(rule string, cause error, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: cause.Error(),
		Context: context,
		err:     cause,
	}
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrInvalidCorrectionRequest) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsPrecondition reports whether a correction failed before any work could start
// for a reason that retrying will not fix.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrInvalidCorrectionRequest) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrTestMismatch)
}
