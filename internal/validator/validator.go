package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/correction-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground validation with the service's custom rules.
type Validator struct {
	structValidator *validator.Validate
}

func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{structValidator: structValidator}
}

// Validate checks struct tags and struct-level rules. Failures are returned as ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("result_state", validateResultState)

	validate.RegisterStructValidation(validateCorrectionRequest, models.CorrectionRequest{})

	// Report json names so errors line up with request payloads
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.MultipleChoice, models.FreeText, models.Exercise:
		return true
	}
	return false
}

func validateResultState(fl validator.FieldLevel) bool {
	switch models.ResultState(fl.Field().String()) {
	case models.ResultPending, models.ResultInProgress, models.ResultFinish:
		return true
	}
	return false
}

func validateCorrectionRequest(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CorrectionRequest)

	seen := make(map[uint]struct{}, len(req.Answers))
	for _, a := range req.Answers {
		if _, dup := seen[a.QuestionID]; dup {
			sl.ReportError(req.Answers, "answers", "Answers", "unique_question", "")
			return
		}
		seen[a.QuestionID] = struct{}{}
	}
}
