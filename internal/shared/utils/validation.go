package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/lnpos/voucherd/internal/shared/errors"
	"github.com/lnpos/voucherd/internal/shared/id"
)

const maxVoucherIDLength = 64

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names for validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("voucherid", func(fl validator.FieldLevel) bool {
		return id.IsValid(fl.Field().String(), maxVoucherIDLength)
	})
}

// Validator exposes the shared validator so gin binding can reuse its rules.
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct validates a struct and returns a user-friendly error
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	return TranslateValidationError(err)
}

// ValidateVar validates a single value against a tag expression.
func ValidateVar(field string, v interface{}, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperrors.NewValidationError("Validation failed", field+": "+getFieldErrorMessage(verrs[0]))
		}
		return apperrors.NewValidationError("Validation failed", err.Error())
	}
	return nil
}

// TranslateValidationError converts validator or binding errors into a validation AppError.
func TranslateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.NewValidationError("Invalid request body", err.Error())
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, getFieldErrorMessage(fe))
	}

	return apperrors.NewValidationError("Validation failed", strings.Join(messages, "; "))
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, param)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", field)
	case "voucherid":
		return fmt.Sprintf("%s must be an alphanumeric voucher id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
