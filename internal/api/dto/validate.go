package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

var validate = validator.New()

// Validate checks struct tags and converts failures into a validation error
// with a client-safe message.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperrors.NewValidationError("invalid payload")
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				fields = append(fields, fmt.Sprintf("%s is required", lowerFirst(fe.Field())))
			case "email":
				fields = append(fields, fmt.Sprintf("%s must be a valid email", lowerFirst(fe.Field())))
			default:
				fields = append(fields, fmt.Sprintf("%s is invalid", lowerFirst(fe.Field())))
			}
		}
		return apperrors.NewValidationError(strings.Join(fields, "; "))
	}
	return apperrors.NewValidationError("invalid payload")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
