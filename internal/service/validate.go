package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/gympoint/gympoint-api/pkg/errors"
)

// validationError flattens validator failures into the per-field message
// list carried on the wire under "errors".
func validationError(err error) *appErrors.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Validation(err, nil)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldMessage(fe))
	}
	return appErrors.Validation(err, fields)
}

func fieldMessage(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is a required field", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
