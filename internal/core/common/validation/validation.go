package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	errors "github.com/frahmantamala/event-management/internal"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("validation: register notblank: %v", err))
	}
	return v
}

// Register adds a custom tag. Call it from package init only.
func Register(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s and returns a VALIDATION_FAILED AppError listing every field error.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.NewValidationError(err.Error(), errors.ErrCodeValidationFailed)
	}

	out := make([]errors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errors.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    string(codeFor(fe.Tag())),
		})
	}
	return errors.NewValidationFieldErrors(out)
}

func codeFor(tag string) errors.ErrorCode {
	switch tag {
	case "eventcategory":
		return errors.ErrCodeInvalidCategory
	default:
		return errors.ErrCodeValidationFailed
	}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "eventcategory":
		return fmt.Sprintf("%s is not a known event category", field)
	default:
		return fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
	}
}
