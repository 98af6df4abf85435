package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"innoportal/internal/apperr"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names so messages match the request payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs the validate tags of s and turns the first failure into a
// validation error naming the field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation("invalid payload")
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation("%s is required", fe.Field())
	case "slug":
		return apperr.Validation("%s must contain only lowercase letters, digits and single hyphens", fe.Field())
	case "max":
		return apperr.Validation("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return apperr.Validation("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return apperr.Validation("%s must be a valid email address", fe.Field())
	default:
		return apperr.Validation("%s is invalid", fe.Field())
	}
}

// nilIfBlank trims v and drops it when nothing is left.
func nilIfBlank(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
