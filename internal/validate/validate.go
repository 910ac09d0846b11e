// Package validate checks request structs against their validate tags and
// reports the first failure as a ValidationFailed error.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"hospital-portal/internal/apperr"
)

var v *validator.Validate

var messages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"gte":      "must be at least %s",
	"datetime": "must be a date formatted YYYY-MM-DD",
	"numeric":  "must be a number",
	"gt":       "must be greater than %s",
}

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
}

// Struct returns nil or an *apperr.Error of kind ValidationFailed.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(err, apperr.KindValidationFailed, "invalid input", "")
	}
	return apperr.Wrap(err, apperr.KindValidationFailed, format(verrs[0]), "")
}

// Var checks a single value against a tag list.
func Var(field string, value any, tag string) error {
	err := v.Var(value, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Wrap(err, apperr.KindValidationFailed, field+" "+message(verrs[0]), "")
	}
	return apperr.Wrap(err, apperr.KindValidationFailed, field+" is invalid", "")
}

func format(fe validator.FieldError) string {
	return fe.Field() + " " + message(fe)
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		msg = strings.Replace(msg, "%s", fe.Param(), 1)
	}
	return msg
}
