// Package validator wraps go-playground/validator for request and
// configuration structs.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/sitepass/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator for structured validation.
// Field names in errors come from the json tag, then the yaml tag.
type Validator struct {
	v *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return &Validator{v: v}
}

// Struct validates a struct based on validation tags.
func (val *Validator) Struct(s interface{}) error {
	return val.v.Struct(s)
}

// Var validates a single variable against a tag.
func (val *Validator) Var(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// RegisterValidation registers a custom validation function.
func (val *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return val.v.RegisterValidation(tag, fn)
}

// Check validates s and converts the first failure into a domain
// ValidationError naming the offending field. message, when not empty,
// replaces the generated text.
func (val *Validator) Check(op string, s interface{}, message string) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()
	if ns := fe.Namespace(); strings.Contains(ns, ".") {
		field = ns[strings.Index(ns, ".")+1:]
	}
	if message == "" {
		message = Describe(field, fe.Tag(), fe.Param())
	}
	return domain.Validation(op, field, message)
}

// Describe renders a failed rule as a short sentence.
func Describe(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("Missing required field: %s.", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s.", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s.", field, param)
	case "email":
		return fmt.Sprintf("%s must be an email address.", field)
	default:
		return fmt.Sprintf("%s is invalid (%s).", field, tag)
	}
}
