// Package validation wraps go-playground/validator with messages that name
// fields by their JSON keys.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return instance
}

// Error describes the failed rules of a struct
type Error struct {
	// Missing lists the fields that failed "required", in declaration order
	Missing []string
	// Message describes the first non-required failure, if any
	Message string
}

func (e *Error) Error() string {
	if len(e.Missing) > 0 {
		return "Missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return e.Message
}

// Struct validates s. It returns nil or an *Error.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Error{Message: err.Error()}
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			out.Missing = append(out.Missing, fe.Field())
			continue
		}
		if out.Message == "" {
			out.Message = fieldMessage(fe)
		}
	}
	return out
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
