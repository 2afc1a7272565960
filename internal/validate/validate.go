// Package validate checks request structs against their validate tags.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is the kind matched by every *Error.
var ErrInvalid = errors.New("invalid request")

// FieldError is one failed rule.
type FieldError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func (f FieldError) String() string {
	switch f.Tag {
	case "required", "notblank":
		return f.Field + " is required"
	case "required_without":
		return fmt.Sprintf("%s is required when %s is empty", f.Field, f.Param)
	case "required_with":
		return fmt.Sprintf("%s is required with %s", f.Field, f.Param)
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", f.Field, f.Param)
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", f.Field, f.Param)
	case "latitude", "longitude":
		return fmt.Sprintf("%s is not a valid %s", f.Field, f.Tag)
	}
	return fmt.Sprintf("%s failed %s", f.Field, f.Tag)
}

// Error lists every failed field of a request.
type Error struct {
	Fields []FieldError `json:"fields"`
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

func (e *Error) Is(target error) bool { return target == ErrInvalid }

var validate = validator.New()

func init() {
	// Report JSON names so messages match what clients sent.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Struct validates v, returning *Error when any rule fails.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating request: %w", err)
	}
	out := &Error{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()})
	}
	return out
}
