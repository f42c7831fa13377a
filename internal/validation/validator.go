// Package validation checks service inputs with go-playground/validator and
// reports failures as apperr validation errors keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single invalid field.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// Error lists every invalid field of one input.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Msg
	}
	return strings.Join(parts, "; ")
}

// Validator wraps a configured validator.Validate.
type Validator struct {
	validator *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || models.Visibility(s).Valid()
	})
	_ = v.RegisterValidation("decision_status", func(fl validator.FieldLevel) bool {
		return models.DecisionStatus(fl.Field().String()).Valid()
	})

	return &Validator{validator: v}
}

var std = New()

// Struct validates in with the shared validator.
func Struct(in interface{}) error {
	return std.Struct(in)
}

// Struct returns nil or an apperr validation error wrapping *Error.
func (v *Validator) Struct(in interface{}) error {
	err := v.validator.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(err, "validation failed")
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Msg: message(fe)})
	}
	appErr := apperr.Validation("validation.invalid_input", out.Error())
	appErr.Err = out
	return appErr
}

// Fields extracts the per-field errors from err, if it carries any.
func Fields(err error) []FieldError {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid e-mail address"
	case "category":
		return "must be 'academic' or 'administrative'"
	case "visibility":
		return "must be 'standard' or 'anonymous'"
	case "decision_status":
		return "must be 'pending', 'action_required' or 'final'"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
