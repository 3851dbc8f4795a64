package auth

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// max counts runes, bcrypt limits bytes
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	return v
}

// ValidationError is a rejected request. Err is the sentinel describing the
// request as a whole, Fields holds one message per offending field.
type ValidationError struct {
	Err    error
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validateRequest reports missing fields as sentinel. Requests that are
// complete but carry a malformed field fail with ErrInvalidInput.
func validateRequest(req interface{}, sentinel error) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Err: sentinel}
	}

	cause := ErrInvalidInput
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			cause = sentinel
			fields = append(fields, fmt.Sprintf("%s is required", fe.Field()))
		case "required_without":
			cause = sentinel
			fields = append(fields, fmt.Sprintf("%s or %s is required", fe.Field(), strings.ToLower(fe.Param())))
		case "maxbytes":
			fields = append(fields, fmt.Sprintf("%s must be at most %s bytes", fe.Field(), fe.Param()))
		default:
			fields = append(fields, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return &ValidationError{Err: cause, Fields: fields}
}
