package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation indicates a decoded body failed struct validation.
	ErrValidation = errors.New("validation failed")

	// ErrBinding indicates the body could not be decoded at all.
	ErrBinding = errors.New("binding failed")

	// ErrTrailingData indicates the body held more than one JSON value.
	ErrTrailingData = errors.New("unexpected data after JSON value")

	errEmptyBody = errors.New("empty request body")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator. Field names in its errors are the
// JSON names clients send.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
	})

	return validate
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

// Validate validates a struct using the shared validator.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes the JSON body into v and validates it. The body
// must hold exactly one JSON value.
func BindAndValidate(c *gin.Context, v any) error {
	if err := decodeJSON(c.Request.Body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

func decodeJSON(r io.Reader, v any) error {
	if r == nil {
		return errEmptyBody
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}

	_, err := dec.Token()

	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &maxErr):
		return err
	default:
		return ErrTrailingData
	}
}

// IsBodyTooLarge reports whether err came from reading past the request
// body limit, and returns that limit.
func IsBodyTooLarge(err error) (int64, bool) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr.Limit, true
	}

	return 0, false
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// ValidationErrors maps each failing field to a readable message.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fieldErrors[fieldErr.Field()] = validationMessage(fieldErr)
		}
	}

	return fieldErrors
}

// BindingErrors describes decode failures that can be pinned to a field,
// such as a number sent where a string is expected. It returns nil when the
// failure concerns the body as a whole.
func BindingErrors(err error) map[string]string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{
			typeErr.Field: "must be a " + typeErr.Type.String(),
		}
	}

	return nil
}

func validationMessage(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "this field is required"
	}

	return "failed validation: " + fe.Tag()
}
