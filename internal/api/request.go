package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/2beens/fittrack/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their json names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads the body into dst and validates it. An empty body is
// accepted and decodes as the zero value.
func DecodeJSON(r *http.Request, dst any) error {
	if r.Body != nil {
		err := json.NewDecoder(r.Body).Decode(dst)
		if err != nil && !errors.Is(err, io.EOF) {
			return apperr.Validation(map[string][]string{
				"body": {fmt.Sprintf("malformed json: %s", err)},
			})
		}
	}
	return Validate(dst)
}

// Validate runs the `validate` struct tags and converts failures to field messages.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperr.Internal(err)
	}

	fe := apperr.FieldErrors{}
	for _, fieldErr := range validationErrs {
		fe.Add(fieldErr.Field(), messageFor(fieldErr))
	}
	return fe.Err()
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("may not be greater than %s characters", fe.Param())
		}
		return fmt.Sprintf("may not be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lte":
		return fmt.Sprintf("may not be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// PathInt reads a positive integer path variable.
func PathInt(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apperr.Validation(map[string][]string{
			name: {"must be a positive integer"},
		})
	}
	return v, nil
}

// QueryInt reads an integer query parameter, returning def when absent.
func QueryInt(r *http.Request, name string, def, min, max int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, apperr.Validation(map[string][]string{
			name: {fmt.Sprintf("must be an integer between %d and %d", min, max)},
		})
	}
	return v, nil
}

// Pagination reads page and per_page (default 15, at most 100).
func Pagination(r *http.Request) (page, perPage int, err error) {
	page, err = QueryInt(r, "page", 1, 1, 1_000_000)
	if err != nil {
		return 0, 0, err
	}
	perPage, err = QueryInt(r, "per_page", 15, 1, 100)
	if err != nil {
		return 0, 0, err
	}
	return page, perPage, nil
}
