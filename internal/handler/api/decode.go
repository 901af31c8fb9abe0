// Package api serves the JSON pricing and filing-intelligence endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	errEmptyBody   = &domain.Error{Code: domain.EINVALID, Message: "Request body is required"}
	errMalformed   = &domain.Error{Code: domain.EINVALID, Message: "Request body is not valid JSON"}
	errBodyTooBig  = &domain.Error{Code: domain.ETOOLARGE, Message: "Request body too large"}
	errTrailingRaw = &domain.Error{Code: domain.EINVALID, Message: "Request body must contain a single JSON object"}
)

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object from the request into dst.
func decodeJSON(r *http.Request, dst any) error {
	const op = "api.decode"

	if r.Body == nil {
		return errEmptyBody
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var (
			maxErr    *http.MaxBytesError
			domainErr *domain.Error
		)
		switch {
		case errors.As(err, &domainErr):
			return err
		case errors.Is(err, io.EOF):
			return errEmptyBody
		case errors.As(err, &maxErr):
			return errBodyTooBig
		default:
			return domain.WrapError(err, domain.EINVALID, op, errMalformed.Message)
		}
	}
	if dec.More() {
		return errTrailingRaw
	}
	return nil
}

// validateStruct runs struct-tag validation and converts failures into a
// domain.ValidationError keyed by JSON path.
func validateStruct(v *validator.Validate, op string, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "validation failed")
	}

	var out error
	for _, fe := range verrs {
		out = domain.AddFieldError(out, fieldPath(fe), fieldMessage(fe))
	}
	if ve, ok := out.(*domain.ValidationError); ok {
		ve.Op = op
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

// mergeFieldErrors folds src's field errors into dst.
func mergeFieldErrors(dst, src error, op string) error {
	for field, msg := range domain.GetValidationFields(src) {
		dst = domain.AddFieldError(dst, field, msg)
	}
	if ve, ok := dst.(*domain.ValidationError); ok {
		ve.Op = op
	}
	return dst
}
