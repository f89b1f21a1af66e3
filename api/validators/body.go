// Package validators decodes and checks request input, turning every failure
// into a CodeValidation error the response writer can render.
package validators

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return v
}()

// DecodeJSONBody decodes exactly one JSON value into dest, rejecting unknown
// fields and trailing data, then runs the validate struct tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return pkgerrors.New(pkgerrors.CodeValidation, "request body must contain a single JSON object")
	}
	return Struct(dest)
}

// DecodeOptionalJSONBody is DecodeJSONBody for endpoints whose body may be
// omitted. An empty body leaves dest untouched, including chunked requests that
// report no Content-Length.
func DecodeOptionalJSONBody(r *http.Request, dest any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	br := bufio.NewReader(r.Body)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{br, r.Body}
	return DecodeJSONBody(r, dest)
}

// Struct runs the validate tags on v. Details map json field names to messages.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fieldPath(fe)] = describe(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
		msg       string
	)
	switch {
	case errors.Is(err, io.EOF):
		msg = "request body is empty"
	case errors.As(err, &maxErr):
		msg = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		msg = "request body is not valid JSON"
	case errors.As(err, &typeErr):
		msg = fmt.Sprintf("field %q must be %s", typeErr.Field, typeErr.Type)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		msg = "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	default:
		msg = "invalid request body"
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msg).WithDetails(map[string]any{"error": msg})
}

// fieldPath drops the root struct name from the namespace: "User.address.zip"
// becomes "address.zip".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid", "uuid4":
		return "must be a valid id"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}
