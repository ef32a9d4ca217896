package lenta

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Entity names reported in ParseError.
const (
	EntityCity    = "City"
	EntityStore   = "Store"
	EntityCatalog = "Catalog"
	EntitySku     = "Sku"
)

// ParseError reports a response that does not match the expected shape.
type ParseError struct {
	// Entity is the record being decoded (e.g., "Sku")
	Entity string

	// Field is the JSON path of the offending field, empty for the document itself
	Field string

	// Reason describes the violation
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("parse %s: field %q: %s", e.Entity, e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeOne unmarshals and validates a single record.
func decodeOne[P any, R any](entity string, data json.RawMessage, convert func(*P) R) (R, error) {
	var zero R
	var payload P

	if err := json.Unmarshal(data, &payload); err != nil {
		return zero, jsonParseError(entity, "", err)
	}
	if err := validate.Struct(&payload); err != nil {
		return zero, validationParseError(entity, "", err)
	}

	return convert(&payload), nil
}

// decodeList unmarshals and validates a JSON array of records.
// A single invalid element fails the whole list.
func decodeList[P any, R any](entity string, data json.RawMessage, convert func(*P) R) ([]R, error) {
	var elements []json.RawMessage

	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, jsonParseError(entity, "", err)
	}

	records := make([]R, len(elements))
	for i, element := range elements {
		prefix := "[" + strconv.Itoa(i) + "]"

		var payload P
		if err := json.Unmarshal(element, &payload); err != nil {
			return nil, jsonParseError(entity, prefix, err)
		}
		if err := validate.Struct(&payload); err != nil {
			return nil, validationParseError(entity, prefix, err)
		}
		records[i] = convert(&payload)
	}

	return records, nil
}

func jsonParseError(entity, prefix string, err error) *ParseError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if prefix != "" {
			field = joinPath(prefix, field)
		}
		return &ParseError{
			Entity: entity,
			Field:  field,
			Reason: fmt.Sprintf("cannot use %s as %s", typeErr.Value, typeName(typeErr.Type)),
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ParseError{Entity: entity, Reason: "malformed JSON: " + syntaxErr.Error()}
	}

	return &ParseError{Entity: entity, Field: prefix, Reason: err.Error()}
}

func validationParseError(entity, prefix string, err error) *ParseError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ParseError{Entity: entity, Field: prefix, Reason: err.Error()}
	}

	e := validationErrors[0]
	return &ParseError{
		Entity: entity,
		Field:  joinPath(prefix, fieldPath(e.Namespace())),
		Reason: validationMessage(e),
	}
}

// fieldPath turns a validator namespace ("skuPayload.categories.group.code")
// into a JSON path ("categories.group.code").
// Embedded payloads contribute no path segment.
func fieldPath(namespace string) string {
	segments := strings.Split(namespace, ".")
	if len(segments) > 0 {
		segments = segments[1:]
	}

	path := segments[:0]
	for _, segment := range segments {
		if strings.HasSuffix(segment, "Payload") {
			continue
		}
		path = append(path, segment)
	}
	return strings.Join(path, ".")
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case strings.HasPrefix(field, "["):
		return prefix + field
	default:
		return prefix + "." + field
	}
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "required field is missing"
	case "oneof":
		return fmt.Sprintf("value %v is not one of: %s", derefValue(e.Value()), e.Param())
	case "url":
		return "invalid URL format"
	default:
		return "failed " + e.Tag() + " validation"
	}
}

func derefValue(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct:
		switch t {
		case timeType:
			return "timestamp"
		case decimalType:
			return "decimal"
		}
		return "object"
	case reflect.Map:
		return "object"
	case reflect.Pointer:
		return typeName(t.Elem())
	default:
		return t.Kind().String()
	}
}

var timeType = reflect.TypeOf(time.Time{})

// timestampLayouts are tried in order; the site sends local times without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// timestamp accepts RFC 3339 with or without a zone, or a bare date.
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: timeType}
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return &json.UnmarshalTypeError{Value: "string " + strconv.Quote(s), Type: timeType}
}

func (t *timestamp) value() time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// price accepts a JSON number or a numeric string.
type price struct {
	decimal.Decimal
}

func (p *price) UnmarshalJSON(data []byte) error {
	if err := p.Decimal.UnmarshalJSON(data); err != nil {
		return &json.UnmarshalTypeError{Value: describeJSON(data), Type: decimalType}
	}
	return nil
}

// describeJSON names a raw JSON value the way encoding/json does in type errors.
func describeJSON(data []byte) string {
	if len(data) == 0 {
		return "empty"
	}
	switch data[0] {
	case '"':
		return "string " + string(data)
	case 't', 'f':
		return "bool"
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return "number " + string(data)
	}
}
