package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldType is the primitive type a body field must decode to.
type FieldType int

const (
	Text FieldType = iota
	Integer
)

func (t FieldType) String() string {
	if t == Integer {
		return "number"
	}
	return "string"
}

// Field declares the rules for one body field.
type Field struct {
	Name      string
	Type      FieldType
	Required  bool
	Email     bool
	MinLength int
	Lowercase bool
}

// Schema is the rule set for one submission kind.
type Schema struct {
	Fields []Field
}

// Values holds a validated body: trimmed strings, lowercased emails and int64 integers.
type Values map[string]any

// String returns the text value of name, or "" when absent.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Int returns the integer value of name, or 0 when absent.
func (v Values) Int(name string) int64 {
	n, _ := v[name].(int64)
	return n
}

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Report lists every failing field of a rejected body.
type Report struct {
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

func (r *Report) Error() string {
	return r.Message
}

func (r *Report) add(field, rule, message string) {
	r.Details = append(r.Details, FieldError{Field: field, Rule: rule, Message: message})
}

var validate = validator.New()

// Validate checks body against schema. It has no side effects and returns either
// the normalized values or a report describing every failing field.
// Fields not declared by the schema are dropped.
func Validate(schema Schema, body map[string]any) (Values, *Report) {
	values := Values{}
	report := &Report{}

	for _, f := range schema.Fields {
		raw, present := body[f.Name]
		if !present || raw == nil {
			if f.Required {
				report.add(f.Name, "required", fmt.Sprintf("%q is required", f.Name))
			}
			continue
		}

		switch f.Type {
		case Integer:
			n, err := toInteger(raw)
			if errors.Is(err, errUnsafeInteger) {
				report.add(f.Name, "unsafe", fmt.Sprintf("%q must be a safe number", f.Name))
				continue
			}
			if err != nil {
				report.add(f.Name, "type", fmt.Sprintf("%q must be a number", f.Name))
				continue
			}
			values[f.Name] = n

		default:
			s, ok := raw.(string)
			if !ok {
				report.add(f.Name, "type", fmt.Sprintf("%q must be a string", f.Name))
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				if f.Required {
					report.add(f.Name, "required", fmt.Sprintf("%q is not allowed to be empty", f.Name))
				}
				continue
			}
			if f.Lowercase {
				s = strings.ToLower(s)
			}
			if msg, rule, ok := checkText(f, s); !ok {
				report.add(f.Name, rule, msg)
				continue
			}
			values[f.Name] = s
		}
	}

	if len(report.Details) > 0 {
		report.Message = joinMessages(report.Details)
		return nil, report
	}
	return values, nil
}

// checkText applies the format rules of f through the validator engine.
func checkText(f Field, s string) (message, rule string, ok bool) {
	var tags []string
	if f.Email {
		tags = append(tags, "email")
	}
	if f.MinLength > 0 {
		tags = append(tags, "min="+strconv.Itoa(f.MinLength))
	}
	if len(tags) == 0 {
		return "", "", true
	}

	err := validate.Var(s, strings.Join(tags, ","))
	if err == nil {
		return "", "", true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Sprintf("%q is invalid", f.Name), "invalid", false
	}
	switch fe := verrs[0]; fe.Tag() {
	case "email":
		return fmt.Sprintf("%q must be a valid email", f.Name), "email", false
	case "min":
		return fmt.Sprintf("%q length must be at least %s characters long", f.Name, fe.Param()), "min", false
	default:
		return fmt.Sprintf("%q failed %s", f.Name, fe.Tag()), fe.Tag(), false
	}
}

// maxSafeInteger is the largest integer a JSON number (an IEEE 754 double)
// holds exactly.
const maxSafeInteger = 1<<53 - 1

var errUnsafeInteger = errors.New("integer outside the safe range")

// toInteger accepts JSON numbers without a fractional part and strings of digits,
// within ±maxSafeInteger.
func toInteger(raw any) (int64, error) {
	var n int64
	switch v := raw.(type) {
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		if math.Abs(v) > maxSafeInteger {
			return 0, errUnsafeInteger
		}
		return int64(v), nil
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, errUnsafeInteger
			}
			return 0, err
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) {
				return 0, errUnsafeInteger
			}
			return 0, err
		}
		n = i
	case int:
		n = int64(v)
	case int64:
		n = v
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
	if n > maxSafeInteger || n < -maxSafeInteger {
		return 0, errUnsafeInteger
	}
	return n, nil
}

func joinMessages(details []FieldError) string {
	msgs := make([]string, len(details))
	for i, d := range details {
		msgs[i] = d.Message
	}
	return strings.Join(msgs, ". ")
}
