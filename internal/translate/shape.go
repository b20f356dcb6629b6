// Package translate coerces a model's free-text output into a
// caller-declared JSON shape, with explicit success/failure instead of
// errors for shape mismatches.
//
// The shape is declarative data (a field list with types and constraints)
// interpreted by a small validator, so adding a field to a notebook output
// shape never means touching parser code.
package translate

import (
	"fmt"
	"strings"
)

// FieldType is the closed set of primitive types a shape field can have.
type FieldType string

const (
	// FieldText is a free-text string.
	FieldText FieldType = "text"
	// FieldEnum is a string restricted to the Field's Enum values.
	FieldEnum FieldType = "enum"
	// FieldTextList is a list of short strings.
	FieldTextList FieldType = "text-list"
)

// Field declares one field of the target shape.
type Field struct {
	Name     string
	Type     FieldType
	Required bool

	// Enum lists the accepted values for FieldEnum fields.
	Enum []string

	// MaxItems bounds FieldTextList length; 0 means unbounded.
	MaxItems int
	// MaxLen bounds each string's length in characters; 0 means unbounded.
	MaxLen int

	// Default is applied when an optional field is absent. Left nil, an
	// absent optional field stays absent from the validated output.
	Default any
}

// Shape is the declared target for one translation: an ordered field list.
// Order matters only for prompt rendering; validation is per-field.
type Shape struct {
	Fields []Field
}

// ValidationError reports why the model's output failed shape validation.
// It flows back to callers inside an Outcome, never as a returned error:
// a model that ignores the shape is an expected, recoverable condition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// Instructions renders the shape as prompt text instructing the model to
// answer with matching JSON. This is what makes the "schema" reach the
// model at all; the validator below is the enforcement half.
func (s Shape) Instructions() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and no other text. The object has these fields:\n")
	for _, f := range s.Fields {
		b.WriteString("- \"")
		b.WriteString(f.Name)
		b.WriteString("\" (")
		if f.Required {
			b.WriteString("required")
		} else {
			b.WriteString("optional")
		}
		b.WriteString("): ")
		switch f.Type {
		case FieldEnum:
			quoted := make([]string, len(f.Enum))
			for i, v := range f.Enum {
				quoted[i] = fmt.Sprintf("%q", v)
			}
			b.WriteString("one of ")
			b.WriteString(strings.Join(quoted, ", "))
		case FieldTextList:
			b.WriteString("an array of strings")
			if f.MaxItems > 0 {
				fmt.Fprintf(&b, ", at most %d items", f.MaxItems)
			}
			if f.MaxLen > 0 {
				fmt.Fprintf(&b, ", each at most %d characters", f.MaxLen)
			}
		default:
			b.WriteString("a string")
			if f.MaxLen > 0 {
				fmt.Fprintf(&b, " of at most %d characters", f.MaxLen)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Validate checks a decoded JSON object against the shape and returns the
// cleaned payload: only declared fields survive (excess fields from the
// model are dropped), absent optional fields pick up their declared
// default, and an absent required field or any type/constraint violation
// is a *ValidationError.
func (s Shape) Validate(raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s.Fields))

	for _, f := range s.Fields {
		value, present := raw[f.Name]
		if !present || value == nil {
			if f.Required {
				return nil, &ValidationError{Field: f.Name, Reason: "required field is missing"}
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		checked, err := f.check(value)
		if err != nil {
			return nil, err
		}
		out[f.Name] = checked
	}

	return out, nil
}

func (f Field) check(value any) (any, error) {
	switch f.Type {
	case FieldText:
		text, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("expected a string, got %T", value)}
		}
		if f.MaxLen > 0 && len([]rune(text)) > f.MaxLen {
			return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("longer than %d characters", f.MaxLen)}
		}
		return text, nil

	case FieldEnum:
		text, ok := value.(string)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("expected a string, got %T", value)}
		}
		for _, allowed := range f.Enum {
			if text == allowed {
				return text, nil
			}
		}
		return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("%q is not one of %v", text, f.Enum)}

	case FieldTextList:
		items, ok := value.([]any)
		if !ok {
			return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("expected an array, got %T", value)}
		}
		if f.MaxItems > 0 && len(items) > f.MaxItems {
			return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("more than %d items", f.MaxItems)}
		}
		texts := make([]string, 0, len(items))
		for i, item := range items {
			text, ok := item.(string)
			if !ok {
				return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("item %d: expected a string, got %T", i, item)}
			}
			if f.MaxLen > 0 && len([]rune(text)) > f.MaxLen {
				return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("item %d longer than %d characters", i, f.MaxLen)}
			}
			texts = append(texts, text)
		}
		return texts, nil

	default:
		return nil, &ValidationError{Field: f.Name, Reason: fmt.Sprintf("unknown field type %q", f.Type)}
	}
}
