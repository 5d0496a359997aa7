package talent

import (
	"fmt"
	"math"
	"slices"

	"github.com/spf13/cast"
)

// FieldType is the kind of value a configuration field holds.
type FieldType string

const (
	TypeInt      FieldType = "int"
	TypeFloat    FieldType = "float"
	TypeBool     FieldType = "bool"
	TypeString   FieldType = "string"
	TypeChoice   FieldType = "choice"
	TypePassword FieldType = "password"
)

// Field describes one user configurable option.
type Field struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Default any       `json:"default"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
	Step    *float64  `json:"step,omitempty"`
	Choices []string  `json:"choices,omitempty"`
}

// Schema is the ordered list of a talent's options.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Int declares an integer field bounded by [lo, hi].
func Int(key, label string, def, lo, hi int) Field {
	return Field{Key: key, Label: label, Type: TypeInt, Default: def, Min: ptr(float64(lo)), Max: ptr(float64(hi))}
}

// Float declares a float field bounded by [lo, hi] moving in step increments.
func Float(key, label string, def, lo, hi, step float64) Field {
	return Field{Key: key, Label: label, Type: TypeFloat, Default: def, Min: ptr(lo), Max: ptr(hi), Step: ptr(step)}
}

// Bool declares a boolean field.
func Bool(key, label string, def bool) Field {
	return Field{Key: key, Label: label, Type: TypeBool, Default: def}
}

// String declares a free text field.
func String(key, label, def string) Field {
	return Field{Key: key, Label: label, Type: TypeString, Default: def}
}

// Password declares a secret text field.
func Password(key, label string) Field {
	return Field{Key: key, Label: label, Type: TypePassword, Default: ""}
}

// Choice declares a field restricted to choices.
func Choice(key, label, def string, choices ...string) Field {
	return Field{Key: key, Label: label, Type: TypeChoice, Default: def, Choices: choices}
}

func ptr(f float64) *float64 { return &f }

// Field returns the field for key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns a config holding every field's default.
func (s Schema) Defaults() Config {
	cfg := make(Config, len(s.Fields))
	for _, f := range s.Fields {
		cfg[f.Key] = f.Default
	}
	return cfg
}

// Resolve merges overrides on top of the defaults. Values are coerced to the
// field type, numbers are clamped to their bounds, and values that cannot be
// coerced or are not a valid choice fall back to the default. Keys without a
// schema entry are dropped.
func (s Schema) Resolve(overrides map[string]any) Config {
	cfg := s.Defaults()
	for _, f := range s.Fields {
		raw, ok := overrides[f.Key]
		if !ok || raw == nil {
			continue
		}
		if v, err := f.coerce(raw); err == nil {
			cfg[f.Key] = v
		}
	}
	return cfg
}

func (f Field) coerce(raw any) (any, error) {
	switch f.Type {
	case TypeInt:
		n, err := cast.ToIntE(raw)
		if err != nil {
			return nil, err
		}
		return int(f.clamp(float64(n))), nil
	case TypeFloat:
		n, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, err
		}
		return f.clamp(n), nil
	case TypeBool:
		return cast.ToBoolE(raw)
	case TypeChoice:
		v, err := cast.ToStringE(raw)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(f.Choices, v) {
			return nil, fmt.Errorf("%q is not one of %v", v, f.Choices)
		}
		return v, nil
	default:
		return cast.ToStringE(raw)
	}
}

func (f Field) clamp(v float64) float64 {
	if f.Min != nil {
		v = math.Max(v, *f.Min)
	}
	if f.Max != nil {
		v = math.Min(v, *f.Max)
	}
	return v
}

// Config is a resolved configuration mapping.
type Config map[string]any

// Int returns key as an int, or 0.
func (c Config) Int(key string) int {
	return cast.ToInt(c[key])
}

// Float returns key as a float64, or 0.
func (c Config) Float(key string) float64 {
	return cast.ToFloat64(c[key])
}

// Bool returns key as a bool, or false.
func (c Config) Bool(key string) bool {
	return cast.ToBool(c[key])
}

// String returns key as a string, or "".
func (c Config) String(key string) string {
	return cast.ToString(c[key])
}
