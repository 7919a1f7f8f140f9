package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamType identifies the representation carried by a Value.
type ParamType string

const (
	TypeInt           ParamType = "int"
	TypeFloat         ParamType = "float"
	TypeString        ParamType = "string"
	TypeVector3       ParamType = "vector3"
	TypeGameObject    ParamType = "gameobject"
	TypeInventoryItem ParamType = "item"
	TypeVariable      ParamType = "variable"
	TypeObject        ParamType = "object"
)

// refType reports whether t is one of the reference kinds, whose payload is
// a stable cross-session identifier string.
func refType(t ParamType) bool {
	switch t {
	case TypeGameObject, TypeInventoryItem, TypeVariable, TypeObject:
		return true
	}
	return false
}

// KnownType reports whether t is a member of the closed type set.
func KnownType(t ParamType) bool {
	switch t {
	case TypeInt, TypeFloat, TypeString, TypeVector3:
		return true
	}
	return refType(t)
}

// Vector3 is a three-component position or direction.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) String() string {
	return strings.Join([]string{
		strconv.FormatFloat(v.X, 'g', -1, 64),
		strconv.FormatFloat(v.Y, 'g', -1, 64),
		strconv.FormatFloat(v.Z, 'g', -1, 64),
	}, ",")
}

// IsZero reports whether all components are zero.
func (v Vector3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Value is a typed parameter value. Exactly one representation is active,
// selected by the type tag; the zero Value has no type and decodes nothing.
type Value struct {
	t ParamType
	i int64
	f float64
	s string
	v Vector3
}

// IntValue returns an int-typed Value.
func IntValue(i int64) Value { return Value{t: TypeInt, i: i} }

// FloatValue returns a float-typed Value.
func FloatValue(f float64) Value { return Value{t: TypeFloat, f: f} }

// StringValue returns a string-typed Value.
func StringValue(s string) Value { return Value{t: TypeString, s: s} }

// Vector3Value returns a vector-typed Value.
func Vector3Value(v Vector3) Value { return Value{t: TypeVector3, v: v} }

// RefValue returns a reference-typed Value holding a stable identifier.
// The type tag must be one of the reference kinds; anything else yields
// the zero Value.
func RefValue(t ParamType, id string) Value {
	if !refType(t) {
		return Value{}
	}
	return Value{t: t, s: id}
}

// Type returns the active type tag. The zero Value returns "".
func (v Value) Type() ParamType { return v.t }

// IsZero reports whether the Value carries no representation at all.
func (v Value) IsZero() bool { return v.t == "" }

// Int returns the integer representation, or 0 if the type differs.
func (v Value) Int() int64 {
	if v.t != TypeInt {
		return 0
	}
	return v.i
}

// Float returns the float representation. Int values are widened so that
// numeric parameters can be consumed uniformly.
func (v Value) Float() float64 {
	switch v.t {
	case TypeFloat:
		return v.f
	case TypeInt:
		return float64(v.i)
	}
	return 0
}

// Str returns the string representation, or "" if the type differs.
func (v Value) Str() string {
	if v.t != TypeString {
		return ""
	}
	return v.s
}

// Vec returns the vector representation, or the zero vector if the type differs.
func (v Value) Vec() Vector3 {
	if v.t != TypeVector3 {
		return Vector3{}
	}
	return v.v
}

// Ref returns the reference identifier, or "" for non-reference values.
func (v Value) Ref() string {
	if !refType(v.t) {
		return ""
	}
	return v.s
}

// Truthy reports whether the value is considered "set": non-zero numbers,
// non-empty strings and identifiers, non-zero vectors.
func (v Value) Truthy() bool {
	switch v.t {
	case TypeInt:
		return v.i != 0
	case TypeFloat:
		return v.f != 0
	case TypeString:
		return v.s != ""
	case TypeVector3:
		return !v.v.IsZero()
	}
	if refType(v.t) {
		return v.s != ""
	}
	return false
}

// Native returns the Go-native representation, suitable for expression
// environments: int64, float64, string, or a map for vectors.
func (v Value) Native() any {
	switch v.t {
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString:
		return v.s
	case TypeVector3:
		return map[string]any{"x": v.v.X, "y": v.v.Y, "z": v.v.Z}
	}
	if refType(v.t) {
		return v.s
	}
	return nil
}

// Encode renders the canonical string encoding used for save/restore:
// decimal text for numbers, a comma-joined triple for vectors, the raw
// string for strings, and the stable identifier for references.
func (v Value) Encode() string {
	switch v.t {
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case TypeString:
		return v.s
	case TypeVector3:
		return v.v.String()
	}
	if refType(v.t) {
		return v.s
	}
	return ""
}

// Equal compares type tag and active representation.
func (v Value) Equal(o Value) bool {
	if v.t != o.t {
		return false
	}
	switch v.t {
	case TypeInt:
		return v.i == o.i
	case TypeFloat:
		return v.f == o.f
	case TypeString:
		return v.s == o.s
	case TypeVector3:
		return v.v == o.v
	}
	return v.s == o.s
}

// ParseValue decodes the canonical encoding back into a typed Value.
// It is the inverse of Encode for every known type.
func ParseValue(t ParamType, s string) (Value, error) {
	switch t {
	case TypeInt:
		i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid int encoding %q: %w", s, err)
		}
		return IntValue(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid float encoding %q: %w", s, err)
		}
		return FloatValue(f), nil
	case TypeString:
		return StringValue(s), nil
	case TypeVector3:
		v, err := ParseVector3(s)
		if err != nil {
			return Value{}, err
		}
		return Vector3Value(v), nil
	}
	if refType(t) {
		return RefValue(t, strings.TrimSpace(s)), nil
	}
	return Value{}, fmt.Errorf("unknown parameter type %q", t)
}

// ParseVector3 decodes a comma-joined triple.
func ParseVector3(s string) (Vector3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Vector3{}, fmt.Errorf("invalid vector encoding %q: want 3 components, got %d", s, len(parts))
	}
	var out [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Vector3{}, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out[i] = f
	}
	return Vector3{X: out[0], Y: out[1], Z: out[2]}, nil
}
