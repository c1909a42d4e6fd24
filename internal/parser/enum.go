package parser

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// EnumValueError is returned when a name is not one of the declared members of an enum.
type EnumValueError struct {
	Value string
	Valid []string
}

func (e *EnumValueError) Error() string {
	return fmt.Sprintf("invalid value %q, must be one of: %s", e.Value, strings.Join(e.Valid, ", "))
}

// EnumParser parses member names into enum values, ignoring case.
type EnumParser[T comparable] struct {
	BaseParser[T]
	values map[string]T
	names  []string
}

// NewEnumParser creates a new enum parser with the given valid values.
// The names in error messages are sorted.
func NewEnumParser[T comparable](values map[string]T) *EnumParser[T] {
	return newEnumParser(values, slices.Sorted(maps.Keys(values)))
}

// NewEnumParserFromValues creates an enum parser keyed by String() of each value.
// The names in error messages keep the order of values.
func NewEnumParserFromValues[T interface {
	comparable
	fmt.Stringer
}](values []T) *EnumParser[T] {
	m := make(map[string]T, len(values))
	names := make([]string, 0, len(values))
	for _, v := range values {
		m[v.String()] = v
		names = append(names, v.String())
	}
	return newEnumParser(m, names)
}

func newEnumParser[T comparable](values map[string]T, names []string) *EnumParser[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[strings.ToUpper(k)] = v
	}

	p := &EnumParser[T]{
		values: normalized,
		names:  names,
	}
	p.BaseParser = BaseParser[T]{
		ParseFunc: p.parseEnum,
	}
	return p
}

// Names returns the declared member names.
func (p *EnumParser[T]) Names() []string {
	return slices.Clone(p.names)
}

func (p *EnumParser[T]) parseEnum(value string) (T, error) {
	if result, ok := p.values[strings.ToUpper(strings.TrimSpace(value))]; ok {
		return result, nil
	}

	var zero T
	return zero, &EnumValueError{Value: value, Valid: p.Names()}
}
