package parser

import (
	"strings"
)

// NullableParser wraps a parser so that a clearing keyword parses to nil.
type NullableParser[T any] struct {
	inner  Parser[T]
	isNull func(string) bool
}

// NewNullableParser creates a parser which returns nil when isNull reports true for the literal
// and otherwise delegates to inner.
func NewNullableParser[T any](inner Parser[T], isNull func(string) bool) *NullableParser[T] {
	return &NullableParser[T]{
		inner:  inner,
		isNull: isNull,
	}
}

// Keywords returns a matcher for unquoted keywords, ignoring case and surrounding whitespace.
func Keywords(keywords ...string) func(string) bool {
	return func(s string) bool {
		trimmed := strings.TrimSpace(s)
		for _, k := range keywords {
			if strings.EqualFold(trimmed, k) {
				return true
			}
		}
		return false
	}
}

func (p *NullableParser[T]) Parse(s string) (*T, error) {
	if p.isNull(s) {
		return nil, nil
	}

	value, err := p.inner.Parse(s)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// Validate accepts nil and validates other values with the inner parser.
func (p *NullableParser[T]) Validate(value *T) error {
	if value == nil {
		return nil
	}
	return p.inner.Validate(*value)
}

func (p *NullableParser[T]) ParseAndValidate(s string) (*T, error) {
	value, err := p.Parse(s)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}
