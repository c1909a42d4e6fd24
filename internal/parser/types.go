package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// IntParser parses decimal integers with an optional lower bound.
type IntParser struct {
	BaseParser[int64]
	min *int64
}

// NewIntParser creates a new integer parser.
func NewIntParser() *IntParser {
	return &IntParser{
		BaseParser: BaseParser[int64]{
			ParseFunc: func(value string) (int64, error) {
				return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			},
		},
	}
}

// WithMin adds minimum value validation.
func (p *IntParser) WithMin(min int64) *IntParser {
	p.min = &min
	p.ValidateFunc = p.validateRange
	return p
}

func (p *IntParser) validateRange(value int64) error {
	if p.min != nil && value < *p.min {
		return fmt.Errorf("value %d is less than minimum %d", value, *p.min)
	}
	return nil
}
