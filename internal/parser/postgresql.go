package parser

import (
	"fmt"
	"strings"
)

// PostgreSQLStringParser parses a standard conforming PostgreSQL string literal.
var PostgreSQLStringParser = &BaseParser[string]{
	ParseFunc: unquotePostgreSQLString,
}

func unquotePostgreSQLString(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 || trimmed[0] != '\'' || trimmed[len(trimmed)-1] != '\'' {
		return "", fmt.Errorf("expected single-quoted string literal, got %q", s)
	}

	body := trimmed[1 : len(trimmed)-1]
	if strings.Contains(strings.ReplaceAll(body, "''", ""), "'") {
		return "", fmt.Errorf("unescaped quote in string literal %q", s)
	}
	return strings.ReplaceAll(body, "''", "'"), nil
}

// PostgreSQLNameParser parses a name which may be written as a string literal or a bare word.
var PostgreSQLNameParser = &BaseParser[string]{
	ParseFunc: func(s string) (string, error) {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "'") {
			return unquotePostgreSQLString(trimmed)
		}
		if trimmed == "" {
			return "", fmt.Errorf("empty value")
		}
		return trimmed, nil
	},
}

var postgreSQLBools = NewEnumParser(map[string]bool{
	"true": true, "on": true, "yes": true, "t": true, "1": true,
	"false": false, "off": false, "no": false, "f": false, "0": false,
})

// PostgreSQLBoolParser accepts the boolean spellings of PostgreSQL SET, quoted or not.
var PostgreSQLBoolParser = WithTransform(PostgreSQLNameParser, func(s string) (bool, error) {
	b, err := postgreSQLBools.ParseAndValidate(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value %q", s)
	}
	return b, nil
})

// NewPostgreSQLEnumParser parses enum member names written as string literals or bare words.
func NewPostgreSQLEnumParser[T comparable](enum *EnumParser[T]) Parser[T] {
	return WithTransform[string, T](PostgreSQLNameParser, enum.ParseAndValidate)
}
