package parser

import (
	"fmt"

	"github.com/cloudspannerecosystem/memefish"
	"github.com/cloudspannerecosystem/memefish/ast"

	"github.com/apstndb/spanner-clientstmt/internal"
)

// MemefishExprParser parses a literal as a GoogleSQL expression and extracts a value from it.
type MemefishExprParser[T any] struct {
	BaseParser[T]
	extractFunc func(ast.Expr) (T, error)
}

// NewMemefishLiteralParser creates a parser that uses memefish to parse
// GoogleSQL-compatible literals and converts them to Go types.
func NewMemefishLiteralParser[T any](extractFunc func(ast.Expr) (T, error)) *MemefishExprParser[T] {
	parser := &MemefishExprParser[T]{
		extractFunc: extractFunc,
	}

	parser.BaseParser = BaseParser[T]{
		ParseFunc: parser.parseWithMemefish,
	}

	return parser
}

// parseExpr parses value as a GoogleSQL expression.
// memefish.ParseExpr panics when the first token cannot be lexed, so the whole value is lexed first.
func parseExpr(value string) (ast.Expr, error) {
	for _, err := range internal.NewLexerSeq("", value) {
		if err != nil {
			return nil, err
		}
	}
	return memefish.ParseExpr("", value)
}

func (p *MemefishExprParser[T]) parseWithMemefish(value string) (T, error) {
	expr, err := parseExpr(value)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("invalid GoogleSQL expression: %w", err)
	}

	return p.extractFunc(expr)
}

// GoogleSQLStringParser parses GoogleSQL string literals with their escapes.
var GoogleSQLStringParser = NewMemefishLiteralParser(func(expr ast.Expr) (string, error) {
	lit, ok := expr.(*ast.StringLiteral)
	if !ok {
		return "", fmt.Errorf("expected string literal, got %T", expr)
	}
	return lit.Value, nil
})

// GoogleSQLBoolParser parses GoogleSQL TRUE and FALSE.
var GoogleSQLBoolParser = NewMemefishLiteralParser(func(expr ast.Expr) (bool, error) {
	lit, ok := expr.(*ast.BoolLiteral)
	if !ok {
		return false, fmt.Errorf("expected boolean literal, got %T", expr)
	}
	return lit.Value, nil
})

// GoogleSQLNameParser parses a name which may be written as a string literal or a bare identifier.
// NULL is returned as the name "NULL".
var GoogleSQLNameParser = NewMemefishLiteralParser(func(expr ast.Expr) (string, error) {
	switch lit := expr.(type) {
	case *ast.StringLiteral:
		return lit.Value, nil
	case *ast.Ident:
		return lit.Name, nil
	case *ast.NullLiteral:
		return "NULL", nil
	default:
		return "", fmt.Errorf("expected string literal or identifier, got %T", expr)
	}
})

// IsGoogleSQLNull reports whether s is the GoogleSQL NULL literal.
func IsGoogleSQLNull(s string) bool {
	expr, err := parseExpr(s)
	if err != nil {
		return false
	}
	_, ok := expr.(*ast.NullLiteral)
	return ok
}

// NewGoogleSQLEnumParser parses enum member names written as string literals or identifiers.
func NewGoogleSQLEnumParser[T comparable](enum *EnumParser[T]) Parser[T] {
	return WithTransform(GoogleSQLNameParser, enum.ParseAndValidate)
}
