package parser

import (
	"cloud.google.com/go/spanner"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
)

// DialectParser holds the grammar of a literal for each SQL dialect.
//
//	SET READONLY = TRUE           -- GoogleSQL
//	SET SPANNER.READONLY TO 'on'  -- PostgreSQL
type DialectParser[T any] struct {
	GoogleSQL  Parser[T]
	PostgreSQL Parser[T]
}

// NewDialectParser creates a parser that selects the grammar by dialect.
func NewDialectParser[T any](googleSQL, postgreSQL Parser[T]) *DialectParser[T] {
	return &DialectParser[T]{
		GoogleSQL:  googleSQL,
		PostgreSQL: postgreSQL,
	}
}

// For returns the parser for dialect. DATABASE_DIALECT_UNSPECIFIED selects GoogleSQL.
func (p *DialectParser[T]) For(dialect databasepb.DatabaseDialect) Parser[T] {
	if dialect == databasepb.DatabaseDialect_POSTGRESQL {
		return p.PostgreSQL
	}
	return p.GoogleSQL
}

// ParseAndValidate parses value with the grammar of dialect.
func (p *DialectParser[T]) ParseAndValidate(dialect databasepb.DatabaseDialect, value string) (T, error) {
	return p.For(dialect).ParseAndValidate(value)
}

var (
	BoolParser = NewDialectParser(
		Parser[bool](GoogleSQLBoolParser),
		PostgreSQLBoolParser,
	)

	StringParser = NewDialectParser(
		Parser[string](GoogleSQLStringParser),
		PostgreSQLStringParser,
	)

	StatementTimeoutParser = NewDialectParser(
		GoogleSQLStatementTimeoutParser,
		PostgreSQLStatementTimeoutParser,
	)

	TimestampBoundParser = NewDialectParser[spanner.TimestampBound](
		GoogleSQLTimestampBoundParser,
		PostgreSQLTimestampBoundParser,
	)
)

// NewDialectEnumParser creates a dialect parser for the members of enum,
// written as a string literal or a bare name.
func NewDialectEnumParser[T comparable](enum *EnumParser[T]) *DialectParser[T] {
	return NewDialectParser(
		NewGoogleSQLEnumParser(enum),
		NewPostgreSQLEnumParser(enum),
	)
}
