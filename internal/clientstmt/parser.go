package clientstmt

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/samber/lo"

	"github.com/apstndb/spanner-clientstmt/internal"
)

// Parser matches text against the statement catalog of one dialect.
// It is immutable and safe for concurrent use.
type Parser struct {
	dialect    databasepb.DatabaseDialect
	statements []*ClientSideStatement
	// statements grouped by the lower-case first keyword of their examples, in catalog order
	groups map[string][]*ClientSideStatement
}

// ParsedStatement is the result of a successful Parse.
// A parameter literal which does not decode is kept and reported by Value and Execute.
type ParsedStatement struct {
	// Text is the statement as given to Parse.
	Text      string
	Statement *ClientSideStatement
	// Literal is the parameter literal as written, or "" for statements without parameter.
	Literal string

	value any
	err   error
}

// Type returns the type of the matched statement.
func (s *ParsedStatement) Type() StatementType {
	return s.Statement.Type
}

// Value returns the decoded parameter, nil for statements without parameter.
func (s *ParsedStatement) Value() (any, error) {
	return s.value, s.err
}

var parsers = map[databasepb.DatabaseDialect]func() (*Parser, error){
	databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL: sync.OnceValues(func() (*Parser, error) {
		return newParser(databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL)
	}),
	databasepb.DatabaseDialect_POSTGRESQL: sync.OnceValues(func() (*Parser, error) {
		return newParser(databasepb.DatabaseDialect_POSTGRESQL)
	}),
}

// ForDialect returns the shared parser of dialect. DATABASE_DIALECT_UNSPECIFIED selects GoogleSQL.
// It panics with *CatalogError if the catalog of the dialect is broken.
func ForDialect(dialect databasepb.DatabaseDialect) (*Parser, error) {
	if dialect == databasepb.DatabaseDialect_DATABASE_DIALECT_UNSPECIFIED {
		dialect = databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL
	}

	get, ok := parsers[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported dialect: %v", dialect)
	}

	p, err := get()
	if err != nil {
		var catalogErr *CatalogError
		if errors.As(err, &catalogErr) {
			panic(catalogErr)
		}
		return nil, err
	}
	return p, nil
}

// MustForDialect is like ForDialect but panics on an unsupported dialect.
func MustForDialect(dialect databasepb.DatabaseDialect) *Parser {
	p, err := ForDialect(dialect)
	if err != nil {
		panic(err)
	}
	return p
}

func newParser(dialect databasepb.DatabaseDialect) (*Parser, error) {
	statements, err := newCatalog(dialect, statementDefs(dialect))
	if err != nil {
		return nil, err
	}
	return newParserFromStatements(dialect, statements)
}

func newParserFromStatements(dialect databasepb.DatabaseDialect, statements []*ClientSideStatement) (*Parser, error) {
	p := &Parser{
		dialect:    dialect,
		statements: statements,
		groups:     make(map[string][]*ClientSideStatement),
	}

	for _, stmt := range statements {
		keywords := lo.Uniq(lo.Map(stmt.Examples, func(example string, _ int) string {
			return firstKeyword(normalizeStatement(example))
		}))
		for _, keyword := range keywords {
			p.groups[keyword] = append(p.groups[keyword], stmt)
		}
	}

	// every example must parse back to its own statement
	for _, stmt := range statements {
		for _, example := range stmt.Examples {
			got, literal, ok := p.match(example)
			if !ok {
				return nil, &CatalogError{Dialect: dialect, Statement: stmt.Name, Reason: fmt.Sprintf("example %q is not recognized", example)}
			}
			if got != stmt {
				return nil, &CatalogError{Dialect: dialect, Statement: stmt.Name, Reason: fmt.Sprintf("example %q is recognized as %s", example, got.Name)}
			}
			if _, err := got.decodeParam(literal); err != nil {
				return nil, &CatalogError{Dialect: dialect, Statement: stmt.Name, Reason: fmt.Sprintf("example %q: %v", example, err)}
			}
		}
	}
	return p, nil
}

// Dialect returns the dialect of p.
func (p *Parser) Dialect() databasepb.DatabaseDialect {
	return p.dialect
}

// Statements returns the catalog of p in matching order.
func (p *Parser) Statements() []*ClientSideStatement {
	return p.statements
}

// Parse recognizes text as a client-side statement.
// Keywords are case-insensitive, comments and a trailing semicolon are ignored.
// It returns *UnrecognizedStatementError if no statement matches.
func (p *Parser) Parse(text string) (*ParsedStatement, error) {
	stmt, literal, ok := p.match(text)
	if !ok {
		return nil, &UnrecognizedStatementError{Text: text}
	}

	value, err := stmt.decodeParam(literal)
	slog.Debug("parsed client-side statement", "dialect", p.dialect, "type", stmt.Type, "literal", literal)
	return &ParsedStatement{
		Text:      text,
		Statement: stmt,
		Literal:   literal,
		value:     value,
		err:       err,
	}, nil
}

// IsClientSideStatement reports whether text matches a statement of p.
// The parameter literal is not decoded.
func (p *Parser) IsClientSideStatement(text string) bool {
	_, _, ok := p.match(text)
	return ok
}

func (p *Parser) match(text string) (stmt *ClientSideStatement, literal string, ok bool) {
	normalized := normalizeStatement(text)
	for _, stmt := range p.groups[firstKeyword(normalized)] {
		if literal, ok := stmt.match(normalized); ok {
			return stmt, literal, true
		}
	}
	return nil, "", false
}

// normalizeStatement strips comments and a trailing semicolon, and collapses whitespace between tokens.
// Text which the GoogleSQL lexer cannot tokenize is only trimmed.
func normalizeStatement(text string) string {
	normalized, err := internal.NormalizeStatement("", text)
	switch {
	case internal.IsEmptyStatement(err):
		return ""
	case err != nil:
		normalized = strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.TrimSuffix(normalized, ";"))
}

// firstKeyword returns the leading word of s in lower case.
func firstKeyword(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if end < 0 {
		end = len(s)
	}
	return strings.ToLower(s[:end])
}
