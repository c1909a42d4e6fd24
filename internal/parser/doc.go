// Package parser decodes the parameter literal of a client-side statement into a typed value.
//
// The text handed to a parser is the literal exactly as it was matched by the
// statement pattern, e.g. 'exact_staleness 10s' including its quotes.
// Parsers are composed from small pieces:
//
//   - Parser[T] and BaseParser[T] turn a literal into T and validate it.
//   - DialectParser[T] holds one grammar per SQL dialect, as GoogleSQL and
//     PostgreSQL quote and spell literals differently.
//   - NullableParser[T] maps a clearing keyword such as NULL to a nil pointer.
//   - WithTransform chains a parser with a conversion.
//
// # Literal grammars
//
// GoogleSQL literals are decoded with the memefish lexer and parser, so string
// escapes follow GoogleSQL. PostgreSQL string literals are standard conforming:
// a quote inside the literal is written twice.
//
// Durations are written as an integer and one of the units s, ms, us and ns
// (e.g. '100ms'). Timestamp bounds are one of
//
//	STRONG
//	READ_TIMESTAMP <RFC3339 timestamp>
//	MIN_READ_TIMESTAMP <RFC3339 timestamp>
//	EXACT_STALENESS <duration>
//	MAX_STALENESS <duration>
package parser
