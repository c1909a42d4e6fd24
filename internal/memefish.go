package internal

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/cloudspannerecosystem/memefish"
	"github.com/cloudspannerecosystem/memefish/token"
	"github.com/samber/lo"
)

// RawStatement is one statement of a multi-statement input.
// Statement keeps the comments of the original text.
type RawStatement struct {
	Pos, End   token.Pos
	Statement  string
	Terminator string
}

// ErrLexerStatus reports an input that ends inside a multi-line construct.
// WaitingString is the token which would close it.
type ErrLexerStatus struct {
	WaitingString string
}

func (e *ErrLexerStatus) Error() string {
	return fmt.Sprintf("lexer error with waiting: %v", e.WaitingString)
}

// lexerSeq transfer memefish.Lexer to iter.Seq2 with error.
// If it reaches to EOF, it yields the EOF token and stops without error.
func lexerSeq(lexer *memefish.Lexer) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		for {
			if err := lexer.NextToken(); err != nil {
				_ = yield(lexer.Token, err)
				return
			}

			if !yield(lexer.Token, nil) || lexer.Token.Kind == token.TokenEOF {
				return
			}
		}
	}
}

// NewLexerSeq tokenizes s with the GoogleSQL lexer.
func NewLexerSeq(filepath, s string) iter.Seq2[token.Token, error] {
	return lexerSeq(newLexer(filepath, s))
}

func newLexer(filepath string, s string) *memefish.Lexer {
	return &memefish.Lexer{
		File: &token.File{
			FilePath: filepath,
			Buffer:   s,
		},
	}
}

// SeparateInput splits s into statements terminated by semicolons.
// The last statement may have no terminator.
// If the input ends inside a comment or a triple-quoted literal, the statements read so far are returned with *ErrLexerStatus.
// filepath can be empty, it is only used in error message.
func SeparateInput(filepath, s string) ([]RawStatement, error) {
	lexer := newLexer(filepath, s)

	var results []RawStatement
	pos := token.InvalidPos
	for tok, err := range lexerSeq(lexer) {
		if err != nil {
			if merr, ok := lo.ErrorsAs[*memefish.Error](err); ok {
				start := lo.Ternary(pos.Invalid(), tok.Pos, pos)
				results = append(results, RawStatement{Pos: start, End: merr.Position.End, Statement: s[start:merr.Position.End]})
				return results, toErrLexerStatus(merr, s[tok.Pos:])
			}
			return results, err
		}

		// the statement starts at its first comment or its first token.
		if pos.Invalid() {
			first, ok := lo.First(tok.Comments)
			pos = lo.Ternary(ok, first.Pos, tok.Pos)
		}

		switch tok.Kind {
		case token.TokenEOF:
			if pos != tok.Pos && strings.TrimSpace(s[pos:tok.Pos]) != "" {
				results = append(results, RawStatement{Pos: pos, End: tok.Pos, Statement: s[pos:tok.Pos]})
			}
			return results, nil
		case ";":
			results = append(results, RawStatement{Pos: pos, End: tok.End, Statement: s[pos:tok.Pos], Terminator: ";"})
			pos = token.InvalidPos
		}
	}
	return results, nil
}

const errMessageUnclosedTripleQuotedStringLiteral = `unclosed triple-quoted string literal`
const errMessageUnclosedComment = `unclosed comment`

// NOTE: memefish.Error.Message can be changed.
func toErrLexerStatus(err *memefish.Error, head string) error {
	switch {
	case err.Message == errMessageUnclosedTripleQuotedStringLiteral && strings.HasPrefix(head, `"""`):
		return &ErrLexerStatus{WaitingString: `"""`}
	case err.Message == errMessageUnclosedTripleQuotedStringLiteral:
		return &ErrLexerStatus{WaitingString: `'''`}
	case err.Message == errMessageUnclosedComment:
		return &ErrLexerStatus{WaitingString: `*/`}
	default:
		return err
	}
}

var errEmptyStatement = errors.New("empty statement")

// NormalizeStatement removes comments and collapses the space between tokens.
// Tokens which were separated by whitespace or comments are joined by a single space,
// adjacent tokens stay adjacent and the raw text of each token, including quoted literals, is kept as is.
// filepath can be empty, it is only used in error message.
func NormalizeStatement(filepath, s string) (string, error) {
	var b strings.Builder
	prevEnd := token.InvalidPos
	for tok, err := range lexerSeq(newLexer(filepath, s)) {
		if err != nil {
			return "", err
		}
		if tok.Kind == token.TokenEOF {
			break
		}

		if !prevEnd.Invalid() && tok.Pos > prevEnd {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Raw)
		prevEnd = tok.End
	}

	if b.Len() == 0 {
		return "", errEmptyStatement
	}
	return b.String(), nil
}

// IsEmptyStatement reports whether err was returned by NormalizeStatement for input without any token.
func IsEmptyStatement(err error) bool {
	return errors.Is(err, errEmptyStatement)
}

// FirstNonHintToken returns the first token of s after a leading statement hint like @{OPTIMIZER_VERSION=7}.
// filepath can be empty, it is only used in error message.
func FirstNonHintToken(filepath, s string) (token.Token, error) {
	var inHint bool
	for tok, err := range lexerSeq(newLexer(filepath, s)) {
		switch {
		case err != nil:
			return tok, err
		case tok.Kind == token.TokenEOF:
			return tok, errEmptyStatement
		case tok.Kind == "@":
			inHint = true
		case inHint:
			inHint = tok.Kind != "}"
		default:
			return tok, nil
		}
	}
	return token.Token{}, errEmptyStatement
}
