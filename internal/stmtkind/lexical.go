package stmtkind

import (
	"fmt"

	"github.com/cloudspannerecosystem/memefish/token"

	"github.com/apstndb/spanner-clientstmt/internal"
)

var kindFirstTokensMap = map[StatementKind][]string{
	// https://cloud.google.com/spanner/docs/reference/standard-sql/data-definition-language
	StatementKindDDL: {"CREATE", "ALTER", "DROP", "RENAME", "GRANT", "REVOKE", "ANALYZE"},
	StatementKindDML: {"INSERT", "DELETE", "UPDATE"},
	// "(" and FROM start a parenthesized query and a pipe syntax query.
	StatementKindQuery: {"SELECT", "WITH", "(", "FROM", "GRAPH"},
}

// isKeywordLikeFuzzy is true when tok.IsKeywordLike(keywordLike) or tok.Kind == keywordLike
func isKeywordLikeFuzzy(tok token.Token, keywordLike string) bool {
	if tok.Kind == token.TokenIdent {
		return tok.IsKeywordLike(keywordLike)
	}
	return tok.Kind == token.TokenKind(keywordLike)
}

func oneOfKeywordLikeFuzzy(tok token.Token, keywordLikes ...string) bool {
	for _, k := range keywordLikes {
		if isKeywordLikeFuzzy(tok, k) {
			return true
		}
	}
	return false
}

// DetectLexical classifies s by its first keyword.
func DetectLexical(s string) (StatementKind, error) {
	tok, err := internal.FirstNonHintToken("", s)
	if err != nil {
		return StatementKindInvalid, err
	}

	for kind, tokens := range kindFirstTokensMap {
		if oneOfKeywordLikeFuzzy(tok, tokens...) {
			return kind, nil
		}
	}

	return StatementKindInvalid, fmt.Errorf("unknown statement with first token: %v", tok.Raw)
}
