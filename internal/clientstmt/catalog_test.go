package clientstmt

import (
	"testing"

	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog_Invalid(t *testing.T) {
	t.Parallel()
	commit := statementDef{typ: StatementCommit, pattern: `(?is)^commit$`, examples: []string{"commit"}}

	tests := []struct {
		desc       string
		defs       []statementDef
		wantReason string
	}{
		{
			desc:       "duplicate",
			defs:       []statementDef{commit, commit},
			wantReason: "duplicate statement name",
		},
		{
			desc:       "invalid pattern",
			defs:       []statementDef{{typ: StatementCommit, pattern: `(?is)^commit(`, examples: []string{"commit"}}},
			wantReason: "invalid pattern",
		},
		{
			desc:       "no examples",
			defs:       []statementDef{{typ: StatementCommit, pattern: `(?is)^commit$`}},
			wantReason: "no examples",
		},
		{
			desc:       "no handler",
			defs:       []statementDef{{typ: StatementType(999), pattern: `(?is)^noop$`, examples: []string{"noop"}}},
			wantReason: "no handler",
		},
		{
			desc:       "parameter without group",
			defs:       []statementDef{{typ: StatementSetAutocommit, pattern: `(?is)^set\s+autocommit\s*=\s*.+$`, examples: []string{"set autocommit = true"}, param: boolParam}},
			wantReason: "exactly when the statement has a parameter",
		},
		{
			desc:       "group without parameter",
			defs:       []statementDef{{typ: StatementCommit, pattern: `(?is)^commit(?P<value>.*)$`, examples: []string{"commit"}}},
			wantReason: "exactly when the statement has a parameter",
		},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			_, err := newCatalog(databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, tt.defs)

			var catalogErr *CatalogError
			require.ErrorAs(t, err, &catalogErr)
			assert.Contains(t, catalogErr.Reason, tt.wantReason)
			assert.Equal(t, databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, catalogErr.Dialect)
		})
	}
}

func TestNewParser_ExampleMustRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		desc       string
		defs       []statementDef
		wantReason string
	}{
		{
			desc:       "example does not match",
			defs:       []statementDef{{typ: StatementCommit, pattern: `(?is)^commit$`, examples: []string{"commit work"}}},
			wantReason: `example "commit work" is not recognized`,
		},
		{
			desc: "example shadowed by earlier statement",
			defs: []statementDef{
				{typ: StatementCommit, pattern: `(?is)^commit.*$`, examples: []string{"commit"}},
				{typ: StatementRollback, pattern: `(?is)^commit\s+rollback$`, examples: []string{"commit rollback"}},
			},
			wantReason: "is recognized as COMMIT",
		},
		{
			desc:       "example does not decode",
			defs:       []statementDef{{typ: StatementSetAutocommit, pattern: `(?is)^set\s+autocommit\s*=\s*(?P<value>.+)$`, examples: []string{"set autocommit = 'on'"}, param: boolParam}},
			wantReason: `example "set autocommit = 'on'"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()
			statements, err := newCatalog(databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, tt.defs)
			require.NoError(t, err)

			_, err = newParserFromStatements(databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, statements)
			var catalogErr *CatalogError
			require.ErrorAs(t, err, &catalogErr)
			assert.Contains(t, catalogErr.Reason, tt.wantReason)
		})
	}
}

func TestStatementDefs_Documented(t *testing.T) {
	t.Parallel()
	for _, dialect := range dialects {
		for _, stmt := range MustForDialect(dialect).Statements() {
			assert.NotEmpty(t, stmt.Usage, stmt.Name)
			assert.NotEmpty(t, stmt.Syntax, stmt.Name)
			if stmt.Param != nil {
				assert.NotZero(t, stmt.Param.Kind, stmt.Name)
				assert.Equal(t, stmt.Param.Kind == ParamEnum, stmt.Param.Enum != "", stmt.Name)
			}
		}
	}
}

func TestStatementDefs_PostgreSQLSpannerPrefix(t *testing.T) {
	t.Parallel()
	p := MustForDialect(databasepb.DatabaseDialect_POSTGRESQL)
	for _, v := range variables {
		_, err := p.Parse("show spanner." + v.name)
		if v.spannerScoped {
			assert.NoError(t, err, v.name)
		} else {
			assert.Error(t, err, v.name)
		}
	}
}
