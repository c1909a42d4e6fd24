package internal_test

import (
	"testing"

	"github.com/apstndb/spanner-clientstmt/internal"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeStatement(t *testing.T) {
	for _, test := range []struct {
		desc    string
		input   string
		want    string
		wantErr bool
	}{
		{desc: "no comment", input: "show variable autocommit", want: "show variable autocommit"},
		{desc: "surrounding whitespace", input: "  \n\tbegin \n", want: "begin"},
		{desc: "inner whitespace collapsed", input: "show \t variable\n\nreadonly", want: "show variable readonly"},
		{desc: "adjacent tokens stay adjacent", input: "set autocommit=true", want: "set autocommit=true"},
		{desc: "line comment before EOF", input: "commit -- done", want: "commit"},
		{desc: "leading comment", input: "/* tx */ rollback", want: "rollback"},
		{desc: "inline multiline comment", input: "set readonly/*\n*/= false", want: "set readonly = false"},
		{desc: "spaces in string literal kept", input: "set read_only_staleness = 'exact_staleness  10s'", want: "set read_only_staleness = 'exact_staleness  10s'"},
		{desc: "dotted name", input: "show spanner.readonly", want: "show spanner.readonly"},
		{desc: "only comment", input: "-- nothing", wantErr: true},
		{desc: "unclosed string", input: "set optimizer_version = 'abc", wantErr: true},
	} {
		t.Run(test.desc, func(t *testing.T) {
			got, err := internal.NormalizeStatement("", test.input)
			if test.wantErr {
				if err == nil {
					t.Errorf("NormalizeStatement() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Errorf("NormalizeStatement() error = %v", err)
				return
			}
			if got != test.want {
				t.Errorf("NormalizeStatement() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestNormalizeStatement_EmptyInput(t *testing.T) {
	_, err := internal.NormalizeStatement("", "  /* */  ")
	if !internal.IsEmptyStatement(err) {
		t.Errorf("IsEmptyStatement(%v) = false, want true", err)
	}

	_, err = internal.NormalizeStatement("", "'unclosed")
	if internal.IsEmptyStatement(err) {
		t.Errorf("IsEmptyStatement(%v) = true, want false", err)
	}
}

func TestSeparateInput(t *testing.T) {
	const (
		terminatorHorizontal = `;`
		terminatorUndefined  = ``
	)
	for _, tt := range []struct {
		desc       string
		input      string
		want       []internal.RawStatement
		wantErr    error
		wantAnyErr bool
	}{
		{
			desc:  "single statement without terminator",
			input: `begin`,
			want: []internal.RawStatement{
				{Statement: `begin`, End: 5, Terminator: terminatorUndefined},
			},
		},
		{
			desc:  "multiple statements",
			input: "set autocommit = false; begin;commit",
			want: []internal.RawStatement{
				{Statement: `set autocommit = false`, End: 23, Terminator: terminatorHorizontal},
				{Statement: `begin`, Pos: 24, End: 30, Terminator: terminatorHorizontal},
				{Statement: `commit`, Pos: 30, End: 36, Terminator: terminatorUndefined},
			},
		},
		{
			desc:  "semicolon in string literal",
			input: "set statement_tag = 'a;b';",
			want: []internal.RawStatement{
				{Statement: `set statement_tag = 'a;b'`, End: 26, Terminator: terminatorHorizontal},
			},
		},
		{
			desc:  "leading comment is kept",
			input: "-- first\nbegin;",
			want: []internal.RawStatement{
				{Statement: "-- first\nbegin", End: 15, Terminator: terminatorHorizontal},
			},
		},
		{
			desc:  "trailing whitespace only",
			input: "commit;  \n",
			want: []internal.RawStatement{
				{Statement: "commit", End: 7, Terminator: terminatorHorizontal},
			},
		},
		{
			desc:  "non-closed single quoted",
			input: `set optimizer_version = '123`,
			want: []internal.RawStatement{
				{Statement: `set optimizer_version = '123`, End: 28, Terminator: terminatorUndefined},
			},
			wantAnyErr: true,
		},
		{
			desc:  "non-closed comment",
			input: "commit /*123",
			want: []internal.RawStatement{
				{Statement: "commit /*123", End: 12, Terminator: terminatorUndefined},
			},
			wantErr: &internal.ErrLexerStatus{WaitingString: "*/"},
		},
		{
			desc:  "non-closed triple single quoted",
			input: `set statement_tag = '''123`,
			want: []internal.RawStatement{
				{Statement: `set statement_tag = '''123`, End: 26, Terminator: terminatorUndefined},
			},
			wantErr: &internal.ErrLexerStatus{WaitingString: `'''`},
		},
	} {
		t.Run(tt.desc, func(t *testing.T) {
			got, err := internal.SeparateInput("", tt.input)
			if (!tt.wantAnyErr && tt.wantErr == nil) && err != nil {
				t.Errorf("should success, but failed: %v", err)
			}
			if tt.wantAnyErr && err == nil {
				t.Error("should fail with any error, but success")
			}
			if diff := cmp.Diff(tt.wantErr, err); tt.wantErr != nil && diff != "" {
				t.Errorf("difference in err: (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("difference in statements: (-want +got):\n%s", diff)
			}
		})
	}
}
