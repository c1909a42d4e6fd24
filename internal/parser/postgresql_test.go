package parser_test

import (
	"testing"

	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

func TestPostgreSQLStringParser(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "'1'", want: "1"},
		{name: "empty", input: "''", want: ""},
		{name: "doubled quote", input: "'it''s'", want: "it's"},
		{name: "only doubled quote", input: "''''", want: "'"},
		{name: "backslash is literal", input: `'a\nb'`, want: `a\nb`},
		{name: "single quote inside", input: "'it's'", wantErr: true},
		{name: "double quoted", input: `"abc"`, wantErr: true},
		{name: "unquoted", input: "abc", wantErr: true},
		{name: "lone quote", input: "'", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.PostgreSQLStringParser.ParseAndValidate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("PostgreSQLStringParser.ParseAndValidate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("PostgreSQLStringParser.ParseAndValidate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostgreSQLBoolParser(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{input: "true", want: true},
		{input: "FALSE", want: false},
		{input: "on", want: true},
		{input: "OFF", want: false},
		{input: "yes", want: true},
		{input: "no", want: false},
		{input: "t", want: true},
		{input: "f", want: false},
		{input: "1", want: true},
		{input: "0", want: false},
		{input: "'on'", want: true},
		{input: "'false'", want: false},
		{input: "2", wantErr: true},
		{input: "maybe", wantErr: true},
		{input: "'tru'", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parser.PostgreSQLBoolParser.ParseAndValidate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("PostgreSQLBoolParser.ParseAndValidate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("PostgreSQLBoolParser.ParseAndValidate() = %v, want %v", got, tt.want)
			}
		})
	}
}
