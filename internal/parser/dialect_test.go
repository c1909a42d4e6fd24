package parser_test

import (
	"errors"
	"testing"

	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	"github.com/google/go-cmp/cmp"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/parser"
)

func TestDialectParser_For(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dialect databasepb.DatabaseDialect
		want    parser.Parser[string]
	}{
		{databasepb.DatabaseDialect_DATABASE_DIALECT_UNSPECIFIED, parser.StringParser.GoogleSQL},
		{databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, parser.StringParser.GoogleSQL},
		{databasepb.DatabaseDialect_POSTGRESQL, parser.StringParser.PostgreSQL},
	}
	for _, tt := range tests {
		if got := parser.StringParser.For(tt.dialect); got != tt.want {
			t.Errorf("For(%v) returned the parser of the other dialect", tt.dialect)
		}
	}
}

func TestDialectParser_Strings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		dialect databasepb.DatabaseDialect
		input   string
		want    string
	}{
		{databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, `'it\'s'`, "it's"},
		{databasepb.DatabaseDialect_POSTGRESQL, `'it''s'`, "it's"},
	}
	for _, tt := range tests {
		got, err := parser.StringParser.ParseAndValidate(tt.dialect, tt.input)
		if err != nil {
			t.Fatalf("ParseAndValidate(%v, %q) error = %v", tt.dialect, tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseAndValidate(%v, %q) = %q, want %q", tt.dialect, tt.input, got, tt.want)
		}
	}
}

func TestDialectParser_Bools(t *testing.T) {
	t.Parallel()
	if _, err := parser.BoolParser.ParseAndValidate(databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL, "on"); err == nil {
		t.Error("GoogleSQL should not accept on")
	}

	got, err := parser.BoolParser.ParseAndValidate(databasepb.DatabaseDialect_POSTGRESQL, "on")
	if err != nil || !got {
		t.Errorf("ParseAndValidate(POSTGRESQL, on) = %v, %v, want true, nil", got, err)
	}
}

func TestNewDialectEnumParser(t *testing.T) {
	t.Parallel()
	p := parser.NewDialectEnumParser(parser.NewEnumParserFromValues(enums.AutocommitDMLModeValues()))

	for _, dialect := range []databasepb.DatabaseDialect{
		databasepb.DatabaseDialect_GOOGLE_STANDARD_SQL,
		databasepb.DatabaseDialect_POSTGRESQL,
	} {
		t.Run(dialect.String(), func(t *testing.T) {
			for input, want := range map[string]enums.AutocommitDMLMode{
				"'transactional'":        enums.AutocommitDMLModeTransactional,
				"PARTITIONED_NON_ATOMIC": enums.AutocommitDMLModePartitionedNonAtomic,
			} {
				got, err := p.ParseAndValidate(dialect, input)
				if err != nil {
					t.Fatalf("ParseAndValidate(%q) error = %v", input, err)
				}
				if got != want {
					t.Errorf("ParseAndValidate(%q) = %v, want %v", input, got, want)
				}
			}

			_, err := p.ParseAndValidate(dialect, "'foo'")
			var enumErr *parser.EnumValueError
			if !errors.As(err, &enumErr) {
				t.Fatalf("ParseAndValidate('foo') error = %v, want *EnumValueError", err)
			}
			want := &parser.EnumValueError{Value: "foo", Valid: []string{"TRANSACTIONAL", "PARTITIONED_NON_ATOMIC"}}
			if diff := cmp.Diff(want, enumErr); diff != "" {
				t.Errorf("EnumValueError mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
