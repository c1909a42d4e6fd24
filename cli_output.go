package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/goccy/go-yaml"
	"github.com/ngicks/go-iterator-helper/hiter"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/samber/lo"

	"github.com/apstndb/spanner-clientstmt/enums"
	"github.com/apstndb/spanner-clientstmt/internal/clientstmt"
)

const nullString = "NULL"

// formatValue renders a value of a SHOW result as text.
func formatValue(v any) string {
	switch v := v.(type) {
	case spanner.NullString:
		return lo.Ternary(v.Valid, v.StringVal, nullString)
	case spanner.NullTime:
		if !v.Valid {
			return nullString
		}
		return v.Time.Format(time.RFC3339Nano)
	case bool:
		return lo.Ternary(v, "TRUE", "FALSE")
	case string:
		return v
	case nil:
		return nullString
	default:
		return fmt.Sprint(v)
	}
}

// jsonValue converts a value of a SHOW result to its JSON representation. NULL becomes null.
func jsonValue(v any) any {
	switch v := v.(type) {
	case spanner.NullString:
		return lo.Ternary[any](v.Valid, v.StringVal, nil)
	case spanner.NullTime:
		return lo.Ternary[any](v.Valid, v.Time.Format(time.RFC3339Nano), nil)
	default:
		return v
	}
}

// FormatFunc writes the rows of result to out.
type FormatFunc func(out io.Writer, result *clientstmt.Result) error

func NewFormatter(mode enums.DisplayMode) (FormatFunc, error) {
	switch mode {
	case enums.DisplayModeUnspecified, enums.DisplayModeTable:
		return formatTable, nil
	case enums.DisplayModeVertical:
		return formatVertical, nil
	case enums.DisplayModeTab:
		return formatTab, nil
	case enums.DisplayModeJSON:
		return formatJSON, nil
	default:
		return nil, fmt.Errorf("unsupported display mode: %v", mode)
	}
}

func formattedRows(result *clientstmt.Result) [][]string {
	return slices.Collect(hiter.Map(func(row []any) []string {
		return lo.Map(row, func(v any, _ int) string { return formatValue(v) })
	}, slices.Values(result.Rows)))
}

func newASCIITable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(
			renderer.NewBlueprint(tw.Rendition{Symbols: tw.NewSymbols(tw.StyleASCII)})),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithTrimSpace(tw.Off),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	).Configure(func(config *tablewriter.Config) {
		config.Row.Formatting.AutoWrap = tw.WrapNone
	})
}

func formatTable(out io.Writer, result *clientstmt.Result) error {
	table := newASCIITable(out)
	table.Header(result.Columns)

	for _, row := range formattedRows(result) {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func formatVertical(out io.Writer, result *clientstmt.Result) error {
	maxLen := lo.Max(lo.Map(result.Columns, func(c string, _ int) int { return len(c) }))
	format := fmt.Sprintf("%%%ds: %%s\n", maxLen)

	for i, row := range formattedRows(result) {
		if _, err := fmt.Fprintf(out, "*************************** %d. row ***************************\n", i+1); err != nil {
			return err
		}
		for j, value := range row {
			if _, err := fmt.Fprintf(out, format, result.Columns[j], value); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatTab(out io.Writer, result *clientstmt.Result) error {
	if _, err := fmt.Fprintln(out, strings.Join(result.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range formattedRows(result) {
		if _, err := fmt.Fprintln(out, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// formatJSON writes one object per row keyed by column name.
func formatJSON(out io.Writer, result *clientstmt.Result) error {
	rows := lo.Map(result.Rows, func(row []any, _ int) map[string]any {
		return lo.SliceToMap(lo.Zip2(result.Columns, row), func(t lo.Tuple2[string, any]) (string, any) {
			return t.A, jsonValue(t.B)
		})
	})

	if err := json.MarshalWrite(out, rows, jsontext.WithIndent("  "), json.Deterministic(true)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out)
	return err
}

type statementListing struct {
	Name     string   `yaml:"name" json:"name"`
	Usage    string   `yaml:"usage" json:"usage"`
	Syntax   string   `yaml:"syntax" json:"syntax"`
	Param    string   `yaml:"param,omitempty" json:"param,omitempty"`
	Examples []string `yaml:"examples" json:"examples"`
}

func listingOf(stmt *clientstmt.ClientSideStatement) statementListing {
	var param string
	if stmt.Param != nil {
		param = lo.Ternary(stmt.Param.Kind == clientstmt.ParamEnum, stmt.Param.Enum, stmt.Param.Kind.String())
	}
	return statementListing{
		Name:     stmt.Name,
		Usage:    stmt.Usage,
		Syntax:   stmt.Syntax,
		Param:    param,
		Examples: stmt.Examples,
	}
}

// writeStatementList writes the catalog of p as a YAML document.
func writeStatementList(out io.Writer, p *clientstmt.Parser) error {
	doc := struct {
		Dialect    string             `yaml:"dialect"`
		Statements []statementListing `yaml:"statements"`
	}{
		Dialect:    p.Dialect().String(),
		Statements: lo.Map(p.Statements(), func(s *clientstmt.ClientSideStatement, _ int) statementListing { return listingOf(s) }),
	}

	return yaml.NewEncoder(out, yaml.UseJSONMarshaler()).Encode(doc)
}

// writeHelp writes the syntax and usage of every statement of p as a table.
func writeHelp(out io.Writer, p *clientstmt.Parser) error {
	table := newASCIITable(out)
	table.Header([]string{"Usage", "Syntax"})
	for _, stmt := range p.Statements() {
		if err := table.Append([]string{stmt.Usage, stmt.Syntax}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	_, err := fmt.Fprintln(out, helpFooter)
	return err
}
