package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/spanner"
)

var durationLiteralRe = regexp.MustCompile(`(?i)^(\d{1,19})(s|ms|us|ns)$`)

var durationUnits = []struct {
	abbrev string
	unit   time.Duration
}{
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"ns", time.Nanosecond},
}

// UnitAbbreviation returns s, ms, us or ns for unit, or "" for any other duration.
func UnitAbbreviation(unit time.Duration) string {
	for _, u := range durationUnits {
		if u.unit == unit {
			return u.abbrev
		}
	}
	return ""
}

func unitOf(abbrev string) time.Duration {
	for _, u := range durationUnits {
		if strings.EqualFold(u.abbrev, abbrev) {
			return u.unit
		}
	}
	return 0
}

// ParseDuration parses an unquoted duration such as 100ms.
// The unit is one of s, ms, us and ns, ignoring case.
func ParseDuration(s string) (time.Duration, error) {
	m := durationLiteralRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q, must be an integer followed by one of s, ms, us, ns", s)
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	unit := unitOf(m[2])
	if err := fitsInDuration(unit)(n); err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(n) * unit, nil
}

// AppropriateUnit returns the largest of s, ms, us and ns which divides d without remainder.
func AppropriateUnit(d time.Duration) time.Duration {
	for _, u := range durationUnits {
		if d%u.unit == 0 {
			return u.unit
		}
	}
	return time.Nanosecond
}

// FormatDuration formats d as an integer in its appropriate unit, e.g. 1500ms.
func FormatDuration(d time.Duration) string {
	unit := AppropriateUnit(d)
	return fmt.Sprintf("%d%s", d/unit, UnitAbbreviation(unit))
}

// StatementTimeout is a timeout expressed as a value in a time unit.
type StatementTimeout struct {
	Value int64
	Unit  time.Duration
}

// NewStatementTimeout expresses d in its appropriate unit, so 1000ms becomes 1s.
func NewStatementTimeout(d time.Duration) StatementTimeout {
	unit := AppropriateUnit(d)
	return StatementTimeout{Value: int64(d / unit), Unit: unit}
}

func (t StatementTimeout) Duration() time.Duration {
	return time.Duration(t.Value) * t.Unit
}

func (t StatementTimeout) String() string {
	return fmt.Sprintf("%d%s", t.Value, UnitAbbreviation(t.Unit))
}

// nil and zero both clear the timeout.
func toStatementTimeout(d *time.Duration) (*StatementTimeout, error) {
	if d == nil || *d == 0 {
		return nil, nil
	}
	t := NewStatementTimeout(*d)
	return &t, nil
}

// GoogleSQLStatementTimeoutParser parses '<n><unit>' or NULL. NULL and zero parse to nil.
var GoogleSQLStatementTimeoutParser = WithTransform(
	NewNullableParser(WithTransform(GoogleSQLStringParser, ParseDuration), IsGoogleSQLNull),
	toStatementTimeout,
)

// fitsInDuration rejects counts of unit which overflow time.Duration.
func fitsInDuration(unit time.Duration) Validator[int64] {
	return func(n int64) error {
		if n > math.MaxInt64/int64(unit) {
			return fmt.Errorf("%d%s is out of range", n, UnitAbbreviation(unit))
		}
		return nil
	}
}

var millisecondsParser = WithValidation(Parser[int64](NewIntParser().WithMin(0)), fitsInDuration(time.Millisecond))

// parsePostgreSQLDuration accepts a duration with a unit or an integer of milliseconds.
func parsePostgreSQLDuration(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "'") {
		unquoted, err := PostgreSQLStringParser.Parse(trimmed)
		if err != nil {
			return 0, err
		}
		trimmed = strings.TrimSpace(unquoted)
	}

	if durationLiteralRe.MatchString(trimmed) {
		return ParseDuration(trimmed)
	}

	ms, err := millisecondsParser.ParseAndValidate(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// PostgreSQLStatementTimeoutParser parses '<n><unit>', a number of milliseconds, NULL or DEFAULT.
// NULL, DEFAULT and zero parse to nil.
var PostgreSQLStatementTimeoutParser = WithTransform(
	NewNullableParser(&BaseParser[time.Duration]{ParseFunc: parsePostgreSQLDuration}, Keywords("NULL", "DEFAULT")),
	toStatementTimeout,
)

var timestampLiteralRe = regexp.MustCompile(`(?i)^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{1,9})?(?:Z|[+-]\d{2}:\d{2})$`)

// ParseTimestamp parses an RFC3339 timestamp with at most nine fractional digits.
// The result is in UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if !timestampLiteralRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, must be RFC3339 like 2006-01-02T15:04:05.999999999Z", s)
	}
	t, err := time.Parse(time.RFC3339Nano, strings.ToUpper(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// ParseTimestampBound parses an unquoted timestamp bound such as "exact_staleness 10s".
// The mode is case-insensitive and separated from its argument by spaces or tabs.
func ParseTimestampBound(s string) (spanner.TimestampBound, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == '\t' })

	// only for error result
	nilStaleness := spanner.StrongRead()

	if len(fields) == 0 {
		return nilStaleness, fmt.Errorf("unknown staleness: %q", s)
	}
	if len(fields) > 2 {
		return nilStaleness, fmt.Errorf("%s accepts at most one parameter", fields[0])
	}

	mode := strings.ToUpper(fields[0])
	switch mode {
	case "STRONG":
		if len(fields) > 1 {
			return nilStaleness, fmt.Errorf("STRONG does not accept any parameters")
		}
		return spanner.StrongRead(), nil
	case "READ_TIMESTAMP", "MIN_READ_TIMESTAMP":
		if len(fields) < 2 {
			return nilStaleness, fmt.Errorf("%s requires a timestamp parameter", mode)
		}
		ts, err := ParseTimestamp(fields[1])
		if err != nil {
			return nilStaleness, err
		}
		if mode == "READ_TIMESTAMP" {
			return spanner.ReadTimestamp(ts), nil
		}
		return spanner.MinReadTimestamp(ts), nil
	case "EXACT_STALENESS", "MAX_STALENESS":
		if len(fields) < 2 {
			return nilStaleness, fmt.Errorf("%s requires a duration parameter", mode)
		}
		d, err := ParseDuration(fields[1])
		if err != nil {
			return nilStaleness, err
		}
		if mode == "EXACT_STALENESS" {
			return spanner.ExactStaleness(d), nil
		}
		return spanner.MaxStaleness(d), nil
	default:
		return nilStaleness, fmt.Errorf("unknown staleness: %q", s)
	}
}

// GoogleSQLTimestampBoundParser parses a timestamp bound in a GoogleSQL string literal.
var GoogleSQLTimestampBoundParser = WithTransform(GoogleSQLStringParser, ParseTimestampBound)

// PostgreSQLTimestampBoundParser parses a timestamp bound in a PostgreSQL string literal.
var PostgreSQLTimestampBoundParser = WithTransform(PostgreSQLStringParser, ParseTimestampBound)

// TimestampBoundMode names the kind of a spanner.TimestampBound.
type TimestampBoundMode string

const (
	TimestampBoundStrong           TimestampBoundMode = "STRONG"
	TimestampBoundReadTimestamp    TimestampBoundMode = "READ_TIMESTAMP"
	TimestampBoundMinReadTimestamp TimestampBoundMode = "MIN_READ_TIMESTAMP"
	TimestampBoundExactStaleness   TimestampBoundMode = "EXACT_STALENESS"
	TimestampBoundMaxStaleness     TimestampBoundMode = "MAX_STALENESS"
)

// DecomposedTimestampBound is a spanner.TimestampBound split into its parts.
// Timestamp is set for the timestamp modes and Staleness for the staleness modes.
type DecomposedTimestampBound struct {
	Mode      TimestampBoundMode
	Timestamp time.Time
	Staleness time.Duration
}

// spanner.TimestampBound keeps its fields unexported, String() is the only way to read them.
var timestampBoundStringRe = regexp.MustCompile(`^\(([^:]+)(?:: (.+))?\)$`)

// layout of time.Time.String() without the zone abbreviation
const timeStringLayout = "2006-01-02 15:04:05.999999999 -0700"

// DecomposeTimestampBound reads the mode and the argument out of tb.
func DecomposeTimestampBound(tb spanner.TimestampBound) (DecomposedTimestampBound, error) {
	s := tb.String()
	matches := timestampBoundStringRe.FindStringSubmatch(s)
	if matches == nil {
		return DecomposedTimestampBound{}, fmt.Errorf("unknown timestamp bound: %s", s)
	}

	switch matches[1] {
	case "strong":
		return DecomposedTimestampBound{Mode: TimestampBoundStrong}, nil
	case "readTimestamp", "minReadTimestamp":
		// date, time and offset, without the zone abbreviation and the monotonic clock reading
		fields := strings.Fields(matches[2])
		if len(fields) < 3 {
			return DecomposedTimestampBound{}, fmt.Errorf("unknown timestamp bound: %s", s)
		}
		t, err := time.Parse(timeStringLayout, strings.Join(fields[:3], " "))
		if err != nil {
			return DecomposedTimestampBound{}, fmt.Errorf("unknown timestamp bound: %s: %w", s, err)
		}
		mode := TimestampBoundReadTimestamp
		if matches[1] == "minReadTimestamp" {
			mode = TimestampBoundMinReadTimestamp
		}
		return DecomposedTimestampBound{Mode: mode, Timestamp: t.UTC()}, nil
	case "exactStaleness", "maxStaleness":
		d, err := time.ParseDuration(matches[2])
		if err != nil {
			return DecomposedTimestampBound{}, fmt.Errorf("unknown timestamp bound: %s: %w", s, err)
		}
		mode := TimestampBoundExactStaleness
		if matches[1] == "maxStaleness" {
			mode = TimestampBoundMaxStaleness
		}
		return DecomposedTimestampBound{Mode: mode, Staleness: d}, nil
	default:
		return DecomposedTimestampBound{}, fmt.Errorf("unknown timestamp bound: %s", s)
	}
}

// FormatTimestampBound formats tb in the syntax accepted by ParseTimestampBound.
func FormatTimestampBound(tb spanner.TimestampBound) string {
	d, err := DecomposeTimestampBound(tb)
	if err != nil {
		return tb.String()
	}

	switch d.Mode {
	case TimestampBoundStrong:
		return string(d.Mode)
	case TimestampBoundReadTimestamp, TimestampBoundMinReadTimestamp:
		return fmt.Sprintf("%s %s", d.Mode, d.Timestamp.Format(time.RFC3339Nano))
	default:
		return fmt.Sprintf("%s %s", d.Mode, FormatDuration(d.Staleness))
	}
}
