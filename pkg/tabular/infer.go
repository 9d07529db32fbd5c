package tabular

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339Nano,
}

// CellError reports a cell that cannot be converted to a forced column type.
type CellError struct {
	Row    int
	Column string
	Text   string
	Type   Type
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot read %q as %s", e.Row, e.Column, e.Text, e.Type)
}

type inferrer struct {
	opts ReadOptions
}

func (in inferrer) isMissing(s string) bool {
	return slices.Contains(in.opts.MissingStrings, s)
}

// classify returns the narrowest type that can represent s.
func (in inferrer) classify(s string) Type {
	if in.isMissing(s) {
		return Missing
	}
	if _, ok := in.parseInt(s); ok {
		return Int
	}
	if _, ok := in.parseFloat(s); ok {
		return Float
	}
	if _, ok := in.parseBool(s); ok {
		return Bool
	}
	if _, err := time.Parse(dateLayout, s); err == nil {
		return Date
	}
	if _, ok := parseDateTime(s); ok {
		return DateTime
	}
	return String
}

func (in inferrer) parseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	return i, err == nil
}

func (in inferrer) parseFloat(s string) (float64, bool) {
	if in.opts.Decimal != '.' {
		if strings.Contains(s, ".") {
			return 0, false
		}
		s = strings.Replace(s, string(in.opts.Decimal), ".", 1)
	}
	// ParseFloat also accepts hex mantissas and underscores; real data
	// tables never carry those, so treat them as text.
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (in inferrer) parseBool(s string) (bool, bool) {
	if slices.Contains(in.opts.TrueStrings, s) {
		return true, true
	}
	if slices.Contains(in.opts.FalseStrings, s) {
		return false, true
	}
	return false, false
}

func parseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// convert reads s as typ. The second result is false when s does not fit.
func (in inferrer) convert(s string, typ Type) (any, bool) {
	if in.isMissing(s) {
		return nil, true
	}
	switch typ {
	case Int:
		i, ok := in.parseInt(s)
		return i, ok
	case Float:
		if i, ok := in.parseInt(s); ok {
			return float64(i), true
		}
		f, ok := in.parseFloat(s)
		return f, ok
	case Bool:
		b, ok := in.parseBool(s)
		return b, ok
	case Date:
		t, err := time.Parse(dateLayout, s)
		return t, err == nil
	case DateTime:
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, true
		}
		t, ok := parseDateTime(s)
		return t, ok
	case String:
		return s, true
	default:
		return nil, false
	}
}

// buildColumn infers the column type from its cells unless one is forced,
// then converts every cell. firstRow is the 1-based input row of cells[0].
func (in inferrer) buildColumn(name string, cells []string, firstRow int) (Column, error) {
	typ, forced := in.opts.Types[name]
	if !forced {
		typ = Missing
		for _, s := range cells {
			typ = Promote(typ, in.classify(s))
			if typ == String {
				break
			}
		}
	}

	col := Column{Name: name, Type: typ, Values: make([]any, len(cells))}
	for i, s := range cells {
		v, ok := in.convert(s, typ)
		if !ok {
			return Column{}, &CellError{Row: firstRow + i, Column: name, Text: s, Type: typ}
		}
		col.Values[i] = v
	}
	return col, nil
}

// FormatValue renders a cell value as text. Floats always keep a decimal
// point or exponent so they are read back as floats.
func FormatValue(v any, decimal rune) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		s := formatFloat(val)
		if decimal != 0 && decimal != '.' {
			s = strings.Replace(s, ".", string(decimal), 1)
		}
		return s
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return formatTime(val, isMidnightUTC(val))
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// FormatCell is FormatValue for a value of a column of type typ. Midnight
// values of a datetime column keep their time of day so the column reads
// back as datetime.
func FormatCell(v any, typ Type, decimal rune) string {
	if ts, ok := v.(time.Time); ok {
		return formatTime(ts, typ != DateTime && isMidnightUTC(ts))
	}
	return FormatValue(v, decimal)
}

// formatTime writes UTC times without a zone and any other time with its
// offset.
func formatTime(ts time.Time, dateOnly bool) string {
	switch {
	case dateOnly:
		return ts.Format(dateLayout)
	case ts.Location() == time.UTC:
		return ts.Format(dateTimeLayouts[0])
	default:
		return ts.Format(time.RFC3339Nano)
	}
}

func isMidnightUTC(ts time.Time) bool {
	return ts.Location() == time.UTC &&
		ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-5 || abs >= 1e15) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
