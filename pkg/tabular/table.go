// Package tabular parses delimited text into typed tables and writes them
// back out. Reading goes through encoding/csv. Writing quotes RFC 4180
// style, and also quotes fields with edge whitespace so they survive the
// reader's trimming.
package tabular

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrEmpty is returned when the input holds no rows at all.
var ErrEmpty = errors.New("no tabular data found")

// Type is the inferred element type of a column.
type Type int

const (
	Missing Type = iota
	Int
	Float
	Bool
	Date
	DateTime
	String
)

var typeNames = map[Type]string{
	Missing:  "missing",
	Int:      "int",
	Float:    "float",
	Bool:     "bool",
	Date:     "date",
	DateTime: "datetime",
	String:   "string",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType maps a type name ("int", "float", ...) back to a Type.
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return Missing, fmt.Errorf("unknown column type %q", name)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Promote returns the narrowest type able to hold values of both a and b.
func Promote(a, b Type) Type {
	switch {
	case a == b:
		return a
	case a == Missing:
		return b
	case b == Missing:
		return a
	case (a == Int && b == Float) || (a == Float && b == Int):
		return Float
	case (a == Date && b == DateTime) || (a == DateTime && b == Date):
		return DateTime
	default:
		return String
	}
}

// Column is a named, typed sequence of values. Each value is nil (missing),
// int64, float64, bool, time.Time or string depending on Type.
type Column struct {
	Name   string `json:"name" yaml:"name"`
	Type   Type   `json:"type" yaml:"type"`
	Values []any  `json:"-" yaml:"-"`
}

// Table is a column-oriented table. All columns have the same length.
type Table struct {
	Columns []Column
}

func (t *Table) NumCols() int {
	return len(t.Columns)
}

func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

func (t *Table) Cell(row, col int) any {
	return t.Columns[col].Values[row]
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Values[i]
	}
	return row
}

// Rows returns every row in order.
func (t *Table) Rows() [][]any {
	rows := make([][]any, t.NumRows())
	for i := range rows {
		rows[i] = t.Row(i)
	}
	return rows
}

// FromColumns builds a table from parallel name and value slices. Column
// types are inferred from the Go types of the values.
func FromColumns(names []string, values [][]any) (*Table, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("got %d names for %d columns", len(names), len(values))
	}
	t := &Table{Columns: make([]Column, len(names))}
	for i, name := range names {
		if i > 0 && len(values[i]) != len(values[0]) {
			return nil, fmt.Errorf("column %q has %d values, want %d", name, len(values[i]), len(values[0]))
		}
		col, err := columnFromValues(name, values[i])
		if err != nil {
			return nil, err
		}
		t.Columns[i] = col
	}
	return t, nil
}

func columnFromValues(name string, values []any) (Column, error) {
	col := Column{Name: name, Type: Missing, Values: make([]any, len(values))}
	for _, v := range values {
		typ, err := typeOf(v)
		if err != nil {
			return Column{}, fmt.Errorf("column %q: %w", name, err)
		}
		col.Type = Promote(col.Type, typ)
	}
	for i, v := range values {
		col.Values[i] = coerce(normalizeValue(v), col.Type)
	}
	return col, nil
}

func typeOf(v any) (Type, error) {
	switch val := v.(type) {
	case nil:
		return Missing, nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return Int, nil
	case float32, float64:
		return Float, nil
	case bool:
		return Bool, nil
	case time.Time:
		if isMidnightUTC(val) {
			return Date, nil
		}
		return DateTime, nil
	case string:
		return String, nil
	default:
		return Missing, fmt.Errorf("unsupported value type %T", v)
	}
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}

// coerce converts an already-normalized value to the column type. Only
// widening conversions happen here: int to float, and anything to string.
func coerce(v any, typ Type) any {
	if v == nil {
		return nil
	}
	switch typ {
	case Float:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
	case String:
		if _, ok := v.(string); !ok {
			return FormatValue(v, 0)
		}
	}
	return v
}

// Document is a structured-output view of a table, shaped for JSON and
// YAML encoders. Dates and non-finite floats are rendered as text.
type Document struct {
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

func (t *Table) Document() Document {
	doc := Document{Columns: t.Columns, Rows: make([][]any, t.NumRows())}
	for i := range doc.Rows {
		row := t.Row(i)
		for c, v := range row {
			switch val := v.(type) {
			case time.Time:
				row[c] = FormatCell(val, t.Columns[c].Type, 0)
			case float64:
				if math.IsNaN(val) || math.IsInf(val, 0) {
					row[c] = FormatValue(val, 0)
				}
			}
		}
		doc.Rows[i] = row
	}
	return doc
}
