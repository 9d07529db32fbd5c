// Package array views header-less tabular data as a vector or a matrix with
// a single element type.
package array

import (
	"fmt"
	"io"
	"strings"

	"clipdata/pkg/tabular"
)

// Array is a dense, row-major vector or matrix. A vector is stored as a
// single column.
type Array struct {
	Rows   int
	Cols   int
	Elem   tabular.Type
	Data   [][]any
	Vector bool
}

// New builds a matrix from rows of equal length. Go ints and floats are
// accepted and promoted the same way parsed columns are.
func New(rows [][]any) (*Array, error) {
	if len(rows) == 0 {
		return nil, tabular.ErrEmpty
	}
	cols := len(rows[0])
	values := make([][]any, cols)
	for c := range values {
		values[c] = make([]any, len(rows))
	}
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", r+1, len(row), cols)
		}
		for c, v := range row {
			values[c][r] = v
		}
	}
	t, err := tabular.FromColumns(columnNames(cols), values)
	if err != nil {
		return nil, err
	}
	a, err := FromTable(t)
	if err != nil {
		return nil, err
	}
	// An explicit n×1 matrix stays a matrix.
	a.Vector = false
	return a, nil
}

// NewVector builds a vector.
func NewVector(values []any) (*Array, error) {
	if len(values) == 0 {
		return nil, tabular.ErrEmpty
	}
	t, err := tabular.FromColumns([]string{"Column1"}, [][]any{values})
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

// FromTable converts a table to an array. The element type is the promotion
// of all column types; a one-column table becomes a vector.
func FromTable(t *tabular.Table) (*Array, error) {
	if t.NumCols() == 0 {
		return nil, tabular.ErrEmpty
	}
	elem := tabular.Missing
	for _, c := range t.Columns {
		elem = tabular.Promote(elem, c.Type)
	}

	a := &Array{
		Rows:   t.NumRows(),
		Cols:   t.NumCols(),
		Elem:   elem,
		Data:   make([][]any, t.NumRows()),
		Vector: t.NumCols() == 1,
	}
	for i := range a.Data {
		row := t.Row(i)
		for j, v := range row {
			row[j] = widen(v, elem)
		}
		a.Data[i] = row
	}
	return a, nil
}

func widen(v any, elem tabular.Type) any {
	if v == nil {
		return nil
	}
	switch elem {
	case tabular.Float:
		if i, ok := v.(int64); ok {
			return float64(i)
		}
	case tabular.String:
		if _, ok := v.(string); !ok {
			return tabular.FormatValue(v, 0)
		}
	}
	return v
}

// At returns the element at row i, column j. Vectors use j == 0.
func (a *Array) At(i, j int) any {
	return a.Data[i][j]
}

// Shape returns (rows, cols); a vector reports (n, 1).
func (a *Array) Shape() (int, int) {
	return a.Rows, a.Cols
}

// Len is the total element count.
func (a *Array) Len() int {
	return a.Rows * a.Cols
}

// Table converts the array back to a table with columns Column1..N.
func (a *Array) Table() *tabular.Table {
	t := &tabular.Table{Columns: make([]tabular.Column, a.Cols)}
	for j := range t.Columns {
		values := make([]any, a.Rows)
		for i := range values {
			values[i] = a.Data[i][j]
		}
		t.Columns[j] = tabular.Column{Name: fmt.Sprintf("Column%d", j+1), Type: a.Elem, Values: values}
	}
	return t
}

// Parse reads delimited numeric (or other) text as an array. Any header
// setting in opts is ignored: every line is data.
func Parse(r io.Reader, opts tabular.ReadOptions) (*Array, error) {
	opts.NoHeader = true
	opts.NormalizeNames = false
	t, err := tabular.Parse(r, opts)
	if err != nil {
		return nil, err
	}
	return FromTable(t)
}

func ParseString(s string, opts tabular.ReadOptions) (*Array, error) {
	return Parse(strings.NewReader(s), opts)
}

// Write serializes a without a header row.
func Write(w io.Writer, a *Array, opts tabular.WriteOptions) error {
	opts.NoHeader = true
	return tabular.Write(w, a.Table(), opts)
}

func Format(a *Array, opts tabular.WriteOptions) (string, error) {
	var b strings.Builder
	if err := Write(&b, a, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

func columnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Column%d", i+1)
	}
	return names
}
