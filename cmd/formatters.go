package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"clipdata/pkg/array"
	"clipdata/pkg/markup"
	"clipdata/pkg/tabular"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	// FormatTable is the default human-readable table format
	FormatTable OutputFormat = "table"
	FormatCSV   OutputFormat = "csv"
	FormatTSV   OutputFormat = "tsv"
	// FormatJSON outputs as JSON
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs as YAML
	FormatYAML     OutputFormat = "yaml"
	FormatMarkdown OutputFormat = "markdown"
)

// maxCellWidth truncates long cells in the terminal table.
const maxCellWidth = 40

// OutputWriter handles structured output formatting
type OutputWriter struct {
	format OutputFormat
	writer io.Writer
}

// NewOutputWriter creates a new output writer with the specified format
func NewOutputWriter(format string) *OutputWriter {
	f := OutputFormat(format)
	switch f {
	case FormatCSV, FormatTSV, FormatJSON, FormatYAML, FormatMarkdown:
	default:
		f = FormatTable
	}
	return &OutputWriter{
		format: f,
		writer: os.Stdout,
	}
}

// SetWriter sets a custom writer (used in tests)
func (w *OutputWriter) SetWriter(writer io.Writer) {
	w.writer = writer
}

func (w *OutputWriter) GetFormat() OutputFormat {
	return w.format
}

// IsStructured returns true if the format is JSON or YAML
func (w *OutputWriter) IsStructured() bool {
	return w.format == FormatJSON || w.format == FormatYAML
}

// Write outputs the data in the configured format. Only JSON and YAML
// apply: the other formats are handled by the calling command.
func (w *OutputWriter) Write(data interface{}) error {
	switch w.format {
	case FormatJSON:
		encoder := json.NewEncoder(w.writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		encoder := yaml.NewEncoder(w.writer)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(data)
	default:
		return nil
	}
}

// WriteTable prints t in the configured format. opts applies to the
// delimited formats.
func (w *OutputWriter) WriteTable(t *tabular.Table, opts tabular.WriteOptions) error {
	switch w.format {
	case FormatJSON, FormatYAML:
		return w.Write(t.Document())
	case FormatCSV:
		opts.Delimiter = ','
		return tabular.Write(w.writer, t, opts)
	case FormatTSV:
		opts.Delimiter = '\t'
		return tabular.Write(w.writer, t, opts)
	case FormatMarkdown:
		return markup.Markdown(w.writer, t)
	default:
		return w.prettyTable(t, true)
	}
}

type arrayDocument struct {
	Shape  []int   `json:"shape" yaml:"shape"`
	Elem   string  `json:"elem" yaml:"elem"`
	Vector bool    `json:"vector" yaml:"vector"`
	Data   [][]any `json:"data" yaml:"data"`
}

// WriteArray prints a in the configured format. Structured output carries
// the shape and element type.
func (w *OutputWriter) WriteArray(a *array.Array, opts tabular.WriteOptions) error {
	t := a.Table()
	switch w.format {
	case FormatJSON, FormatYAML:
		rows, cols := a.Shape()
		shape := []int{rows, cols}
		if a.Vector {
			shape = []int{rows}
		}
		return w.Write(arrayDocument{
			Shape:  shape,
			Elem:   a.Elem.String(),
			Vector: a.Vector,
			Data:   t.Document().Rows,
		})
	case FormatCSV, FormatTSV:
		opts.NoHeader = true
		return w.WriteTable(t, opts)
	case FormatMarkdown:
		return markup.Markdown(w.writer, t)
	default:
		rows, cols := a.Shape()
		kind := "matrix"
		dims := fmt.Sprintf("%d×%d", rows, cols)
		if a.Vector {
			kind = "vector"
			dims = fmt.Sprintf("%d", rows)
		}
		faint := color.New(color.Faint)
		_, _ = faint.Fprintf(w.writer, "%s %s{%s}\n", dims, kind, a.Elem)
		return w.prettyTable(t, false)
	}
}

// prettyTable prints an aligned terminal table: a bold header, the column
// types and the rows, numbers right-aligned.
func (w *OutputWriter) prettyTable(t *tabular.Table, header bool) error {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	missing := color.New(color.FgHiBlack)

	cells := make([][]string, t.NumRows())
	for i := range cells {
		row := t.Row(i)
		cells[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				cells[i][j] = "missing"
				continue
			}
			cells[i][j] = truncate(tabular.FormatCell(v, t.Columns[j].Type, 0))
		}
	}

	widths := make([]int, t.NumCols())
	for j, col := range t.Columns {
		if header {
			widths[j] = max(textWidth(col.Name), textWidth(col.Type.String()))
		}
		for i := range cells {
			widths[j] = max(widths[j], textWidth(cells[i][j]))
		}
	}

	var b strings.Builder
	if header {
		for j, col := range t.Columns {
			writeSep(&b, j)
			b.WriteString(bold.Sprint(pad(col.Name, widths[j], false)))
		}
		b.WriteByte('\n')
		for j, col := range t.Columns {
			writeSep(&b, j)
			b.WriteString(faint.Sprint(pad(col.Type.String(), widths[j], false)))
		}
		b.WriteByte('\n')
	}
	for i := range cells {
		for j, col := range t.Columns {
			writeSep(&b, j)
			cell := pad(cells[i][j], widths[j], isNumeric(col.Type))
			if t.Cell(i, j) == nil {
				cell = missing.Sprint(cell)
			}
			b.WriteString(cell)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w.writer, b.String())
	return err
}

func writeSep(b *strings.Builder, j int) {
	if j > 0 {
		b.WriteString("  ")
	}
}

func isNumeric(t tabular.Type) bool {
	return t == tabular.Int || t == tabular.Float
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s)
}

func pad(s string, width int, right bool) string {
	gap := width - textWidth(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", "⏎")
	if textWidth(s) <= maxCellWidth {
		return s
	}
	r := []rune(s)
	return string(r[:maxCellWidth-1]) + "…"
}
