// Package markup renders tables as HTML and GitHub-flavored Markdown and
// reads them back from either.
package markup

import (
	"bufio"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"clipdata/pkg/tabular"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

var ErrNoTable = errors.New("no table found")

var separatorCell = regexp.MustCompile(`^:?-+:?$`)

// HTMLTable renders t as a standalone <table>. Spreadsheets paste this as
// cells, keeping the header row separate.
func HTMLTable(t *tabular.Table) string {
	var b strings.Builder
	b.WriteString("<meta charset=\"utf-8\"><table>\n<thead>\n<tr>")
	for _, name := range t.Names() {
		b.WriteString("<th>")
		b.WriteString(html.EscapeString(name))
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for r := 0; r < t.NumRows(); r++ {
		b.WriteString("<tr>")
		for c, v := range t.Row(r) {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(tabular.FormatCell(v, t.Columns[c].Type, '.')))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return b.String()
}

// Markdown writes t as a pipe table. Numeric columns are right-aligned.
func Markdown(w io.Writer, t *tabular.Table) error {
	bw := bufio.NewWriter(w)

	names := make([]string, t.NumCols())
	for i, name := range t.Names() {
		names[i] = escapeCell(name)
	}
	writeRow(bw, names)
	seps := make([]string, t.NumCols())
	for i, c := range t.Columns {
		if c.Type == tabular.Int || c.Type == tabular.Float {
			seps[i] = "---:"
		} else {
			seps[i] = "---"
		}
	}
	writeRow(bw, seps)

	cells := make([]string, t.NumCols())
	for r := 0; r < t.NumRows(); r++ {
		for c, v := range t.Row(r) {
			cells[c] = escapeCell(tabular.FormatCell(v, t.Columns[c].Type, '.'))
		}
		writeRow(bw, cells)
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, cells []string) {
	w.WriteString("|")
	for _, c := range cells {
		w.WriteString(" ")
		w.WriteString(c)
		w.WriteString(" |")
	}
	w.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}

// ParseMarkdown reads the first pipe table in text. The row above the
// delimiter row is the header unless opts.NoHeader is set, in which case
// it is read as data.
func ParseMarkdown(text string, opts tabular.ReadOptions) (*tabular.Table, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i := 0; i+1 < len(lines); i++ {
		header, ok := splitRow(lines[i])
		if !ok || !isSeparator(lines[i+1]) {
			continue
		}

		records := [][]string{header}
		for _, line := range lines[i+2:] {
			row, ok := splitRow(line)
			if !ok {
				break
			}
			records = append(records, row)
		}
		return tabular.FromRecords(records, opts)
	}
	return nil, ErrNoTable
}

// ParseHTML converts an HTML document to Markdown and reads the first
// table in it.
func ParseHTML(doc string, opts tabular.ReadOptions) (*tabular.Table, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			strikethrough.NewStrikethroughPlugin(),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertString(doc)
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}
	return ParseMarkdown(md, opts)
}

func isSeparator(line string) bool {
	cells, ok := splitRow(line)
	if !ok {
		return false
	}
	for _, c := range cells {
		if !separatorCell.MatchString(strings.TrimSpace(c)) {
			return false
		}
	}
	return true
}

// splitRow splits a pipe table row on unescaped pipes and removes
// backslash escapes from the cells.
func splitRow(line string) ([]string, bool) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "|") {
		return nil, false
	}
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var cells []string
	var cur strings.Builder
	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '\\' && i+1 < len(line) && isPunct(line[i+1]):
			i++
			cur.WriteByte(line[i])
		case ch == '|':
			cells = append(cells, unbreak(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	cells = append(cells, unbreak(cur.String()))
	return cells, true
}

func unbreak(s string) string {
	s = strings.TrimSpace(s)
	for _, br := range []string{"<br>", "<br/>", "<br />"} {
		s = strings.ReplaceAll(s, br, "\n")
	}
	return s
}

func isPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
