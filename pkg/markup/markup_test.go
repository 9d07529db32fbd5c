package markup

import (
	"strings"
	"testing"

	"clipdata/pkg/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cities(t *testing.T) *tabular.Table {
	t.Helper()
	tbl, err := tabular.FromColumns(
		[]string{"city", "pop", "note"},
		[][]any{
			{"Portland", "San Francisco"},
			{645291, 874961},
			{"a|b", "<c & d>"},
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestHTMLTable(t *testing.T) {
	out := HTMLTable(cities(t))

	assert.True(t, strings.HasPrefix(out, `<meta charset="utf-8"><table>`))
	assert.Contains(t, out, "<tr><th>city</th><th>pop</th><th>note</th></tr>")
	assert.Contains(t, out, "<tr><td>Portland</td><td>645291</td><td>a|b</td></tr>")
	assert.Contains(t, out, "<td>&lt;c &amp; d&gt;</td>")
	assert.True(t, strings.HasSuffix(out, "</table>\n"))
}

func TestMarkdown(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Markdown(&b, cities(t)))

	want := "| city | pop | note |\n" +
		"| --- | ---: | --- |\n" +
		"| Portland | 645291 | a\\|b |\n" +
		"| San Francisco | 874961 | <c & d> |\n"
	assert.Equal(t, want, b.String())
}

func TestMarkdownRoundTrip(t *testing.T) {
	orig := cities(t)
	var b strings.Builder
	require.NoError(t, Markdown(&b, orig))

	got, err := ParseMarkdown(b.String(), tabular.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, orig.Names(), got.Names())
	assert.Equal(t, orig.Rows(), got.Rows())
}

func TestMarkdownRoundTrip_PipeInHeader(t *testing.T) {
	orig, err := tabular.FromColumns([]string{"a|b", "c"}, [][]any{{"x", "y"}, {1, 2}})
	require.NoError(t, err)
	var b strings.Builder
	require.NoError(t, Markdown(&b, orig))
	assert.True(t, strings.HasPrefix(b.String(), "| a\\|b | c |\n"), b.String())

	got, err := ParseMarkdown(b.String(), tabular.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a|b", "c"}, got.Names())
	assert.Equal(t, orig.Rows(), got.Rows())
}

func TestParseMarkdown(t *testing.T) {
	text := `Some notes.

| a | b |
|:--|--:|
| 1 | x\_y |
| 2 | line<br>two |

After the table.
| not | a table |
`
	tbl, err := ParseMarkdown(text, tabular.ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tbl.Names())
	assert.Equal(t, tabular.Int, tbl.Columns[0].Type)
	assert.Equal(t, []any{"x_y", "line\ntwo"}, tbl.Columns[1].Values)
}

func TestParseMarkdown_NoHeader(t *testing.T) {
	tbl, err := ParseMarkdown("| 1 | 2 |\n|---|---|\n| 3 | 4 |\n", tabular.ReadOptions{NoHeader: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Column1", "Column2"}, tbl.Names())
	assert.Equal(t, [][]any{{int64(1), int64(2)}, {int64(3), int64(4)}}, tbl.Rows())
}

func TestParseMarkdown_NoTable(t *testing.T) {
	_, err := ParseMarkdown("just | some | pipes\nand text\n", tabular.ReadOptions{})
	assert.ErrorIs(t, err, ErrNoTable)

	_, err = ParseMarkdown("", tabular.ReadOptions{})
	assert.ErrorIs(t, err, ErrNoTable)
}

func TestParseHTML(t *testing.T) {
	doc := `<html><body>
<p>Population</p>
<table>
  <tr><th>city</th><th>pop</th></tr>
  <tr><td>Portland</td><td>645291</td></tr>
  <tr><td>Seattle</td><td>737015</td></tr>
</table>
</body></html>`

	tbl, err := ParseHTML(doc, tabular.ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "pop"}, tbl.Names())
	assert.Equal(t, []any{"Portland", "Seattle"}, tbl.Columns[0].Values)
	assert.Equal(t, []any{int64(645291), int64(737015)}, tbl.Columns[1].Values)
}

func TestParseHTML_RichCopyRoundTrip(t *testing.T) {
	tbl, err := tabular.FromColumns([]string{"x", "y"}, [][]any{{1, 2}, {0.5, 1.5}})
	require.NoError(t, err)

	got, err := ParseHTML(HTMLTable(tbl), tabular.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), got.Names())
	assert.Equal(t, tbl.Rows(), got.Rows())
}

func TestParseHTML_NoTable(t *testing.T) {
	_, err := ParseHTML("<p>nothing here</p>", tabular.ReadOptions{})
	assert.ErrorIs(t, err, ErrNoTable)
}
