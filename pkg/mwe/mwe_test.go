package mwe

import (
	"errors"
	"strings"
	"testing"

	"clipdata/pkg/array"
	"clipdata/pkg/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cities(t *testing.T) *tabular.Table {
	t.Helper()
	tbl, err := tabular.ParseString("City\tPopulation\nPortland\t645291\nSeattle\t724305\nSan Francisco\t874961\n", tabular.ReadOptions{})
	require.NoError(t, err)
	return tbl
}

func TestTable_Julia(t *testing.T) {
	var b strings.Builder
	require.NoError(t, Table(&b, cities(t), Options{Name: "west_coast_cities"}))

	want := `west_coast_cities = """
City,Population
Portland,645291
Seattle,724305
San Francisco,874961
""" |> IOBuffer |> CSV.File
`
	assert.Equal(t, want, b.String())
}

func TestTable_DefaultName(t *testing.T) {
	tbl, err := tabular.FromColumns([]string{"a", "b"}, [][]any{{1, 2, 3}, {100, 200, 300}})
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, Table(&b, tbl, Options{}))
	assert.Equal(t, "df = \"\"\"\na,b\n1,100\n2,200\n3,300\n\"\"\" |> IOBuffer |> CSV.File\n", b.String())
}

func TestArray_Julia(t *testing.T) {
	m, err := array.New([][]any{{1, 2}, {3, 4}})
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, Array(&b, m, Options{}))
	assert.Equal(t, "X = \"\"\"\n1,2\n3,4\n\"\"\" |> IOBuffer |> CSV.File |> Tables.matrix\n", b.String())

	v, err := array.NewVector([]any{1, 2, 3, 4})
	require.NoError(t, err)

	b.Reset()
	require.NoError(t, Array(&b, v, Options{}))
	assert.Equal(t, "x = \"\"\"\n1\n2\n3\n4\n\"\"\" |> IOBuffer |> CSV.File |> Tables.matrix |> vec\n", b.String())
}

func TestOtherLanguages(t *testing.T) {
	tbl, err := tabular.FromColumns([]string{"a"}, [][]any{{1}})
	require.NoError(t, err)
	m, err := array.New([][]any{{1, 2}})
	require.NoError(t, err)
	v, err := array.NewVector([]any{1})
	require.NoError(t, err)

	tests := []struct {
		lang  Lang
		table string
		mat   string
		vec   string
	}{
		{
			lang:  Python,
			table: "df = pd.read_csv(io.StringIO(\"\"\"\na\n1\n\"\"\"))\n",
			mat:   "X = pd.read_csv(io.StringIO(\"\"\"\n1,2\n\"\"\"), header=None).to_numpy()\n",
			vec:   "x = pd.read_csv(io.StringIO(\"\"\"\n1\n\"\"\"), header=None).to_numpy().ravel()\n",
		},
		{
			lang:  R,
			table: "df <- read.csv(text = \"\na\n1\n\")\n",
			mat:   "X <- as.matrix(read.csv(text = \"\n1,2\n\", header = FALSE))\n",
			vec:   "x <- as.vector(as.matrix(read.csv(text = \"\n1\n\", header = FALSE)))\n",
		},
		{
			lang:  Go,
			table: "df, err := tabular.ParseString(`a\n1\n`, tabular.ReadOptions{Delimiter: ','})\n",
			mat:   "X, err := array.ParseString(`1,2\n`, tabular.ReadOptions{Delimiter: ','})\n",
			vec:   "x, err := array.ParseString(`1\n`, tabular.ReadOptions{Delimiter: ','})\n",
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, Table(&b, tbl, Options{Lang: tt.lang}))
			assert.Equal(t, tt.table, b.String())

			b.Reset()
			require.NoError(t, Array(&b, m, Options{Lang: tt.lang}))
			assert.Equal(t, tt.mat, b.String())

			b.Reset()
			require.NoError(t, Array(&b, v, Options{Lang: tt.lang}))
			assert.Equal(t, tt.vec, b.String())
		})
	}
}

func TestLiteralEscaping(t *testing.T) {
	assert.Equal(t, `cost \$5 \"a\" c:\\x`, literal(Julia, `cost $5 "a" c:\x`))
	assert.Equal(t, `\"\"\"`, literal(Python, `"""`))
	assert.Equal(t, "\"a`b\\n\"", literal(Go, "a`b\n"))
	assert.Equal(t, "`plain`", literal(Go, "plain"))
}

func TestInvalidName(t *testing.T) {
	tbl, err := tabular.FromColumns([]string{"a"}, [][]any{{1}})
	require.NoError(t, err)

	for _, opts := range []Options{
		{Name: "1abc"},
		{Name: "my table"},
		{Name: "end", Lang: Julia},
		{Name: "class", Lang: Python},
		{Name: "err", Lang: Go},
	} {
		err := Table(&strings.Builder{}, tbl, opts)
		assert.True(t, errors.Is(err, ErrInvalidName), "name %q: %v", opts.Name, err)
	}
}

func TestParseLang(t *testing.T) {
	l, err := ParseLang("")
	require.NoError(t, err)
	assert.Equal(t, Julia, l)

	l, err = ParseLang("Py")
	require.NoError(t, err)
	assert.Equal(t, Python, l)

	_, err = ParseLang("cobol")
	assert.Error(t, err)
}
