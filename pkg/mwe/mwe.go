// Package mwe prints minimum working examples: a short code snippet that
// embeds a table or array as a string literal together with the code that
// parses it back, ready to paste into a script or a bug report.
package mwe

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"clipdata/pkg/array"
	"clipdata/pkg/tabular"
)

// Lang selects the target language of the snippet.
type Lang string

const (
	Julia  Lang = "julia"
	Python Lang = "python"
	R      Lang = "r"
	Go     Lang = "go"
)

const (
	DefaultTableName  = "df"
	DefaultMatrixName = "X"
	DefaultVectorName = "x"
)

var ErrInvalidName = errors.New("invalid variable name")

// Langs lists the supported languages.
func Langs() []Lang {
	return []Lang{Julia, Python, R, Go}
}

func ParseLang(s string) (Lang, error) {
	switch l := Lang(strings.ToLower(s)); l {
	case Julia, Python, R, Go:
		return l, nil
	case "":
		return Julia, nil
	case "py":
		return Python, nil
	case "golang":
		return Go, nil
	}
	return "", fmt.Errorf("unsupported language %q (want one of julia, python, r, go)", s)
}

type Options struct {
	// Name is the variable the snippet assigns. Empty picks the default for
	// the kind of data: df, X or x.
	Name string
	Lang Lang
}

type shape int

const (
	shapeTable shape = iota
	shapeMatrix
	shapeVector
)

type snippet struct {
	Name    string
	Literal string
	Shape   shape
}

var templates = map[Lang]*template.Template{
	Julia: template.Must(template.New("julia").Parse(
		`{{.Name}} = """
{{.Literal}}""" |> IOBuffer |> CSV.File{{if eq .Shape 1}} |> Tables.matrix{{else if eq .Shape 2}} |> Tables.matrix |> vec{{end}}
`)),
	Python: template.Must(template.New("python").Parse(
		`{{.Name}} = pd.read_csv(io.StringIO("""
{{.Literal}}"""){{if ne .Shape 0}}, header=None).to_numpy(){{if eq .Shape 2}}.ravel(){{end}}{{else}}){{end}}
`)),
	R: template.Must(template.New("r").Parse(
		`{{.Name}} <- {{if ne .Shape 0}}{{if eq .Shape 2}}as.vector({{end}}as.matrix(read.csv(text = "
{{.Literal}}", header = FALSE)){{if eq .Shape 2}}){{end}}{{else}}read.csv(text = "
{{.Literal}}"){{end}}
`)),
	Go: template.Must(template.New("go").Parse(
		`{{.Name}}, err := {{if eq .Shape 0}}tabular{{else}}array{{end}}.ParseString({{.Literal}}, tabular.ReadOptions{Delimiter: ','})
`)),
}

var identPatterns = map[Lang]*regexp.Regexp{
	Julia:  regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_!]*$`),
	Python: regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`),
	R:      regexp.MustCompile(`^([\p{L}][\p{L}\p{N}._]*|\.[\p{L}._][\p{L}\p{N}._]*)$`),
	Go:     regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*$`),
}

// Table writes a snippet that rebuilds t.
func Table(w io.Writer, t *tabular.Table, opts Options) error {
	body, err := tabular.Format(t, tabular.WriteOptions{Delimiter: ','})
	if err != nil {
		return err
	}
	return render(w, body, shapeTable, opts)
}

// Array writes a snippet that rebuilds a as a matrix or vector.
func Array(w io.Writer, a *array.Array, opts Options) error {
	body, err := array.Format(a, tabular.WriteOptions{Delimiter: ','})
	if err != nil {
		return err
	}
	s := shapeMatrix
	if a.Vector {
		s = shapeVector
	}
	return render(w, body, s, opts)
}

func render(w io.Writer, body string, s shape, opts Options) error {
	lang := opts.Lang
	if lang == "" {
		lang = Julia
	}
	tmpl, ok := templates[lang]
	if !ok {
		return fmt.Errorf("unsupported language %q", lang)
	}

	name := opts.Name
	if name == "" {
		name = defaultName(s)
	}
	if !identPatterns[lang].MatchString(name) || reserved[lang][name] {
		return fmt.Errorf("%w %q for %s", ErrInvalidName, name, lang)
	}

	return tmpl.Execute(w, snippet{Name: name, Literal: literal(lang, body), Shape: s})
}

func defaultName(s shape) string {
	switch s {
	case shapeMatrix:
		return DefaultMatrixName
	case shapeVector:
		return DefaultVectorName
	default:
		return DefaultTableName
	}
}

// literal escapes body for the string syntax the template wraps it in.
func literal(lang Lang, body string) string {
	switch lang {
	case Julia:
		return strings.NewReplacer(`\`, `\\`, `$`, `\$`, `"`, `\"`).Replace(body)
	case Python:
		return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(body)
	case R:
		return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(body)
	case Go:
		if strings.Contains(body, "`") {
			return strconv.Quote(body)
		}
		return "`" + body + "`"
	default:
		return body
	}
}

var reserved = map[Lang]map[string]bool{
	Julia: set("baremodule", "begin", "break", "catch", "const", "continue", "do", "else", "elseif",
		"end", "export", "false", "finally", "for", "function", "global", "if", "import", "let",
		"local", "macro", "module", "quote", "return", "struct", "true", "try", "using", "while"),
	Python: set("False", "None", "True", "and", "as", "assert", "async", "await", "break", "class",
		"continue", "def", "del", "elif", "else", "except", "finally", "for", "from", "global", "if",
		"import", "in", "is", "lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
		"while", "with", "yield"),
	R: set("if", "else", "repeat", "while", "function", "for", "next", "break", "TRUE", "FALSE",
		"NULL", "Inf", "NaN", "NA", "in"),
	Go: set("break", "case", "chan", "const", "continue", "default", "defer", "else", "fallthrough",
		"for", "func", "go", "goto", "if", "import", "interface", "map", "package", "range", "return",
		"select", "struct", "switch", "type", "var", "err", "_"),
}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
