package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Parse reads delimited text from r into a Table.
func Parse(r io.Reader, opts ReadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseString(string(data), opts)
}

// ParseString is Parse for in-memory text, such as clipboard contents.
func ParseString(text string, opts ReadOptions) (*Table, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = dropLines(text, opts.SkipRows, opts.Comment)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}

	if opts.Delimiter == 0 {
		opts.Delimiter = DetectDelimiter(text)
	}
	opts = opts.withDefaults()

	records, err := readRecords(text, opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	return buildTable(records, opts)
}

// dropLines removes the first skip lines and any line starting with the
// comment prefix.
func dropLines(text string, skip int, comment string) string {
	if skip <= 0 && comment == "" {
		return text
	}
	lines := strings.SplitAfter(text, "\n")
	if skip >= len(lines) {
		return ""
	}
	lines = lines[max(skip, 0):]
	if comment == "" {
		return strings.Join(lines, "")
	}
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, comment) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "")
}

func readRecords(text string, opts ReadOptions) ([][]string, error) {
	if opts.IgnoreRepeated {
		text = collapseRepeated(text, opts.Delimiter)
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	// TrimLeadingSpace would also swallow whitespace delimiters.
	cr.TrimLeadingSpace = !opts.NoTrim && !unicode.IsSpace(opts.Delimiter)

	lines := strings.Split(text, "\n")
	var records [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse delimited text: %w", err)
		}
		if !opts.NoTrim {
			for i := range rec {
				if !quotedField(cr, lines, i) {
					rec[i] = strings.TrimFunc(rec[i], isBlank)
				}
			}
		}
		if blankRecord(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// quotedField reports whether field i of the record just read started with
// a quote. Quoted fields keep their whitespace.
func quotedField(cr *csv.Reader, lines []string, i int) bool {
	line, col := cr.FieldPos(i)
	if line < 1 || line > len(lines) {
		return false
	}
	l := lines[line-1]
	return col >= 1 && col <= len(l) && l[col-1] == '"'
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func buildTable(records [][]string, opts ReadOptions) (*Table, error) {
	var header []string
	firstRow := 1
	if !opts.NoHeader {
		header, records = records[0], records[1:]
		firstRow = 2
	}
	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[:opts.Limit]
	}

	width := len(header)
	for _, rec := range records {
		width = max(width, len(rec))
	}
	names := headerNames(header, width, opts.NormalizeNames)

	in := inferrer{opts: opts}
	t := &Table{Columns: make([]Column, width)}
	cells := make([]string, len(records))
	for c := 0; c < width; c++ {
		for r, rec := range records {
			if c < len(rec) {
				cells[r] = rec[c]
			} else {
				cells[r] = opts.MissingStrings[0]
			}
		}
		col, err := in.buildColumn(names[c], cells, firstRow)
		if err != nil {
			return nil, err
		}
		t.Columns[c] = col
	}
	return t, nil
}

// FromRecords builds a Table from fields that are already split, such as
// spreadsheet cells or Markdown table rows. Header, naming and inference
// follow Parse; Delimiter, Comment and IgnoreRepeated do not apply.
func FromRecords(records [][]string, opts ReadOptions) (*Table, error) {
	opts = opts.withDefaults()
	if opts.SkipRows > 0 {
		records = records[min(opts.SkipRows, len(records)):]
	}

	kept := make([][]string, 0, len(records))
	for _, rec := range records {
		if !opts.NoTrim {
			trimmed := make([]string, len(rec))
			for i, f := range rec {
				trimmed[i] = strings.TrimFunc(f, isBlank)
			}
			rec = trimmed
		}
		if blankRecord(rec) {
			continue
		}
		kept = append(kept, rec)
	}
	if len(kept) == 0 {
		return nil, ErrEmpty
	}
	return buildTable(kept, opts)
}
