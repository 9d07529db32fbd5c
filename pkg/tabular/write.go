package tabular

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Write serializes t as delimited text, one record per line.
func Write(w io.Writer, t *Table, opts WriteOptions) error {
	opts = opts.withDefaults()

	var records [][]string
	if !opts.NoHeader {
		records = append(records, t.Names())
	}
	for i := 0; i < t.NumRows(); i++ {
		rec := make([]string, t.NumCols())
		for c, v := range t.Row(i) {
			if v == nil {
				rec[c] = opts.Missing
				continue
			}
			rec[c] = FormatCell(v, t.Columns[c].Type, opts.Decimal)
		}
		records = append(records, rec)
	}
	return writeRecords(w, records, opts.Delimiter, opts.QuoteAll)
}

// Format is Write into a string.
func Format(t *Table, opts WriteOptions) (string, error) {
	var b strings.Builder
	if err := Write(&b, t, opts); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeRecords writes RFC 4180 records. A field is quoted when quoteAll is
// set or when it would not read back unchanged: it holds the delimiter, a
// quote or a line break, or starts or ends with a blank that the reader
// trims.
func writeRecords(w io.Writer, records [][]string, delim rune, quoteAll bool) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		for i, field := range rec {
			if i > 0 {
				bw.WriteRune(delim)
			}
			if !quoteAll && !needsQuotes(field, delim) {
				bw.WriteString(field)
				continue
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(field, `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write delimited text: %w", err)
	}
	return nil
}

func needsQuotes(field string, delim rune) bool {
	if field == "" {
		return false
	}
	if field == `\.` || strings.ContainsRune(field, delim) || strings.ContainsAny(field, "\"\r\n") {
		return true
	}
	first, _ := utf8.DecodeRuneInString(field)
	last, _ := utf8.DecodeLastRuneInString(field)
	return unicode.IsSpace(first) || unicode.IsSpace(last)
}
