package cmd

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"clipdata/pkg/errors"
	"clipdata/pkg/markup"
	"clipdata/pkg/spreadsheet"
	"clipdata/pkg/tabular"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const stdinPath = "-"

// InputFormats lists the file formats a table can be loaded from.
func InputFormats() []string {
	return []string{"csv", "tsv", "txt", "json", "xlsx", "md", "html"}
}

// SaveFormats lists the file formats a table can be saved as.
func SaveFormats() []string {
	return []string{"csv", "tsv", "txt", "json", "yaml", "xlsx", "md", "html"}
}

func joinFormats(formats []string) string {
	return strings.Join(formats, ", ")
}

var extensionFormats = map[string]string{
	".csv":      "csv",
	".tsv":      "tsv",
	".tab":      "tsv",
	".txt":      "txt",
	".json":     "json",
	".jsonc":    "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".xlsx":     "xlsx",
	".md":       "md",
	".markdown": "md",
	".html":     "html",
	".htm":      "html",
}

func formatForPath(path, explicit string, allowed []string) (string, error) {
	format := strings.ToLower(explicit)
	if format == "" {
		if path == stdinPath {
			return "txt", nil
		}
		format = extensionFormats[strings.ToLower(filepath.Ext(path))]
		if format == "" {
			format = "txt"
		}
	}
	for _, f := range allowed {
		if f == format {
			return format, nil
		}
	}
	return "", errors.NewWithSuggestion(errors.ExitCodeValidation,
		fmt.Sprintf("unsupported file format %q", format),
		"Supported formats: "+strings.Join(allowed, ", "))
}

// loadTable reads a table from path ("-" for stdin) in the given format,
// or in the format implied by the extension when format is empty.
func loadTable(cmd *cobra.Command, path, format, sheet string, opts tabular.ReadOptions) (*tabular.Table, error) {
	format, err := formatForPath(path, format, InputFormats())
	if err != nil {
		return nil, err
	}

	if format == "xlsx" {
		if path == stdinPath {
			return nil, errors.ValidationError("xlsx input must be a file, not stdin")
		}
		t, err := spreadsheet.ReadSheet(path, sheet, opts)
		if stderrors.Is(err, spreadsheet.ErrSheetNotFound) {
			e := errors.NewWithError(errors.ExitCodeValidation, fmt.Sprintf("no sheet %q in %s", sheet, path), err)
			if sheets, listErr := spreadsheet.Sheets(path); listErr == nil {
				e.Suggestion = "Sheets in this workbook: " + strings.Join(sheets, ", ")
			}
			return nil, e
		}
		if err != nil {
			return nil, errors.ParseError(path, err)
		}
		return t, nil
	}

	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return nil, err
	}

	var t *tabular.Table
	switch format {
	case "csv":
		if opts.Delimiter == 0 {
			opts.Delimiter = ','
		}
		t, err = tabular.ParseString(string(data), opts)
	case "tsv":
		if opts.Delimiter == 0 {
			opts.Delimiter = '\t'
		}
		t, err = tabular.ParseString(string(data), opts)
	case "json":
		t, err = tabular.ReadJSON(data)
	case "md":
		t, err = markup.ParseMarkdown(string(data), opts)
	case "html":
		t, err = markup.ParseHTML(string(data), opts)
	default:
		t, err = tabular.ParseString(string(data), opts)
	}
	if err != nil {
		return nil, errors.ParseError(path, err)
	}
	return t, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.FileError(errors.ErrMsgReadFile, "stdin", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.FileError(errors.ErrMsgReadFile, path, err)
	}
	return data, nil
}

// saveTable writes t to path in the format implied by its extension.
func saveTable(path, format, sheet string, t *tabular.Table, opts tabular.WriteOptions) error {
	format, err := formatForPath(path, format, SaveFormats())
	if err != nil {
		return err
	}

	if format == "xlsx" {
		if err := spreadsheet.WriteSheet(path, sheet, t); err != nil {
			return errors.FileError(errors.ErrMsgWriteFile, path, err)
		}
		return nil
	}

	var buf bytes.Buffer
	switch format {
	case "csv":
		opts.Delimiter = ','
		err = tabular.Write(&buf, t, opts)
	case "tsv":
		opts.Delimiter = '\t'
		err = tabular.Write(&buf, t, opts)
	case "json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(t.Document())
	case "yaml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(t.Document())
		if err == nil {
			err = enc.Close()
		}
	case "md":
		err = markup.Markdown(&buf, t)
	case "html":
		buf.WriteString(markup.HTMLTable(t))
	default:
		err = tabular.Write(&buf, t, opts)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrMsgWriteTable)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.FileError(errors.ErrMsgWriteFile, path, err)
	}
	return nil
}
