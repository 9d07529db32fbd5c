package cmd

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"clipdata/pkg/config"
	"clipdata/pkg/errors"
	"clipdata/pkg/tabular"
	"clipdata/pkg/utils"

	"github.com/spf13/cobra"
)

// addReadFlags registers the parser flags on cmd. They override the config
// file and the active preset only when given explicitly.
func addReadFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("delim", "d", "", "Field delimiter: a character, tab, comma, semicolon, pipe, space (default: detect)")
	f.Bool("no-header", false, "Treat the first row as data and name columns Column1..N")
	f.Bool("normalize-names", false, "Rewrite header names into identifier-safe form")
	f.Int("skip", 0, "Skip this many lines before reading")
	f.Int("limit", 0, "Read at most this many data rows (0 reads all)")
	f.String("comment", "", "Drop lines starting with this prefix")
	f.StringSlice("missing", nil, "Cell texts read as missing (repeatable, default: empty cell)")
	f.String("decimal", "", "Decimal separator for floats (default: .)")
	f.Bool("no-trim", false, "Keep whitespace around unquoted fields")
	f.Bool("ignore-repeated", false, "Collapse runs of the delimiter into one")
	f.StringToString("types", nil, "Force column types, e.g. --types zip=string,price=float")
	f.StringSlice("true", nil, "Cell texts read as true (default: true, True, TRUE)")
	f.StringSlice("false", nil, "Cell texts read as false (default: false, False, FALSE)")
}

// addWriteFlags registers the serializer flags on cmd.
func addWriteFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("out-delim", "", "Output delimiter (default: tab)")
	f.String("out-missing", "", "Text written for missing cells")
	f.String("out-decimal", "", "Decimal separator written for floats")
	f.Bool("quote-all", false, "Quote every field")
	f.Bool("out-no-header", false, "Do not write the header row")
}

func readOptions(cmd *cobra.Command) (tabular.ReadOptions, error) {
	opts := appConfig.ReadOptions()
	f := cmd.Flags()

	if f.Changed("delim") {
		s, _ := f.GetString("delim")
		d, err := config.ParseDelimiter(s)
		if err != nil {
			return opts, errors.ValidationError(err.Error())
		}
		opts.Delimiter = d
	}
	if f.Changed("no-header") {
		opts.NoHeader, _ = f.GetBool("no-header")
	}
	if f.Changed("normalize-names") {
		opts.NormalizeNames, _ = f.GetBool("normalize-names")
	}
	if f.Changed("skip") {
		opts.SkipRows, _ = f.GetInt("skip")
		if opts.SkipRows < 0 {
			return opts, errors.ValidationError("--skip must not be negative")
		}
	}
	if f.Changed("limit") {
		opts.Limit, _ = f.GetInt("limit")
		if opts.Limit < 0 {
			return opts, errors.ValidationError("--limit must not be negative")
		}
	}
	if f.Changed("comment") {
		opts.Comment, _ = f.GetString("comment")
	}
	if f.Changed("missing") {
		missing, _ := f.GetStringSlice("missing")
		opts.MissingStrings = utils.Deduplicate(missing)
	}
	if f.Changed("decimal") {
		s, _ := f.GetString("decimal")
		r, err := singleRune("decimal", s)
		if err != nil {
			return opts, err
		}
		opts.Decimal = r
	}
	if f.Changed("no-trim") {
		opts.NoTrim, _ = f.GetBool("no-trim")
	}
	if f.Changed("ignore-repeated") {
		opts.IgnoreRepeated, _ = f.GetBool("ignore-repeated")
	}
	if f.Changed("true") {
		opts.TrueStrings, _ = f.GetStringSlice("true")
	}
	if f.Changed("false") {
		opts.FalseStrings, _ = f.GetStringSlice("false")
	}
	if f.Changed("types") {
		raw, _ := f.GetStringToString("types")
		types, err := parseTypes(raw)
		if err != nil {
			return opts, err
		}
		opts.Types = types
	}

	if opts.Delimiter != 0 && opts.Delimiter == opts.Decimal {
		return opts, errors.ValidationError(fmt.Sprintf("delimiter and decimal separator are both %q", opts.Delimiter))
	}
	return opts, nil
}

func writeOptions(cmd *cobra.Command) (tabular.WriteOptions, error) {
	opts := appConfig.WriteOptions()
	f := cmd.Flags()

	if f.Changed("out-delim") {
		s, _ := f.GetString("out-delim")
		d, err := config.ParseDelimiter(s)
		if err != nil {
			return opts, errors.ValidationError(err.Error())
		}
		opts.Delimiter = d
	}
	if f.Changed("out-missing") {
		opts.Missing, _ = f.GetString("out-missing")
	}
	if f.Changed("out-decimal") {
		s, _ := f.GetString("out-decimal")
		r, err := singleRune("out-decimal", s)
		if err != nil {
			return opts, err
		}
		opts.Decimal = r
	}
	if f.Changed("quote-all") {
		opts.QuoteAll, _ = f.GetBool("quote-all")
	}
	if f.Changed("out-no-header") {
		opts.NoHeader, _ = f.GetBool("out-no-header")
	}
	return opts, nil
}

func singleRune(flag, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, errors.ValidationError(fmt.Sprintf("--%s wants a single character, got %q", flag, s))
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func parseTypes(raw map[string]string) (map[string]tabular.Type, error) {
	types := make(map[string]tabular.Type, len(raw))
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		typ, err := tabular.ParseType(strings.ToLower(strings.TrimSpace(raw[name])))
		if err != nil || typ == tabular.Missing {
			return nil, errors.NewWithSuggestion(errors.ExitCodeValidation,
				fmt.Sprintf("invalid type %q for column %q", raw[name], name),
				"Valid types: int, float, bool, date, datetime, string")
		}
		types[name] = typ
	}
	return types, nil
}
