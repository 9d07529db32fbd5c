package cmd

import (
	"context"
	"strings"

	"clipdata/pkg/array"
	"clipdata/pkg/bridge"
	"clipdata/pkg/errors"
	"clipdata/pkg/mwe"
	"clipdata/pkg/tabular"

	"github.com/spf13/cobra"
)

var mweCmd = &cobra.Command{
	Use:   "mwe",
	Short: "Print a minimum working example that rebuilds a table or array",
	Long: `Print a code snippet that embeds the data as a string literal together
with the code that parses it again. Paste it into a script, a notebook or a
bug report.

Supported languages: julia (default), python, r, go. The default language
and variable names come from the mwe section of the config file.`,
}

var mweTableCmd = NewCommand(
	"table [FILE|-]",
	"MWE for a table from the clipboard or a file",
	`Print a snippet that rebuilds the clipboard table, or the table in FILE.`,
).WithExample(`  clipdata mwe table
  clipdata mwe table --lang python --name sales
  clipdata mwe table data.csv --copy`).
	WithArgsValidation(0, 1).
	WithFileInput().
	WithBridge(runMWETable).
	Build()

var mweArrayCmd = NewCommand(
	"array [FILE|-]",
	"MWE for a vector or matrix from the clipboard or a file",
	`Print a snippet that rebuilds the clipboard array, or the array in FILE.
A single column is rebuilt as a vector.`,
).WithExample(`  clipdata mwe array
  clipdata mwe array --lang r --name weights`).
	WithAliases("matrix").
	WithArgsValidation(0, 1).
	WithFileInput().
	WithBridge(runMWEArray).
	Build()

func mweOptions(cmd *cobra.Command, defaultName string) (mwe.Options, error) {
	langName := appConfig.MWE.Lang
	if cmd.Flags().Changed("lang") {
		langName, _ = cmd.Flags().GetString("lang")
	}
	lang, err := mwe.ParseLang(langName)
	if err != nil {
		return mwe.Options{}, errors.NewWithSuggestion(errors.ExitCodeValidation, err.Error(),
			"Supported languages: "+joinLangs())
	}

	name := defaultName
	if cmd.Flags().Changed("name") {
		name, _ = cmd.Flags().GetString("name")
	}
	return mwe.Options{Name: name, Lang: lang}, nil
}

func joinLangs() string {
	langs := mwe.Langs()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

func runMWETable(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
	opts, err := mweOptions(cmd, appConfig.MWE.TableName)
	if err != nil {
		return err
	}
	ro, err := readOptions(cmd)
	if err != nil {
		return err
	}

	var t *tabular.Table
	if len(args) == 1 {
		inputFormat, _ := cmd.Flags().GetString("input-format")
		sheet, _ := cmd.Flags().GetString("sheet")
		if t, err = loadTable(cmd, args[0], inputFormat, sheet, ro); err != nil {
			return err
		}
	} else if t, err = b.PasteTable(ctx, ro); err != nil {
		return err
	}

	var out strings.Builder
	if err := b.TableMWE(ctx, &out, t, opts); err != nil {
		return err
	}
	return emitSnippet(ctx, cmd, b, out.String())
}

func runMWEArray(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
	ro, err := readOptions(cmd)
	if err != nil {
		return err
	}

	var a *array.Array
	if len(args) == 1 {
		if a, err = loadArray(cmd, args[0], ro); err != nil {
			return err
		}
	} else if a, err = b.PasteArray(ctx, ro); err != nil {
		return err
	}

	defaultName := appConfig.MWE.MatrixName
	if a.Vector {
		defaultName = appConfig.MWE.VectorName
	}
	opts, err := mweOptions(cmd, defaultName)
	if err != nil {
		return err
	}

	var out strings.Builder
	if err := b.ArrayMWE(ctx, &out, a, opts); err != nil {
		return err
	}
	return emitSnippet(ctx, cmd, b, out.String())
}

// emitSnippet prints the snippet and, with --copy, also puts it on the
// clipboard.
func emitSnippet(ctx context.Context, cmd *cobra.Command, b *bridge.Bridge, snippet string) error {
	if _, err := cmd.OutOrStdout().Write([]byte(snippet)); err != nil {
		return err
	}
	if copyFlag, _ := cmd.Flags().GetBool("copy"); !copyFlag {
		return nil
	}
	if err := b.CopyText(ctx, snippet); err != nil {
		return err
	}
	reportCopy("the snippet", snippet)
	return nil
}

func init() {
	for _, c := range []*cobra.Command{mweTableCmd, mweArrayCmd} {
		addReadFlags(c)
		c.Flags().StringP("name", "n", "", "Variable name assigned in the snippet")
		c.Flags().StringP("lang", "l", "", "Language: "+joinLangs()+" (default from config)")
		c.Flags().StringP("input-format", "i", "", "Input format when reading FILE: "+joinFormats(InputFormats()))
		c.Flags().String("sheet", "", "Sheet to read from an xlsx workbook (default: first)")
		c.Flags().BoolP("copy", "c", false, "Also copy the snippet to the clipboard")
	}
}
