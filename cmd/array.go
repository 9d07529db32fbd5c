package cmd

import (
	"context"
	"fmt"

	"clipdata/pkg/array"
	"clipdata/pkg/bridge"
	"clipdata/pkg/errors"
	"clipdata/pkg/tabular"

	"github.com/spf13/cobra"
)

var arrayCmd = NewCommand(
	"array",
	"Paste the clipboard as a vector or matrix and print it",
	`Read the clipboard as header-less data with a single element type. A
single column becomes a vector, anything wider a matrix. Mixed int and
float columns are widened to float.`,
).WithExample(`  # A column of numbers copied from a spreadsheet
  clipdata array

  # Shape and data as JSON
  clipdata array --format json`).
	WithAliases("matrix").
	WithArgsValidation(0, 0).
	WithBridge(runArray).
	Build()

var arrayCopyCmd = NewCommand(
	"copy [FILE|-]",
	"Copy an array from a file or stdin to the clipboard",
	`Load header-less delimited data as an array and put it on the clipboard
as tab-separated text, without a header row.`,
).WithExample(`  seq 1 10 | clipdata array copy
  clipdata array copy weights.csv --out-delim ,`).
	WithArgsValidation(0, 1).
	WithoutPaste().
	WithBridge(runArrayCopy).
	Build()

func runArray(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
	ro, err := readOptions(cmd)
	if err != nil {
		return err
	}
	wo, err := writeOptions(cmd)
	if err != nil {
		return err
	}

	a, err := b.PasteArray(ctx, ro)
	if err != nil {
		return err
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	return out.WriteArray(a, wo)
}

func runArrayCopy(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
	ro, err := readOptions(cmd)
	if err != nil {
		return err
	}
	wo, err := writeOptions(cmd)
	if err != nil {
		return err
	}

	path := stdinPath
	if len(args) == 1 {
		path = args[0]
	}
	a, err := loadArray(cmd, path, ro)
	if err != nil {
		return err
	}

	text, err := b.CopyArray(ctx, a, wo)
	if err != nil {
		return err
	}
	reportCopy(describeArray(a), text)
	return nil
}

func describeArray(a *array.Array) string {
	rows, cols := a.Shape()
	if a.Vector {
		return fmt.Sprintf("%d-element %s vector", rows, a.Elem)
	}
	return fmt.Sprintf("%d×%d %s matrix", rows, cols, a.Elem)
}

func init() {
	addReadFlags(arrayCmd)
	addWriteFlags(arrayCmd)

	addReadFlags(arrayCopyCmd)
	addWriteFlags(arrayCopyCmd)
	arrayCopyCmd.Flags().StringP("input-format", "i", "", "Input format: "+joinFormats(InputFormats()))
	arrayCopyCmd.Flags().String("sheet", "", "Sheet to read from an xlsx workbook (default: first)")
}

// loadArray reads every line of the input as data.
func loadArray(cmd *cobra.Command, path string, ro tabular.ReadOptions) (*array.Array, error) {
	inputFormat, _ := cmd.Flags().GetString("input-format")
	sheet, _ := cmd.Flags().GetString("sheet")

	ro.NoHeader = true
	ro.NormalizeNames = false
	t, err := loadTable(cmd, path, inputFormat, sheet, ro)
	if err != nil {
		return nil, err
	}
	a, err := array.FromTable(t)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}
	return a, nil
}
