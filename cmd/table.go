package cmd

import (
	"context"
	"fmt"

	"clipdata/pkg/bridge"
	"clipdata/pkg/tabular"

	"github.com/spf13/cobra"
)

var tableCmd = NewCommand(
	"table",
	"Paste the clipboard as a table and print it",
	`Read the clipboard, parse it as delimited text and print the table.

The delimiter is detected (tab, comma, semicolon, pipe, whitespace) unless
--delim is given. Column types are inferred per column: int, float, bool,
date, datetime or string, with missing cells allowed in any column.`,
).WithExample(`  # Paste a range copied from a spreadsheet
  clipdata table

  # European CSV with a comment header, as JSON
  clipdata table --delim ';' --decimal , --comment '#' --format json

  # Parse stdin instead of the clipboard
  pbpaste | clipdata table --dry-run`).
	WithArgsValidation(0, 0).
	WithBridge(runTable).
	Build()

var tableCopyCmd = NewCommand(
	"copy [FILE|-]",
	"Copy a table from a file or stdin to the clipboard",
	`Load a table and put it on the clipboard as tab-separated text, ready to
paste into a spreadsheet. Where the platform allows it an HTML table is
offered too (set write.rich: false in the config to turn this off).

FILE may be csv, tsv, txt, json, xlsx, md or html, chosen by extension or
--input-format. Without FILE, or with "-", the table is read from stdin.`,
).WithExample(`  clipdata table copy results.csv
  clipdata table copy report.xlsx --sheet Summary
  psql -At -F, -c 'select * from t' | clipdata table copy --out-delim ,`).
	WithArgsValidation(0, 1).
	WithoutPaste().
	WithBridge(runTableCopy).
	Build()

var tableSaveCmd = NewCommand(
	"save FILE",
	"Save the clipboard table to a file",
	`Paste the clipboard as a table and write it to FILE. The file format
follows the extension (csv, tsv, txt, json, yaml, xlsx, md, html) unless
--as is given.`,
).WithExample(`  clipdata table save data.csv
  clipdata table save data.xlsx --sheet Imported
  clipdata table save notes.md`).
	WithArgsValidation(1, 1).
	WithBridge(runTableSave).
	Build()

func runTable(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
	ro, err := readOptions(cmd)
	if err != nil {
		return err
	}
	wo, err := writeOptions(cmd)
	if err != nil {
		return err
	}

	t, err := b.PasteTable(ctx, ro)
	if err != nil {
		return err
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	return out.WriteTable(t, wo)
}

func runTableCopy(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
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
	inputFormat, _ := cmd.Flags().GetString("input-format")
	sheet, _ := cmd.Flags().GetString("sheet")

	t, err := loadTable(cmd, path, inputFormat, sheet, ro)
	if err != nil {
		return err
	}

	text, err := b.CopyTable(ctx, t, wo)
	if err != nil {
		return err
	}
	reportCopy(describeTable(t), text)
	return nil
}

func runTableSave(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error {
	ro, err := readOptions(cmd)
	if err != nil {
		return err
	}
	wo, err := writeOptions(cmd)
	if err != nil {
		return err
	}
	as, _ := cmd.Flags().GetString("as")
	sheet, _ := cmd.Flags().GetString("sheet")

	t, err := b.PasteTable(ctx, ro)
	if err != nil {
		return err
	}

	path := args[0]
	if IsDryRun() {
		PrintDryRun("Would save %s to %s", describeTable(t), path)
		return nil
	}
	if err := saveTable(path, as, sheet, t, wo); err != nil {
		return err
	}
	PrintSuccess("Saved %s to %s", describeTable(t), path)
	return nil
}

func describeTable(t *tabular.Table) string {
	return fmt.Sprintf("%d×%d table", t.NumRows(), t.NumCols())
}

func init() {
	addReadFlags(tableCmd)
	addWriteFlags(tableCmd)

	addReadFlags(tableCopyCmd)
	addWriteFlags(tableCopyCmd)
	tableCopyCmd.Flags().StringP("input-format", "i", "", "Input format: "+joinFormats(InputFormats()))
	tableCopyCmd.Flags().String("sheet", "", "Sheet to read from an xlsx workbook (default: first)")

	addReadFlags(tableSaveCmd)
	addWriteFlags(tableSaveCmd)
	tableSaveCmd.Flags().String("as", "", "File format: "+joinFormats(SaveFormats()))
	tableSaveCmd.Flags().String("sheet", "", "Sheet name for xlsx output (default: Sheet1)")
}
