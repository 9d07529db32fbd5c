package completions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clipdata/pkg/config"
	"clipdata/pkg/filter"
	"clipdata/pkg/history"
	"clipdata/pkg/mwe"
	"clipdata/pkg/spreadsheet"

	"github.com/spf13/cobra"
)

// historyLimit bounds how many entry ids are offered.
const historyLimit = 20

type Completer struct {
	historyPath string
	loadConfig  func() (*config.Config, error)
}

func NewCompleter() *Completer {
	return &Completer{
		historyPath: history.DBPath(),
		loadConfig:  config.LoadFile,
	}
}

func (c *Completer) CompleteFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	results := c.filterPrefix(config.OutputFormats(), toComplete)

	for i, format := range results {
		results[i] = fmt.Sprintf("%s\t%s", format, getFormatDescription(format))
	}

	return results, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteLang(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	langs := mwe.Langs()
	names := make([]string, len(langs))
	for i, l := range langs {
		names[i] = string(l)
	}
	return c.filterPrefix(names, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompletePreset(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	presets := cfg.ListPresets()
	for i, name := range presets {
		if cfg.IsPresetActive(name) {
			presets[i] = name + "\tactive"
		}
	}
	return c.filterPrefix(presets, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// CompleteHistoryID offers the short ids of the newest entries with a
// preview of their content.
func (c *Completer) CompleteHistoryID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	store, err := history.Open(c.historyPath, history.Config{})
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	entries, err := store.List(ctx, historyLimit)
	if err != nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}

	items := []string{"last\tNewest entry"}
	for _, e := range entries {
		items = append(items, fmt.Sprintf("%s\t%s %s: %s", e.ShortID(), e.Direction, e.Kind, firstLine(e.Content)))
	}
	return c.filterPrefix(items, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteDelimiter(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	delimiters := []string{
		"auto\tDetect from the input",
		"tab\tTab-separated",
		"comma\tComma-separated",
		"semicolon\tSemicolon-separated",
		"pipe\tPipe-separated",
		"space\tWhitespace-aligned columns",
	}
	return c.filterPrefix(delimiters, toComplete), cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (c *Completer) CompleteInputFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	formats := []string{
		"csv\tComma-separated text",
		"tsv\tTab-separated text",
		"txt\tDelimited text, delimiter detected",
		"json\tObject of columns or array of rows",
		"xlsx\tExcel workbook",
		"md\tMarkdown pipe table",
		"html\tFirst <table> in an HTML document",
	}
	return c.filterPrefix(formats, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// CompleteSheet offers the sheet names of the workbook given as FILE.
func (c *Completer) CompleteSheet(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	sheets, err := spreadsheet.Sheets(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return c.filterPrefix(sheets, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteColumnType(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// --types takes name=type pairs; complete only the type part.
	i := strings.LastIndex(toComplete, "=")
	if i < 0 {
		return []string{}, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
	prefix := toComplete[:i+1]
	types := []string{"int", "float", "bool", "date", "datetime", "string"}

	results := []string{}
	for _, t := range c.filterPrefix(types, toComplete[i+1:]) {
		results = append(results, prefix+t)
	}
	return results, cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteMatchMode(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return c.filterPrefix(filter.Modes(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteDirection(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return c.filterPrefix([]string{string(history.Paste), string(history.Copy)}, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) CompleteKind(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	kinds := []string{string(history.KindTable), string(history.KindArray), string(history.KindText)}
	return c.filterPrefix(kinds, toComplete), cobra.ShellCompDirectiveNoFileComp
}

func (c *Completer) filterPrefix(items []string, prefix string) []string {
	result := []string{}
	for _, item := range items {
		itemName := strings.Split(item, "\t")[0]
		if strings.HasPrefix(strings.ToLower(itemName), strings.ToLower(prefix)) {
			result = append(result, item)
		}
	}
	return result
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	line = strings.ReplaceAll(line, "\t", " ")
	if r := []rune(line); len(r) > 40 {
		return string(r[:39]) + "…"
	}
	return line
}

func getFormatDescription(format string) string {
	switch format {
	case "table":
		return "Aligned table with column types"
	case "csv":
		return "Comma-separated values"
	case "tsv":
		return "Tab-separated values"
	case "json":
		return "Columns with types, and rows"
	case "yaml":
		return "Columns with types, and rows"
	case "markdown":
		return "GitHub-flavored pipe table"
	default:
		return ""
	}
}

func RegisterCompletions(rootCmd *cobra.Command) {
	completer := NewCompleter()

	rootCmd.RegisterFlagCompletionFunc("format", completer.CompleteFormat)
	rootCmd.RegisterFlagCompletionFunc("preset", completer.CompletePreset)

	readCommands := [][]string{
		{"table"}, {"table", "copy"}, {"table", "save"},
		{"array"}, {"array", "copy"},
		{"mwe", "table"}, {"mwe", "array"},
	}
	for _, path := range readCommands {
		cmd, _, err := rootCmd.Find(path)
		if err != nil || cmd == nil || cmd == rootCmd {
			continue
		}
		cmd.RegisterFlagCompletionFunc("delim", completer.CompleteDelimiter)
		cmd.RegisterFlagCompletionFunc("out-delim", completer.CompleteDelimiter)
		cmd.RegisterFlagCompletionFunc("input-format", completer.CompleteInputFormat)
		cmd.RegisterFlagCompletionFunc("types", completer.CompleteColumnType)
		cmd.RegisterFlagCompletionFunc("lang", completer.CompleteLang)
		// table save writes --sheet, so only readers complete it.
		if path[len(path)-1] != "save" && cmd.Flags().Lookup("sheet") != nil {
			cmd.RegisterFlagCompletionFunc("sheet", completer.CompleteSheet)
		}
	}

	if cmd, _, err := rootCmd.Find([]string{"history", "list"}); err == nil && cmd != rootCmd {
		cmd.RegisterFlagCompletionFunc("match", completer.CompleteMatchMode)
		cmd.RegisterFlagCompletionFunc("direction", completer.CompleteDirection)
		cmd.RegisterFlagCompletionFunc("kind", completer.CompleteKind)
	}

	for _, name := range []string{"show", "restore"} {
		if cmd, _, err := rootCmd.Find([]string{"history", name}); err == nil && cmd != rootCmd {
			cmd.ValidArgsFunction = completer.CompleteHistoryID
		}
	}

	for _, name := range []string{"use", "remove"} {
		if cmd, _, err := rootCmd.Find([]string{"config", "presets", name}); err == nil && cmd != rootCmd {
			cmd.RegisterFlagCompletionFunc("name", completer.CompletePreset)
		}
	}
}
