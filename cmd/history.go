package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"time"

	"clipdata/pkg/bridge"
	"clipdata/pkg/errors"
	"clipdata/pkg/filter"
	"clipdata/pkg/history"
	"clipdata/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const previewWidth = 48

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and restore past clipboard transfers",
	Long: `Every paste and copy is recorded in a local SQLite database, newest
first. Old entries are pruned by count and age (history.max_entries and
history.ttl in the config file). Use --no-history to skip recording.`,
}

var historyListCmd = NewCommand(
	"list",
	"List recorded transfers",
	`List recorded transfers, newest first, optionally filtered by content,
direction, kind or age.`,
).WithExample(`  clipdata history list
  clipdata history list --grep Portland --direction paste
  clipdata history list --grep '^\d' --match regex --since 2h`).
	WithAliases("ls").
	WithArgsValidation(0, 0).
	WithHistoryStore(runHistoryList).
	Build()

var historyShowCmd = NewCommand(
	"show ID",
	"Print the content of a recorded transfer",
	`Print the text of an entry exactly as it was pasted or copied. ID may be
any unique prefix of the entry id.`,
).WithArgsValidation(1, 1).
	WithHistoryStore(runHistoryShow).
	Build()

var historyRestoreCmd = NewCommand(
	"restore ID",
	"Put a recorded transfer back on the clipboard",
	`Copy the text of an entry back to the clipboard. ID may be any unique
prefix of the entry id, or "last" for the newest entry.`,
).WithArgsValidation(1, 1).
	WithHistoryStore(runHistoryRestore).
	Build()

var historyClearCmd = NewCommand(
	"clear",
	"Delete every recorded transfer",
	``,
).WithArgsValidation(0, 0).
	WithHistoryStore(runHistoryClear).
	Build()

var historyPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the history database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), history.DBPath())
		return nil
	},
}

func entryFilter(cmd *cobra.Command) (*filter.EntryFilter, error) {
	f := &filter.EntryFilter{}
	flags := cmd.Flags()

	if pattern, _ := flags.GetString("grep"); pattern != "" {
		modeName, _ := flags.GetString("match")
		mode, err := filter.ParseMode(modeName)
		if err != nil {
			return nil, errors.ValidationError(err.Error())
		}
		content, err := filter.NewStringFilter(pattern, mode)
		if err != nil {
			return nil, errors.ValidationError(err.Error())
		}
		f.Content = content
	}

	switch dir, _ := flags.GetString("direction"); history.Direction(dir) {
	case "":
	case history.Paste, history.Copy:
		f.Direction = history.Direction(dir)
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown direction %q (want paste or copy)", dir))
	}

	switch kind, _ := flags.GetString("kind"); history.Kind(kind) {
	case "":
	case history.KindTable, history.KindArray, history.KindText:
		f.Kind = history.Kind(kind)
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown kind %q (want table, array or text)", kind))
	}

	if since, _ := flags.GetDuration("since"); since > 0 {
		f.Since = time.Now().Add(-since)
	}
	return f, nil
}

func runHistoryList(ctx context.Context, cmd *cobra.Command, args []string, store *history.Store) error {
	f, err := entryFilter(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")

	entries, err := store.List(ctx, 0)
	if err != nil {
		return errors.HistoryError(err)
	}
	entries = f.Apply(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	if out.IsStructured() {
		return out.Write(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transfers recorded.")
		return nil
	}
	writeEntries(cmd.OutOrStdout(), entries)
	return nil
}

func writeEntries(w io.Writer, entries []history.Entry) {
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)
	for _, e := range entries {
		dims := "-"
		if e.Kind != history.KindText {
			dims = fmt.Sprintf("%d×%d", e.Rows, e.Cols)
		}
		_, _ = cyan.Fprint(w, e.ShortID())
		_, _ = faint.Fprintf(w, "  %s", e.CreatedAt.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "  %-5s  %-5s  %7s  %s\n", e.Direction, e.Kind, dims, preview(e.Content))
	}
}

func preview(content string) string {
	s := strings.Join(strings.Fields(strings.ReplaceAll(content, "\t", " ⇥ ")), " ")
	if r := []rune(s); len(r) > previewWidth {
		return string(r[:previewWidth-1]) + "…"
	}
	return s
}

func lookupEntry(ctx context.Context, store *history.Store, id string) (*history.Entry, error) {
	var (
		e   *history.Entry
		err error
	)
	if id == "last" {
		e, err = store.Latest(ctx, "")
	} else {
		e, err = store.Get(ctx, id)
	}
	switch {
	case stderrors.Is(err, history.ErrNotFound):
		return nil, errors.NewWithSuggestion(errors.ExitCodeValidation,
			fmt.Sprintf("history entry %q not found", id),
			"List entries with: clipdata history list")
	case stderrors.Is(err, history.ErrAmbiguous):
		return nil, errors.NewWithSuggestion(errors.ExitCodeValidation,
			fmt.Sprintf("history id %q matches more than one entry", id),
			"Use a longer prefix of the id.")
	case err != nil:
		return nil, errors.HistoryError(err)
	}
	return e, nil
}

func runHistoryShow(ctx context.Context, cmd *cobra.Command, args []string, store *history.Store) error {
	e, err := lookupEntry(ctx, store, args[0])
	if err != nil {
		return err
	}

	out := NewOutputWriter(outputFormat)
	out.SetWriter(cmd.OutOrStdout())
	if out.IsStructured() {
		return out.Write(e)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), e.Content)
	return err
}

func runHistoryRestore(ctx context.Context, cmd *cobra.Command, args []string, store *history.Store) error {
	e, err := lookupEntry(ctx, store, args[0])
	if err != nil {
		return err
	}

	board, err := openBoard(cmd.InOrStdin(), false)
	if err != nil {
		return err
	}
	opts := []bridge.Option{bridge.WithLogger(logger.GetLogger())}
	if recordHistory() {
		opts = append(opts, bridge.WithHistory(store))
	}
	if err := bridge.New(board, opts...).CopyText(ctx, e.Content); err != nil {
		return err
	}
	reportCopy(fmt.Sprintf("entry %s", e.ShortID()), e.Content)
	return nil
}

func runHistoryClear(ctx context.Context, cmd *cobra.Command, args []string, store *history.Store) error {
	n, err := store.Count(ctx)
	if err != nil {
		return errors.HistoryError(err)
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "History is already empty.")
		return nil
	}

	ok, err := ConfirmDestructive(cmd.InOrStdin(), "clear the transfer history", fmt.Sprintf("%d entries will be deleted", n))
	if err != nil {
		return errors.CancelledError("history clear")
	}
	if !ok {
		if !IsDryRun() {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		}
		return nil
	}

	deleted, err := store.Clear(ctx)
	if err != nil {
		return errors.HistoryError(err)
	}
	PrintSuccess("Deleted %d entries", deleted)
	return nil
}

func init() {
	f := historyListCmd.Flags()
	f.StringP("grep", "g", "", "Only entries whose content matches this pattern")
	f.StringP("match", "m", "contains", "How --grep matches: "+strings.Join(filter.Modes(), ", "))
	f.String("direction", "", "Only paste or copy entries")
	f.String("kind", "", "Only table, array or text entries")
	f.Duration("since", 0, "Only entries newer than this (e.g. 2h, 30m)")
	f.IntP("limit", "n", 20, "Show at most this many entries (0 shows all)")
}
