package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"clipdata/pkg/bridge"
	"clipdata/pkg/clipboard"
	"clipdata/pkg/errors"
	"clipdata/pkg/history"
	"clipdata/pkg/logger"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// BridgeFunc is the body of a command that talks to the clipboard.
type BridgeFunc func(ctx context.Context, cmd *cobra.Command, args []string, b *bridge.Bridge) error

type CommandBuilder struct {
	cmd       *cobra.Command
	noPaste   bool
	fileInput bool
}

func NewCommand(name, short, long string) *CommandBuilder {
	return &CommandBuilder{
		cmd: &cobra.Command{
			Use:     name,
			Short:   short,
			Long:    long,
			Example: "",
		},
	}
}

func (b *CommandBuilder) WithExample(example string) *CommandBuilder {
	b.cmd.Example = example
	return b
}

func (b *CommandBuilder) WithAliases(aliases ...string) *CommandBuilder {
	b.cmd.Aliases = aliases
	return b
}

// WithoutPaste marks a command that only writes the clipboard, so that a
// dry run leaves stdin for the command's own input.
func (b *CommandBuilder) WithoutPaste() *CommandBuilder {
	b.noPaste = true
	return b
}

// WithFileInput marks a command that reads its positional FILE instead of
// the clipboard when one is given, so a dry run only seeds the board from
// stdin when there are no args.
func (b *CommandBuilder) WithFileInput() *CommandBuilder {
	b.fileInput = true
	return b
}

// WithBridge runs fn with a bridge over the system clipboard, or over an
// in-memory board seeded from stdin when --dry-run is set.
func (b *CommandBuilder) WithBridge(fn BridgeFunc) *CommandBuilder {
	b.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := GetContext()
		defer cancel()

		seed := !b.noPaste && !(b.fileInput && len(args) > 0)
		br, closeFn, err := openBridge(cmd, seed)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, cmd, args, br)
	}
	return b
}

// WithHistoryStore runs fn with the history database open.
func (b *CommandBuilder) WithHistoryStore(fn func(ctx context.Context, cmd *cobra.Command, args []string, store *history.Store) error) *CommandBuilder {
	b.cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := GetContext()
		defer cancel()

		store, err := openHistory()
		if err != nil {
			return errors.HistoryError(err)
		}
		defer store.Close()
		return fn(ctx, cmd, args, store)
	}
	return b
}

func (b *CommandBuilder) WithArgsValidation(minArgs, maxArgs int) *CommandBuilder {
	b.cmd.Args = func(cmd *cobra.Command, args []string) error {
		if len(args) < minArgs {
			return fmt.Errorf("requires at least %d argument(s)", minArgs)
		}
		if maxArgs >= 0 && len(args) > maxArgs {
			return fmt.Errorf("accepts at most %d argument(s), received %d", maxArgs, len(args))
		}
		return nil
	}
	return b
}

func (b *CommandBuilder) Build() *cobra.Command {
	return b.cmd
}

func openBridge(cmd *cobra.Command, seed bool) (*bridge.Bridge, func(), error) {
	ro, err := readOptions(cmd)
	if err != nil {
		return nil, nil, err
	}

	board, err := openBoard(cmd.InOrStdin(), seed)
	if err != nil {
		return nil, nil, err
	}

	opts := []bridge.Option{
		bridge.WithRich(appConfig.RichCopy()),
		bridge.WithReadOptions(ro),
		bridge.WithLogger(logger.GetLogger()),
	}

	closeFn := func() {}
	if recordHistory() {
		store, err := openHistory()
		if err != nil {
			logger.Warn().Err(err).Msg("history unavailable, continuing without it")
		} else {
			opts = append(opts, bridge.WithHistory(store))
			closeFn = func() { _ = store.Close() }
		}
	}

	return bridge.New(board, opts...), closeFn, nil
}

func openBoard(stdin io.Reader, seed bool) (clipboard.Board, error) {
	if !IsDryRun() {
		return withSpinner(clipboard.NewSystem()), nil
	}
	if !seed {
		return clipboard.NewMemory(""), nil
	}
	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return clipboard.NewMemory(""), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return clipboard.NewMemory(string(data)), nil
}

func recordHistory() bool {
	return appConfig.HistoryEnabled() && !noHistoryFlag && !IsDryRun()
}

func openHistory() (*history.Store, error) {
	return history.Open(history.DBPath(), history.Config{
		MaxEntries: appConfig.History.MaxEntries,
		TTL:        appConfig.History.TTL,
	})
}

func AddCommands(parent *cobra.Command, children ...*cobra.Command) {
	for _, child := range children {
		parent.AddCommand(child)
	}
}
