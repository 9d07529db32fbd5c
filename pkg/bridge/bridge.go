// Package bridge moves tables and arrays between the clipboard and Go
// values, and prints them as minimum working examples.
//
// Pasting reads the clipboard text and parses it; copying formats a value
// and writes it. Failures of either step are returned with the step that
// failed attached; nothing is retried.
package bridge

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"clipdata/pkg/array"
	"clipdata/pkg/clipboard"
	"clipdata/pkg/errors"
	"clipdata/pkg/history"
	"clipdata/pkg/logger"
	"clipdata/pkg/markup"
	"clipdata/pkg/mwe"
	"clipdata/pkg/tabular"

	"github.com/rs/zerolog"
)

// Recorder stores completed transfers. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

type Bridge struct {
	board    clipboard.Board
	recorder Recorder
	rich     bool
	readOpts tabular.ReadOptions
	log      zerolog.Logger
}

type Option func(*Bridge)

// WithHistory records every successful transfer to r.
func WithHistory(r Recorder) Option {
	return func(b *Bridge) { b.recorder = r }
}

// WithRich offers an HTML table next to the text on table copies when the
// board supports it.
func WithRich(rich bool) Option {
	return func(b *Bridge) { b.rich = rich }
}

// WithReadOptions sets the parser options used when a MWE is built from
// the clipboard.
func WithReadOptions(opts tabular.ReadOptions) Option {
	return func(b *Bridge) { b.readOpts = opts }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Bridge) { b.log = l }
}

func New(board clipboard.Board, opts ...Option) *Bridge {
	b := &Bridge{board: board, log: logger.GetLogger()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PasteText returns the raw clipboard text.
func (b *Bridge) PasteText(ctx context.Context) (string, error) {
	text, err := b.board.Read(ctx)
	if err != nil {
		return "", errors.ClipboardError(errors.ErrMsgClipboardRead, err)
	}
	b.log.Debug().Int("bytes", len(text)).Msg("read clipboard")
	return text, nil
}

// PasteTable parses the clipboard as a table with a header row.
func (b *Bridge) PasteTable(ctx context.Context, opts tabular.ReadOptions) (*tabular.Table, error) {
	text, err := b.pasteNonEmpty(ctx)
	if err != nil {
		return nil, err
	}

	t, err := tabular.ParseString(text, opts)
	if err != nil {
		return nil, parseError(err)
	}
	b.log.Debug().Int("rows", t.NumRows()).Int("cols", t.NumCols()).Msg("pasted table")

	b.record(ctx, history.Entry{Direction: history.Paste, Kind: history.KindTable, Rows: t.NumRows(), Cols: t.NumCols(), Content: text})
	return t, nil
}

// PasteArray parses the clipboard as headerless numbers or values. A single
// column comes back as a vector.
func (b *Bridge) PasteArray(ctx context.Context, opts tabular.ReadOptions) (*array.Array, error) {
	text, err := b.pasteNonEmpty(ctx)
	if err != nil {
		return nil, err
	}

	a, err := array.ParseString(text, opts)
	if err != nil {
		return nil, parseError(err)
	}
	b.log.Debug().Int("rows", a.Rows).Int("cols", a.Cols).Bool("vector", a.Vector).Msg("pasted array")

	b.record(ctx, history.Entry{Direction: history.Paste, Kind: history.KindArray, Rows: a.Rows, Cols: a.Cols, Content: text})
	return a, nil
}

// CopyTable writes t to the clipboard, tab-delimited with a header by
// default. The text written is returned.
func (b *Bridge) CopyTable(ctx context.Context, t *tabular.Table, opts tabular.WriteOptions) (string, error) {
	text, err := tabular.Format(t, opts)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ExitCodeGeneral, errors.ErrMsgWriteTable)
	}

	rw, ok := b.board.(clipboard.RichWriter)
	if b.rich && ok {
		err = rw.WriteRich(ctx, markup.HTMLTable(t), text)
	} else {
		err = b.board.Write(ctx, text)
	}
	if err != nil {
		return "", errors.ClipboardError(errors.ErrMsgClipboardWrite, err)
	}
	b.log.Debug().Int("rows", t.NumRows()).Int("cols", t.NumCols()).Bool("rich", b.rich && ok).Msg("copied table")

	b.record(ctx, history.Entry{Direction: history.Copy, Kind: history.KindTable, Rows: t.NumRows(), Cols: t.NumCols(), Content: text})
	return text, nil
}

// CopyArray writes a to the clipboard without a header.
func (b *Bridge) CopyArray(ctx context.Context, a *array.Array, opts tabular.WriteOptions) (string, error) {
	text, err := array.Format(a, opts)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ExitCodeGeneral, errors.ErrMsgWriteTable)
	}
	if err := b.board.Write(ctx, text); err != nil {
		return "", errors.ClipboardError(errors.ErrMsgClipboardWrite, err)
	}
	b.log.Debug().Int("rows", a.Rows).Int("cols", a.Cols).Msg("copied array")

	b.record(ctx, history.Entry{Direction: history.Copy, Kind: history.KindArray, Rows: a.Rows, Cols: a.Cols, Content: text})
	return text, nil
}

// CopyText writes text to the clipboard unchanged.
func (b *Bridge) CopyText(ctx context.Context, text string) error {
	if err := b.board.Write(ctx, text); err != nil {
		return errors.ClipboardError(errors.ErrMsgClipboardWrite, err)
	}
	b.record(ctx, history.Entry{Direction: history.Copy, Kind: history.KindText, Content: text})
	return nil
}

// TableMWE writes a snippet that rebuilds t. A nil t is pasted from the
// clipboard first.
func (b *Bridge) TableMWE(ctx context.Context, w io.Writer, t *tabular.Table, opts mwe.Options) error {
	if t == nil {
		var err error
		if t, err = b.PasteTable(ctx, b.readOpts); err != nil {
			return err
		}
	}
	if err := mwe.Table(w, t, opts); err != nil {
		return mweError(err)
	}
	return nil
}

// ArrayMWE writes a snippet that rebuilds a. A nil a is pasted from the
// clipboard first.
func (b *Bridge) ArrayMWE(ctx context.Context, w io.Writer, a *array.Array, opts mwe.Options) error {
	if a == nil {
		var err error
		if a, err = b.PasteArray(ctx, b.readOpts); err != nil {
			return err
		}
	}
	if err := mwe.Array(w, a, opts); err != nil {
		return mweError(err)
	}
	return nil
}

func (b *Bridge) pasteNonEmpty(ctx context.Context) (string, error) {
	text, err := b.PasteText(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.EmptyClipboardError()
	}
	return text, nil
}

// record stores e when history is enabled. Failures only warn: the
// transfer itself already happened.
func (b *Bridge) record(ctx context.Context, e history.Entry) {
	if b.recorder == nil {
		return
	}
	saved, err := b.recorder.Record(ctx, e)
	if err != nil {
		b.log.Warn().Err(err).Str("direction", string(e.Direction)).Msg("failed to record history entry")
		return
	}
	b.log.Debug().Str("id", saved.ID).Msg("recorded history entry")
}

func parseError(err error) error {
	if stderrors.Is(err, tabular.ErrEmpty) {
		return errors.EmptyClipboardError()
	}
	return errors.ParseError("clipboard", err)
}

func mweError(err error) error {
	if stderrors.Is(err, mwe.ErrInvalidName) {
		return errors.NewWithAll(errors.ExitCodeValidation, "Cannot build example", err, "Pass a valid identifier with --name.")
	}
	return errors.Wrap(err, "Cannot build example")
}
