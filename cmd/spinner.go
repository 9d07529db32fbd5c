package cmd

import (
	"context"
	"io"
	"os"

	"clipdata/pkg/clipboard"
	"clipdata/pkg/progress"

	"github.com/mattn/go-isatty"
)

// spinnerBoard shows a spinner on stderr while a slow clipboard helper
// (xclip waiting on a selection owner, for instance) blocks.
type spinnerBoard struct {
	inner *clipboard.System
	out   io.Writer
}

func withSpinner(board *clipboard.System) clipboard.Board {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return board
	}
	return &spinnerBoard{inner: board, out: os.Stderr}
}

func (s *spinnerBoard) Read(ctx context.Context) (string, error) {
	var text string
	err := progress.WithSpinner(s.out, "Reading clipboard…", func() error {
		var err error
		text, err = s.inner.Read(ctx)
		return err
	})
	return text, err
}

func (s *spinnerBoard) Write(ctx context.Context, text string) error {
	return progress.WithSpinner(s.out, "Writing clipboard…", func() error {
		return s.inner.Write(ctx, text)
	})
}

func (s *spinnerBoard) WriteRich(ctx context.Context, html, plain string) error {
	return progress.WithSpinner(s.out, "Writing clipboard…", func() error {
		return s.inner.WriteRich(ctx, html, plain)
	})
}
