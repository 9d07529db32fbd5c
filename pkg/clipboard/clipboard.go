// Package clipboard reads and writes the system clipboard. Plain text goes
// through the platform helper (pbcopy, xclip, xsel, wl-copy, Windows API).
// On Linux/Wayland, tables can additionally be offered as text/html so that
// spreadsheets paste them as cells while text editors still receive TSV.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	atotto "github.com/atotto/clipboard"
)

var ErrUnsupported = fmt.Errorf("clipboard is not supported on %s (install xclip, xsel or wl-clipboard)", runtime.GOOS)

// Board is a clipboard that holds plain text.
type Board interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, text string) error
}

// RichWriter is implemented by boards that can offer HTML alongside the
// plain-text form.
type RichWriter interface {
	WriteRich(ctx context.Context, html, plain string) error
}

// System is the OS clipboard.
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (s *System) Read(ctx context.Context) (string, error) {
	if atotto.Unsupported {
		return "", ErrUnsupported
	}
	return run(ctx, atotto.ReadAll)
}

func (s *System) Write(ctx context.Context, text string) error {
	if atotto.Unsupported {
		return ErrUnsupported
	}
	_, err := run(ctx, func() (string, error) {
		return "", atotto.WriteAll(text)
	})
	return err
}

// WriteRich offers html and plain together where the platform allows it.
func (s *System) WriteRich(ctx context.Context, html, plain string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteMultiFormat(html, plain)
}

// run executes a blocking helper call and gives up when ctx is done. The
// helper process is left to finish on its own.
func run(ctx context.Context, fn func() (string, error)) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := fn()
		done <- result{text, err}
	}()
	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	html string
	// Err, when set, is returned by every call.
	Err error
}

func NewMemory(initial string) *Memory {
	return &Memory{text: initial}
}

func (m *Memory) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.text, nil
}

func (m *Memory) Write(ctx context.Context, text string) error {
	return m.WriteRich(ctx, "", text)
}

func (m *Memory) WriteRich(ctx context.Context, html, plain string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text, m.html = plain, html
	return nil
}

// HTML returns the rich form of the last write, if any.
func (m *Memory) HTML() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.html
}

// IsUnsupported reports whether err means no clipboard helper is available.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}
