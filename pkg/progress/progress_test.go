package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_SilentWhenFast(t *testing.T) {
	var out syncBuffer
	err := WithSpinner(&out, "Reading clipboard", func() error { return nil })
	if err != nil {
		t.Fatalf("WithSpinner() error = %v", err)
	}
	if out.String() != "" {
		t.Errorf("fast operation drew %q, want nothing", out.String())
	}
}

func TestSpinner_DrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := NewSpinner("Reading clipboard")
	s.SetWriter(&out)
	s.SetFrames([]string{"-"})
	s.Delay = 0
	s.Interval = 5 * time.Millisecond

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.SetMessage("Still reading")
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "\r- Reading clipboard") {
		t.Errorf("output %q missing first message", got)
	}
	if !strings.Contains(got, "\r- Still reading") {
		t.Errorf("output %q missing updated message", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("output %q does not end by clearing the line", got)
	}

	// Stop twice is a no-op.
	s.Stop()
}

func TestWithSpinner_ReturnsError(t *testing.T) {
	want := errors.New("boom")
	if err := WithSpinner(&syncBuffer{}, "x", func() error { return want }); err != want {
		t.Errorf("WithSpinner() error = %v, want %v", err, want)
	}
}
