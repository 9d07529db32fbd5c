package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner represents a progress spinner. It stays silent until Delay has
// passed, so fast operations print nothing.
type Spinner struct {
	mu         sync.Mutex
	writer     io.Writer
	frames     []string
	frameIndex int
	message    string
	running    bool
	drawn      bool
	stopChan   chan struct{}
	wg         sync.WaitGroup

	Delay    time.Duration
	Interval time.Duration
}

// NewSpinner creates a new spinner with default frames
func NewSpinner(message string) *Spinner {
	return &Spinner{
		writer:   os.Stderr,
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message:  message,
		Delay:    300 * time.Millisecond,
		Interval: 100 * time.Millisecond,
	}
}

// SetWriter sets a custom writer for the spinner
func (s *Spinner) SetWriter(w io.Writer) {
	s.writer = w
}

// SetFrames sets custom spinner frames
func (s *Spinner) SetFrames(frames []string) {
	s.frames = frames
}

// Start starts the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.drawn = false
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.animate()
}

// Stop stops the spinner animation and clears its line if anything was
// drawn.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	if s.drawn {
		fmt.Fprint(s.writer, "\r\033[K")
	}
}

// SetMessage updates the spinner message
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *Spinner) animate() {
	defer s.wg.Done()

	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	s.draw()
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.draw()
		}
	}
}

func (s *Spinner) draw() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	frame := s.frames[s.frameIndex%len(s.frames)]
	message := s.message
	s.frameIndex++
	s.drawn = true
	s.mu.Unlock()

	fmt.Fprintf(s.writer, "\r%s %s", frame, message)
}

// WithSpinner runs fn behind a spinner written to w.
func WithSpinner(w io.Writer, message string, fn func() error) error {
	spinner := NewSpinner(message)
	spinner.SetWriter(w)
	spinner.Start()
	err := fn()
	spinner.Stop()
	return err
}
