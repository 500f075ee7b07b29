package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner provides an animated loading indicator. The animation runs in its
// own goroutine; the only state it shares is guarded by mu.
type Spinner struct {
	frames   []string
	interval time.Duration
	out      io.Writer
	message  string
	stop     chan struct{}
	done     chan struct{}
	mu       sync.Mutex
	running  bool
	paused   bool
	disabled bool
}

// SpinnerFrames defines different spinner animation styles
var SpinnerFrames = struct {
	Dots     []string
	Line     []string
	Ellipsis []string
}{
	Dots:     []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	Line:     []string{"-", "\\", "|", "/"},
	Ellipsis: []string{"   ", ".  ", ".. ", "..."},
}

// NewSpinner creates a spinner writing to stdout.
func NewSpinner() *Spinner {
	return NewSpinnerTo(os.Stdout, SpinnerFrames.Dots)
}

// NewSpinnerTo creates a spinner writing frames to out.
func NewSpinnerTo(out io.Writer, frames []string) *Spinner {
	if len(frames) == 0 {
		frames = SpinnerFrames.Dots
	}
	return &Spinner{
		frames:   frames,
		interval: 80 * time.Millisecond,
		out:      out,
	}
}

// Disable turns Start into a no-op, for --no-spinner.
func (s *Spinner) Disable() {
	s.Stop()
	s.mu.Lock()
	s.disabled = true
	s.mu.Unlock()
}

// Start begins the animation, or relabels it if it is already running.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	s.paused = false
	if s.running || s.disabled {
		return
	}
	s.launch()
}

// launch starts the animation goroutine. Callers hold mu.
func (s *Spinner) launch() {
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stop, s.done

	go func() {
		defer close(done)
		i := 0
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.draw(i)
		for {
			select {
			case <-stop:
				// Clear the spinner line
				fmt.Fprint(s.out, "\r\033[K")
				return
			case <-ticker.C:
				i = (i + 1) % len(s.frames)
				s.draw(i)
			}
		}
	}()
}

func (s *Spinner) draw(i int) {
	s.mu.Lock()
	msg := s.message
	s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s %s", SpinnerStyle.Render(s.frames[i]), SpinnerStyle.Render(msg+"..."))
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	s.paused = false
	s.halt()
}

// halt stops the goroutine. Callers hold mu; halt releases it.
func (s *Spinner) halt() {
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// Pause stops the animation so a prompt can use the terminal. Resume
// restarts it only if it was running when paused.
func (s *Spinner) Pause() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.paused = true
	s.halt()
}

// Resume restarts an animation stopped by Pause.
func (s *Spinner) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused || s.running || s.disabled {
		return
	}
	s.paused = false
	s.launch()
}

// UpdateMessage changes the spinner message while running
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// IsRunning returns whether the spinner is currently active
func (s *Spinner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
