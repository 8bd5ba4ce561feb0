package formatter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Braille dot spinner frames.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a solve-in-progress line with the elapsed wall time, so
// long MILP runs visibly count toward their time limit. It writes to stderr
// by default: stdout is reserved for the report tables.
type Spinner struct {
	mu      sync.Mutex
	w       io.Writer
	message string
	started time.Time
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a spinner with the given message, writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		w:       os.Stderr,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// SetMessage swaps the label on the next frame, e.g. when the pipeline
// moves from preprocessing into the solve.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Start begins the animation. Call Stop() to end it.
func (s *Spinner) Start() {
	s.started = time.Now()
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.stop:
				// Clear the spinner line.
				fmt.Fprint(s.w, "\r\033[K")
				return
			case <-ticker.C:
				s.mu.Lock()
				message := s.message
				s.mu.Unlock()
				elapsed := time.Since(s.started).Round(time.Second)
				fmt.Fprintf(s.w, "\r  %s %s %s",
					StylePurple.Render(spinnerFrames[frame%len(spinnerFrames)]),
					Dim(message),
					Dim(fmt.Sprintf("(%s)", elapsed)))
			}
		}
	}()
}

// Stop ends the animation and clears the line. Safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	select {
	case <-s.stop:
		s.mu.Unlock()
		return
	default:
		close(s.stop)
	}
	// Release the lock before waiting: the animation goroutine takes it on
	// every tick.
	s.mu.Unlock()
	<-s.done
}

// StartSpinner creates and starts a spinner; the returned function stops it.
func StartSpinner(message string) func() {
	s := NewSpinner(message)
	s.Start()
	return s.Stop
}
