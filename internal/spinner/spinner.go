// Package spinner provides a terminal spinner that reports grid-search
// progress while the model trains.
package spinner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Spinner represents a spinning progress indicator with an optional
// done/total counter and elapsed time.
type Spinner struct {
	frames  []string
	delay   time.Duration
	writer  io.Writer
	active  bool
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	message string
	done    int
	total   int
	started time.Time
	wg      sync.WaitGroup
}

// New creates a new spinner writing to writer.
// ctx allows for cancellation of the spinner goroutine.
func New(ctx context.Context, writer io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		frames:  []string{"◜", "◠", "◝", "◞", "◡", "◟"},
		delay:   100 * time.Millisecond,
		writer:  writer,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
	}
}

// Enabled reports whether a spinner should be drawn on w: only terminals get
// one, so redirected output stays clean.
func Enabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return // already running
	}

	s.active = true
	s.started = time.Now()

	s.wg.Add(1)
	go s.run()
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return // not running
	}

	s.active = false
	s.cancel()
	s.mu.Unlock()

	// wait for spinner goroutine to finish
	s.wg.Wait()

	// only clear if we're writing to a terminal (not redirected)
	if Enabled(s.writer) {
		fmt.Fprint(s.writer, "\r\033[2K")
	} else {
		fmt.Fprint(s.writer, "\r")
	}
}

// IsActive returns whether the spinner is currently running
func (s *Spinner) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// UpdateMessage updates the spinner message
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}

// SetProgress records done out of total units of work. It is safe to call
// from worker goroutines.
func (s *Spinner) SetProgress(done, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = done
	s.total = total
}

// line renders the current frame, message, progress and elapsed time.
func (s *Spinner) line(frameIndex int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	frame := s.frames[frameIndex%len(s.frames)]
	out := fmt.Sprintf("%s %s", frame, s.message)
	if s.total > 0 {
		out += fmt.Sprintf(" (%d/%d)", s.done, s.total)
	}
	return out + fmt.Sprintf(" %s", time.Since(s.started).Truncate(time.Second))
}

// run is the main spinner loop.
func (s *Spinner) run() {
	defer s.wg.Done() // signal completion when goroutine exits

	frameIndex := 0
	ticker := time.NewTicker(s.delay)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprintf(s.writer, "\r%s", s.line(frameIndex))
			frameIndex++
		}
	}
}

// isTerminal helper function checks if is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
