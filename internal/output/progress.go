package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// writerIsTTY reports whether w is a file descriptor attached to a terminal.
// Buffers and other plain writers are never terminals.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar shows how many receipt paths have been checked.
// Example: [=========>          ]  45% 120/266 checking paths
type ProgressBar struct {
	mu          sync.Mutex
	writer      io.Writer
	description string
	width       int
	done        int
	total       int
	finished    bool
}

// NewProgress creates a progress bar writing to stderr.
func NewProgress(description string) *ProgressBar {
	return &ProgressBar{
		writer:      os.Stderr,
		description: description,
		width:       30,
	}
}

// SetWriter sets the output writer.
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Update records done out of total and redraws the bar. It has the
// signature of scanner.Scanner progress callbacks.
func (p *ProgressBar) Update(done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if total < 0 {
		total = 0
	}
	if done > total {
		done = total
	}
	p.done, p.total = done, total

	if writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "\r%s", p.line())
		return
	}
	// Non-TTY writers only get the final line.
	if p.done == p.total && !p.finished {
		p.finished = true
		fmt.Fprintln(p.writer, p.line())
	}
}

// Finish moves past the bar. On a terminal this ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writerIsTTY(p.writer) {
		fmt.Fprintln(p.writer)
		return
	}
	if !p.finished {
		p.finished = true
		p.done = p.total
		fmt.Fprintln(p.writer, p.line())
	}
}

// line renders the bar; the lock must be held.
func (p *ProgressBar) line() string {
	percentage, filled := 100, p.width
	if p.total > 0 {
		percentage = p.done * 100 / p.total
		filled = p.done * p.width / p.total
	}

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < p.width; i++ {
		switch {
		case i < filled-1:
			bar.WriteString("=")
		case i == filled-1:
			bar.WriteString(">")
		default:
			bar.WriteString(" ")
		}
	}
	bar.WriteString("]")

	return fmt.Sprintf("%s %3d%% %d/%d %s", bar.String(), percentage, p.done, p.total, p.description)
}

// Spinner animates while a pkgutil invocation is in flight.
// Example: |  Reading receipt com.amazon.Kindle (28s remaining)
type Spinner struct {
	mu        sync.Mutex
	writer    io.Writer
	message   string
	chars     []string
	timeout   time.Duration
	startTime time.Time
	running   bool
	ticker    *time.Ticker
	done      chan struct{}
}

// NewSpinner creates a spinner writing to stderr.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		writer:  os.Stderr,
		message: message,
		chars:   []string{"|", "/", "-", "\\"},
	}
}

// WithTimeout makes the spinner count down from timeout. It must be called
// before Start.
func (s *Spinner) WithTimeout(timeout time.Duration) *Spinner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = timeout
	return s
}

// SetWriter sets the output writer.
func (s *Spinner) SetWriter(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer = w
}

// Start begins the animation. Non-TTY writers get the message once and no
// goroutine is started.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.startTime = time.Now()

	if !writerIsTTY(s.writer) {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
		return
	}

	s.done = make(chan struct{})
	s.ticker = time.NewTicker(100 * time.Millisecond)
	go s.spin(s.ticker, s.done)
}

func (s *Spinner) spin(ticker *time.Ticker, done <-chan struct{}) {
	idx := 0
	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			if s.running {
				fmt.Fprintf(s.writer, "\r%s  %s", s.chars[idx], s.formatMessage())
				idx = (idx + 1) % len(s.chars)
			}
			s.mu.Unlock()
		case <-done:
			return
		}
	}
}

// formatMessage returns the message with remaining or elapsed time; the
// lock must be held.
func (s *Spinner) formatMessage() string {
	elapsed := time.Since(s.startTime)
	if s.timeout > 0 {
		remaining := s.timeout - elapsed
		if remaining < 0 {
			remaining = 0
		}
		return fmt.Sprintf("%s (%ds remaining)", s.message, int(remaining.Seconds()))
	}
	return fmt.Sprintf("%s (%ds elapsed)", s.message, int(elapsed.Seconds()))
}

// String returns the message with its current timing suffix.
func (s *Spinner) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formatMessage()
}

// Stop ends the animation and clears the line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.formatMessage())+4))
}
