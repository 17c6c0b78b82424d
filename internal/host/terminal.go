package host

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Terminal is the Host used when tools run from the command line. Progress
// is drawn on a single rewritten line, messages go to stdout, and failures
// go to a structured log carrying a per-run correlation ID.
type Terminal struct {
	out    io.Writer
	log    zerolog.Logger
	runID  string
	quiet  bool
	cancel atomic.Bool
	active bool
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithOutput redirects user-facing output (progress and messages).
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) { t.out = w }
}

// WithLogger replaces the diagnostic logger.
func WithLogger(l zerolog.Logger) TerminalOption {
	return func(t *Terminal) { t.log = l }
}

// Quiet suppresses progress output. Messages and the error log still work.
func Quiet() TerminalOption {
	return func(t *Terminal) { t.quiet = true }
}

// NewTerminal returns a Terminal writing to stdout/stderr.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		out:   os.Stdout,
		log:   zerolog.New(os.Stderr).With().Timestamp().Logger(),
		runID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Cancel flips the cancellation flag. Safe to call from the signal-handler
// goroutine while a tool is mid-loop.
func (t *Terminal) Cancel() { t.cancel.Store(true) }

// CancelRequested implements Host.
func (t *Terminal) CancelRequested() bool { return t.cancel.Load() }

// ReportProgress implements Host. Percent 0 clears the progress line once
// something has been drawn; anything else rewrites it in place.
func (t *Terminal) ReportProgress(label string, percent int) {
	if t.quiet {
		return
	}
	if percent <= 0 {
		if t.active {
			fmt.Fprintln(t.out)
			t.active = false
		}
		return
	}
	fmt.Fprintf(t.out, "\r%s: %d%%", label, percent)
	t.active = true
}

// ShowMessage implements Host.
func (t *Terminal) ShowMessage(text string) {
	if t.active {
		fmt.Fprintln(t.out)
		t.active = false
	}
	fmt.Fprintln(t.out, text)
}

// LogError implements Host.
func (t *Terminal) LogError(tool string, err error) {
	t.log.Error().Str("tool", tool).Str("run", t.runID).Err(err).Msg("tool failed")
}
