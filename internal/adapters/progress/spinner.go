package progress

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner wraps briandowns/spinner so text can be printed between frames
type Spinner struct {
	spinner *spinner.Spinner
}

// NewSpinner creates a spinner that draws to w. It only animates when w is a terminal.
func NewSpinner(w io.Writer) *Spinner {
	opt := spinner.WithWriter(w)
	if f, ok := w.(*os.File); ok {
		opt = spinner.WithWriterFile(f)
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, opt)
	s.HideCursor = false
	return &Spinner{spinner: s}
}

// Start shows the spinner with message, or updates the message if it is already running
func (s *Spinner) Start(message string) {
	s.spinner.Suffix = " " + message
	if !s.spinner.Active() {
		s.spinner.Start()
	}
}

// Stop clears the spinner line
func (s *Spinner) Stop() {
	if s.spinner.Active() {
		s.spinner.Stop()
	}
}

