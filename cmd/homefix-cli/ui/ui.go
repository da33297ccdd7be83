// Package ui provides terminal output helpers for the Homefix CLI.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// UI writes human-readable or JSON output.
type UI struct {
	out      io.Writer
	errOut   io.Writer
	jsonMode bool
}

// New creates a UI. noColor disables ANSI colors globally.
func New(out io.Writer, jsonMode, noColor bool) *UI {
	if noColor {
		color.NoColor = true
	}
	return &UI{out: out, errOut: os.Stderr, jsonMode: jsonMode}
}

// JSONMode reports whether output is JSON.
func (u *UI) JSONMode() bool {
	return u.jsonMode
}

// JSON writes v as indented JSON.
func (u *UI) JSON(v interface{}) error {
	enc := json.NewEncoder(u.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// Success prints a success message.
func (u *UI) Success(format string, args ...interface{}) {
	if u.jsonMode {
		return
	}
	color.New(color.FgGreen).Fprintf(u.out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message to stderr.
func (u *UI) Error(format string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(u.errOut, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (u *UI) Warning(format string, args ...interface{}) {
	if u.jsonMode {
		return
	}
	color.New(color.FgYellow).Fprintf(u.out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (u *UI) Info(format string, args ...interface{}) {
	if u.jsonMode {
		return
	}
	color.New(color.FgCyan).Fprintf(u.out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// Section prints a section header.
func (u *UI) Section(title string) {
	if u.jsonMode {
		return
	}
	fmt.Fprintln(u.out)
	color.New(color.FgMagenta, color.Bold).Fprintf(u.out, "━━━ %s ━━━\n", title)
}

// KeyValue prints a key-value pair.
func (u *UI) KeyValue(key string, value interface{}) {
	if u.jsonMode {
		return
	}
	color.New(color.FgYellow).Fprintf(u.out, "  %s: ", key)
	fmt.Fprintf(u.out, "%v\n", value)
}

// Line prints a plain line.
func (u *UI) Line(format string, args ...interface{}) {
	if u.jsonMode {
		return
	}
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Spinner wraps a spinner for indeterminate progress. It is a no-op when
// output is JSON or stderr is not a terminal.
type Spinner struct {
	spinner *spinner.Spinner
}

// Spinner creates a spinner with the given message.
func (u *UI) Spinner(message string) *Spinner {
	if u.jsonMode || !IsTerminal(os.Stderr) {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return &Spinner{spinner: s}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	if s.spinner != nil {
		s.spinner.Start()
	}
}

// Stop stops the spinner animation and clears the line.
func (s *Spinner) Stop() {
	if s.spinner != nil {
		s.spinner.Stop()
	}
}

// ProgressBar wraps a progress bar for counted work.
type ProgressBar struct {
	bar *progressbar.ProgressBar
}

// ProgressBar creates a progress bar with the given total and description.
func (u *UI) ProgressBar(total int, description string) *ProgressBar {
	if u.jsonMode || !IsTerminal(os.Stderr) {
		return &ProgressBar{}
	}
	bar := progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
	return &ProgressBar{bar: bar}
}

// Set moves the bar to current out of total, adjusting the total if it changed.
func (p *ProgressBar) Set(current, total int) {
	if p.bar == nil {
		return
	}
	if int64(total) != p.bar.GetMax64() {
		p.bar.ChangeMax(total)
	}
	_ = p.bar.Set(current)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
