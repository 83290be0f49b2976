// Package output provides formatted output utilities for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used when color is enabled.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	specStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Writer handles CLI output formatting.
type Writer struct {
	out   io.Writer
	err   io.Writer
	color bool
	quiet bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// Quiet reports whether quiet mode is on.
func (w *Writer) Quiet() bool {
	return w.quiet
}

// Out returns the stdout writer.
func (w *Writer) Out() io.Writer {
	return w.out
}

// Print writes to stdout.
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Error writes to stderr.
func (w *Writer) Error(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format, args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Success prints a success message.
func (w *Writer) Success(format string, args ...interface{}) {
	w.Println("%s", w.style(successStyle, fmt.Sprintf(format, args...)))
}

// Warning prints a warning message to stderr.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.Errorln("%s", w.style(warningStyle, "warning: "+fmt.Sprintf(format, args...)))
}

// Failure prints an error message to stderr.
func (w *Writer) Failure(format string, args ...interface{}) {
	w.Errorln("%s", w.style(failureStyle, "error: "+fmt.Sprintf(format, args...)))
}

// SpecStart announces a harness invocation.
func (w *Writer) SpecStart(desc string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.style(specStyle, fmt.Sprintf("─── %s ───", desc)))
}

// SpecDone reports how many suites an invocation produced.
func (w *Writer) SpecDone(desc string, suites int) {
	if w.quiet {
		return
	}
	noun := "suites"
	if suites == 1 {
		noun = "suite"
	}
	if w.color {
		w.Println("%s %s", w.style(successStyle, "✓"), fmt.Sprintf("%s (%d %s)", desc, suites, noun))
	} else {
		w.Println("%s done (%d %s)", desc, suites, noun)
	}
}

// SpecFailed reports a failed invocation and the output it produced.
func (w *Writer) SpecFailed(desc string, err error, output string) {
	w.Errorln("%s", w.style(failureStyle, fmt.Sprintf("%s failed: %v", desc, err)))
	output = strings.TrimRight(output, "\n")
	if output == "" {
		return
	}
	w.Errorln("Output was:")
	for _, line := range strings.Split(output, "\n") {
		w.Errorln("%s", w.style(dimStyle, "  "+line))
	}
}

// Section prints a section header.
func (w *Writer) Section(title string) {
	if w.quiet {
		return
	}
	w.Println("")
	w.Println("%s", w.style(sectionStyle, fmt.Sprintf("=== %s ===", title)))
}

// List prints a list of items.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// KeyValues prints aligned key: value lines in the given key order.
func (w *Writer) KeyValues(keys []string, values map[string]string) {
	width := 0
	for _, k := range keys {
		width = max(width, len(k))
	}
	for _, k := range keys {
		w.Println("  %-*s  %s", width+1, k+":", values[k])
	}
}

func (w *Writer) style(s lipgloss.Style, text string) string {
	if !w.color {
		return text
	}
	return s.Render(text)
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
