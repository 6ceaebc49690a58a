package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Formatter renders diagnostics with source snippets in a Rust-style layout.
// Source files are cached so rendering several diagnostics from the same file
// reads it once.
type Formatter struct {
	out         io.Writer
	color       bool
	sourceCache map[string][]string
}

// NewFormatter builds a formatter writing to out. Color is enabled when out
// is a terminal.
func NewFormatter(out io.Writer) *Formatter {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Formatter{out: out, color: color, sourceCache: make(map[string][]string)}
}

// SetColor overrides TTY detection, for --color=always/never style flags.
func (f *Formatter) SetColor(enabled bool) {
	f.color = enabled
}

const (
	ansiReset   = "\x1b[0m"
	ansiBold    = "\x1b[1m"
	ansiRed     = "\x1b[1;31m"
	ansiGreen   = "\x1b[32m"
	ansiCyan    = "\x1b[36m"
	ansiFaint   = "\x1b[2m"
)

func (f *Formatter) paint(color, s string) string {
	if !f.color {
		return s
	}
	return color + s + ansiReset
}

func (f *Formatter) sourceLines(file string) []string {
	if lines, ok := f.sourceCache[file]; ok {
		return lines
	}
	data, err := os.ReadFile(file)
	if err != nil {
		f.sourceCache[file] = nil
		return nil
	}
	lines := strings.Split(string(data), "\n")
	f.sourceCache[file] = lines
	return lines
}

// Print renders one diagnostic, including its related diagnostics.
func (f *Formatter) Print(d *Diagnostic) {
	fmt.Fprintf(f.out, "%s: %s\n", f.paint(ansiRed, fmt.Sprintf("error[%s]", d.Code)), d.Code.Title())
	fmt.Fprintf(f.out, "  %s\n", f.paint(ansiBold, d.Message))
	fmt.Fprintf(f.out, "  %s %s\n", f.paint(ansiCyan, "-->"), d.Span)

	f.printSnippet(d.Span)

	if d.Context != "" {
		fmt.Fprintf(f.out, "  %s\n", f.paint(ansiCyan, "|"))
		fmt.Fprintf(f.out, "  %s %s\n", f.paint(ansiCyan, "|"), d.Context)
	}

	for _, s := range d.Suggestions {
		fmt.Fprintf(f.out, "  %s\n", f.paint(ansiCyan, "|"))
		fmt.Fprintf(f.out, "  %s: %s\n", f.paint(ansiGreen, "help"), s.Message)
		if s.CodeExample != "" {
			fmt.Fprintf(f.out, "  %s\n", f.paint(ansiCyan, "|"))
			for _, line := range strings.Split(s.CodeExample, "\n") {
				fmt.Fprintf(f.out, "  %s     %s\n", f.paint(ansiCyan, "|"), line)
			}
		}
		if s.HelpLink != "" {
			fmt.Fprintf(f.out, "  %s     %s\n", f.paint(ansiCyan, "|"), f.paint(ansiFaint, "See: "+s.HelpLink))
		}
	}

	for _, related := range d.Related {
		fmt.Fprintln(f.out)
		f.Print(related)
	}
}

// PrintAll renders a slice of diagnostics separated by blank lines.
func (f *Formatter) PrintAll(ds []*Diagnostic) {
	for i, d := range ds {
		if i > 0 {
			fmt.Fprintln(f.out)
		}
		f.Print(d)
	}
}

func (f *Formatter) printSnippet(span Span) {
	lines := f.sourceLines(span.File)
	if lines == nil || span.Line < 1 || span.Line > len(lines) {
		fmt.Fprintf(f.out, "  %s\n", f.paint(ansiCyan, "|"))
		return
	}

	lineText := lines[span.Line-1]
	lineNum := fmt.Sprintf("%d", span.Line)
	gutter := strings.Repeat(" ", len(lineNum))

	fmt.Fprintf(f.out, "  %s\n", f.paint(ansiCyan, gutter+" |"))
	fmt.Fprintf(f.out, "  %s %s\n", f.paint(ansiCyan, lineNum+" |"), lineText)

	caretLen := span.Length
	if caretLen < 1 {
		caretLen = 1
	}
	pad := span.Column - 1
	if pad < 0 {
		pad = 0
	}
	carets := strings.Repeat(" ", pad) + strings.Repeat("^", caretLen)
	fmt.Fprintf(f.out, "  %s %s\n", f.paint(ansiCyan, gutter+" |"), f.paint(ansiRed, carets))
}
