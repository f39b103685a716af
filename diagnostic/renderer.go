// Copyright © 2024 The cxxlint authors

package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Renderer formats diagnostics as rustc-style annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	// Each file is read at most once per Renderer.
	SourceReader func(string) ([]byte, error)

	lines map[string][]string
}

// MapSource returns a SourceReader serving in-memory file contents, such as
// sources that were read once for linting or came from stdin.
func MapSource(sources map[string][]byte) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		src, ok := sources[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, os.ErrNotExist)
		}
		return src, nil
	}
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	// Header: "warning[code]: message"
	r.writeHeader(ew, d, p)

	for _, span := range d.Spans {
		r.writeSpan(ew, span, underlineColor(d.Severity, p), p)
	}

	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}
	for _, help := range d.Help {
		ew.printf("   %s=%s help: %s\n", p.boldCyan, p.reset, help)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func severityColor(s Severity, p palette) string {
	switch s {
	case SeverityError:
		return p.boldRed
	case SeverityWarning:
		return p.yellow
	default:
		return p.boldCyan
	}
}

func underlineColor(s Severity, p palette) string {
	if s == SeverityWarning {
		return p.yellow
	}
	return severityColor(s, p)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	label := d.Severity.String()
	if d.Code != "" {
		label += "[" + d.Code + "]"
	}
	ew.printf("%s%s%s%s:%s %s%s%s\n",
		severityColor(d.Severity, p), p.bold, label, p.reset,
		p.reset,
		p.bold, d.Message, p.reset)
}

// maxSpanLines is the number of source lines shown for a multi-line span
// before the middle lines are elided.
const maxSpanLines = 4

func (r *Renderer) writeSpan(ew *errWriter, span Span, color string, p palette) {
	loc := span.File
	if span.Line > 0 {
		loc = fmt.Sprintf("%s:%d", span.File, span.Line)
		if span.Col > 0 {
			loc = fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
		}
	}
	ew.printf("  %s-->%s %s\n", p.boldBlue, p.reset, loc)

	lines := r.sourceLines(span.File)
	if span.Line <= 0 || span.Line > len(lines) {
		ew.printf("   %s|%s\n", p.boldBlue, p.reset)
		return
	}
	last := span.Line
	if span.EndLine > span.Line {
		last = min(span.EndLine, len(lines))
	}
	gutter := strings.Repeat(" ", len(strconv.Itoa(last)))
	elide := last-span.Line+1 > maxSpanLines

	ew.printf(" %s%s |%s\n", p.boldBlue, gutter, p.reset)
	for n := span.Line; n <= last; n++ {
		if elide && n > span.Line+1 && n < last {
			if n == span.Line+2 {
				ew.printf(" %s%s%s\n", p.boldBlue, strings.Repeat(".", len(gutter)+2), p.reset)
			}
			continue
		}
		source := lines[n-1]
		ew.printf(" %s%*d |%s  %s\n", p.boldBlue, len(gutter), n, p.reset, strings.ReplaceAll(source, "\t", "    "))

		from, to := underlineRange(span, n, last, source)
		if to <= from {
			continue
		}
		ew.printf(" %s%s |%s  %s%s%s%s",
			p.boldBlue, gutter, p.reset,
			strings.Repeat(" ", displayWidth(source[:from-1])),
			color, strings.Repeat("^", displayWidth(source[from-1:to-1])), p.reset)
		if n == last && span.Label != "" {
			ew.printf(" %s%s%s", color, span.Label, p.reset)
		}
		ew.print("\n")
	}
	ew.printf(" %s%s |%s\n", p.boldBlue, gutter, p.reset)
}

// underlineRange returns the 1-based columns [from, to) of source, the text
// of line n, covered by span. Lines after the first are underlined from
// their first non-blank column; a blank line yields an empty range. A
// single-line span without an end column covers the token at its start and
// is never empty.
func underlineRange(span Span, n, last int, source string) (int, int) {
	lineEnd := len(source) + 1
	var from int
	if n == span.Line {
		from = min(max(span.Col, 1), lineEnd)
	} else {
		from = len(source) - len(strings.TrimLeft(source, " \t")) + 1
	}
	to := lineEnd
	switch {
	case n < last:
	case span.Line == last && span.EndCol <= 0:
		to = detectEndCol(source, from)
	case span.EndCol > 0 && (span.EndLine <= span.Line || span.EndLine == last):
		to = min(span.EndCol, lineEnd)
	}
	if span.Line == last && to <= from {
		// Point at the start column even for an empty span.
		if from < lineEnd {
			to = from + 1
		} else {
			return from, from
		}
	}
	return from, to
}

// sourceLines returns the lines of file, reading it through SourceReader
// the first time it is asked for.
func (r *Renderer) sourceLines(file string) []string {
	if file == "" {
		return nil
	}
	if lines, ok := r.lines[file]; ok {
		return lines
	}
	reader := r.SourceReader
	if reader == nil {
		reader = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	var lines []string
	if data, err := reader(file); err == nil {
		for len(data) > 0 {
			text, rest, _ := bytes.Cut(data, []byte("\n"))
			lines = append(lines, strings.TrimSuffix(string(text), "\r"))
			data = rest
		}
	}
	if r.lines == nil {
		r.lines = make(map[string][]string)
	}
	r.lines[file] = lines
	return lines
}

// detectEndCol scans from col to the end of the identifier-like token that
// starts there and returns the 1-based column just past it.
func detectEndCol(source string, col int) int {
	end := col - 1
	for end < len(source) {
		ch, size := utf8.DecodeRuneInString(source[end:])
		if ch == ' ' || ch == '\t' || ch == '(' || ch == ')' || ch == ';' || ch == ',' {
			break
		}
		end += size
	}
	return end + 1
}

// displayWidth returns the display width of a string, expanding tabs to 4 spaces.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 4
		} else {
			w++
		}
	}
	return w
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
