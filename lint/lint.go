// Copyright © 2024 The cxxlint authors

// Package lint provides style checks for C++ source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that is dispatched on the node kinds it cares about and reports diagnostics.
// The framework handles parsing, walking the syntax tree, collecting results,
// applying auto-fixes and formatting output.
//
// Analyzers are composable and extensible. Embedders can define custom
// checks alongside the built-in set.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cxxlint/cxxlint/astutil"
	"github.com/cxxlint/cxxlint/rewrite"
	"github.com/cxxlint/cxxlint/syntax"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name used when Linter.Tracer is nil.
const TracerName = "github.com/cxxlint/cxxlint/lint"

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the severity as a JSON string.
// An unset severity (zero value) is marshaled as "warning".
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		return json.Marshal("warning")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes a severity from a JSON string.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "error":
		*s = SeverityError
	case "warning":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	default:
		return fmt.Errorf("unknown severity: %q", str)
	}
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "goto-usage"). It is
	// the category of every diagnostic the check reports.
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Kinds lists the node kinds the analyzer is dispatched on.
	Kinds []syntax.Kind

	// Run examines a single node of one of the analyzer's Kinds. It should
	// call pass.Report() for each finding.
	Run func(pass *Pass, node *tree_sitter.Node) error

	// Fix is optional. When set it returns the byte range to delete for a
	// node on which Run reported a finding.
	Fix func(pass *Pass, node *tree_sitter.Node) (rewrite.Edit, bool)
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Source is the original, unmodified source text.
	Source []byte

	// diagnostics collects findings reported for the current node.
	diagnostics []Diagnostic
}

// Text returns the source text spanned by n. It reports false when the span
// cannot be decoded, in which case the check should skip the node.
func (p *Pass) Text(n *tree_sitter.Node) (string, bool) {
	return syntax.Text(n, p.Source)
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	if d.Pos.File == "" {
		d.Pos.File = p.Filename
	}
	if d.EndPos.File == "" && d.EndPos.Line > 0 {
		d.EndPos.File = p.Filename
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic spanning a node.
func (p *Pass) Reportf(n *tree_sitter.Node, format string, args ...interface{}) {
	d := Diagnostic{
		Message: fmt.Sprintf(format, args...),
	}
	if n != nil {
		d.Pos = StartOf(n)
		d.EndPos = EndOf(n)
	}
	p.Report(d)
}

func (p *Pass) drain() []Diagnostic {
	found := p.diagnostics
	p.diagnostics = nil
	return found
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the start of the problem.
	Pos Position `json:"pos"`

	// EndPos is the end of the offending span, if known.
	EndPos Position `json:"end_pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`

	// Fix is the deletion applied to the rewritten source for this
	// problem, in original source offsets.
	Fix *rewrite.Edit `json:"fix,omitempty"`
}

// Line returns the 1-based source line of the diagnostic.
func (d Diagnostic) Line() int {
	return d.Pos.Line
}

// Position identifies a location in source code.
type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Col    int    `json:"col,omitempty"`
	Offset int    `json:"offset"`
}

// StartOf returns the position of the first byte of n.
func StartOf(n *tree_sitter.Node) Position {
	return Position{Line: syntax.Line(n), Col: syntax.Column(n), Offset: int(n.StartByte())}
}

// EndOf returns the position just past the last byte of n.
func EndOf(n *tree_sitter.Node) Position {
	return Position{Line: syntax.EndLine(n), Col: syntax.EndColumn(n), Offset: int(n.EndByte())}
}

// String returns the position in file:line format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Result is the outcome of linting one file.
type Result struct {
	// Filename is the name the file was linted under.
	Filename string `json:"file"`

	// Diagnostics are ordered by the pre-order position of the node that
	// triggered them, then by analyzer order.
	Diagnostics []Diagnostic `json:"diagnostics"`

	// Source is the rewritten source with every applied fix removed. It is
	// identical to the input when Fixes is zero.
	Source []byte `json:"-"`

	// Fixes counts the deletions applied to Source.
	Fixes int `json:"fixes"`
}

// Changed reports whether any fix was applied.
func (r *Result) Changed() bool {
	return r.Fixes > 0
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Tracer records one span per linted file. When nil the tracer of the
	// global provider is used.
	Tracer trace.Tracer
}

// LintFile parses and analyzes a single source file.
func (l *Linter) LintFile(source []byte, filename string) (*Result, error) {
	return l.LintFileContext(context.Background(), source, filename)
}

// LintFileContext is LintFile with a caller supplied context, which carries
// the parent span and cancels the walk.
func (l *Linter) LintFileContext(ctx context.Context, source []byte, filename string) (*Result, error) {
	tree, err := syntax.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	defer tree.Close()
	return l.LintTree(ctx, tree, filename)
}

// LintTree analyzes an already parsed file. The tree is only read and may be
// linted again afterwards.
func (l *Linter) LintTree(ctx context.Context, tree *syntax.Tree, filename string) (_ *Result, err error) {
	ctx, span := l.tracer().Start(ctx, "lint.file",
		trace.WithAttributes(semconv.CodeFilepath(filename)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if tree.Root() == nil {
		return nil, fmt.Errorf("%s: %w", filename, syntax.ErrNoTree)
	}
	res, err := l.run(ctx, tree, filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	span.SetAttributes(
		attribute.Int("lint.diagnostics", len(res.Diagnostics)),
		attribute.Int("lint.fixes", res.Fixes),
	)
	return res, nil
}

func (l *Linter) tracer() trace.Tracer {
	if l.Tracer != nil {
		return l.Tracer
	}
	return otel.GetTracerProvider().Tracer(TracerName)
}

// run walks the tree once in pre-order. At each node every analyzer
// registered for the node's kind runs in table order; its findings are
// filtered through NOLINT directives and, for fix-bearing analyzers, the
// fix is applied to the working copy before the walk moves on.
func (l *Linter) run(ctx context.Context, tree *syntax.Tree, filename string) (*Result, error) {
	dispatch := make(map[syntax.Kind][]*Pass)
	for _, a := range l.Analyzers {
		pass := &Pass{Analyzer: a, Filename: filename, Source: tree.Source}
		for _, k := range a.Kinds {
			dispatch[k] = append(dispatch[k], pass)
		}
	}
	nolint := scanSuppressions(tree)
	buf := rewrite.New(tree.Source)
	res := &Result{Filename: filename}

	err := astutil.Walk(tree.Root(), func(node *tree_sitter.Node, _ int) error {
		passes := dispatch[syntax.KindOf(node)]
		if len(passes) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, pass := range passes {
			if err := pass.Analyzer.Run(pass, node); err != nil {
				return fmt.Errorf("analyzer %s: %w", pass.Analyzer.Name, err)
			}
			found := nolint.filter(pass.drain())
			if len(found) > 0 && pass.Analyzer.Fix != nil {
				applyFix(pass, node, buf, found)
			}
			res.Diagnostics = append(res.Diagnostics, found...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Source = buf.Bytes()
	res.Fixes = len(buf.Edits())
	return res, nil
}

// applyFix deletes the analyzer's fix range for node and attaches it to the
// first finding. A fix that cannot be applied is reported as a note and the
// source is left untouched.
func applyFix(pass *Pass, node *tree_sitter.Node, buf *rewrite.Buffer, found []Diagnostic) {
	edit, ok := pass.Analyzer.Fix(pass, node)
	if !ok {
		return
	}
	if err := buf.Delete(edit); err != nil {
		found[0].Notes = append(found[0].Notes, "fix not applied: "+err.Error())
		return
	}
	found[0].Fix = &edit
}

// FormatText writes diagnostics in the plain report format: one
// "Issue: <message>" line per diagnostic or a single "No issues found".
func FormatText(w io.Writer, diags []Diagnostic) {
	if len(diags) == 0 {
		fmt.Fprintln(w, "No issues found") //nolint:errcheck // best-effort output to writer
		return
	}
	for _, d := range diags {
		fmt.Fprintf(w, "Issue: %s\n", d.Message) //nolint:errcheck // best-effort output to writer
	}
}

// FormatVet writes diagnostics in go vet text format.
func FormatVet(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}
