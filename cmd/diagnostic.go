// Copyright © 2024 The cxxlint authors

package cmd

import (
	"io"

	"github.com/cxxlint/cxxlint/diagnostic"
	"github.com/cxxlint/cxxlint/lint"
)

// newRenderer returns a renderer for the given --color value. Sources are
// served from memory so that stdin input and files rewritten by --fix are
// shown as they were linted.
func newRenderer(color string, sources map[string][]byte) *diagnostic.Renderer {
	mode, err := diagnostic.ParseColorMode(color)
	if err != nil {
		logger.Warnf("%v; using auto", err)
		mode = diagnostic.ColorAuto
	}
	return &diagnostic.Renderer{
		Color:        mode,
		SourceReader: diagnostic.MapSource(sources),
	}
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: mapSeverity(ld.Severity),
		Code:     ld.Analyzer,
		Message:  ld.Message,
	}
	if ld.Pos.Line > 0 {
		span := diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}
		if ld.EndPos.Line > 0 {
			span.EndLine = ld.EndPos.Line
			span.EndCol = ld.EndPos.Col
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	if ld.Fix != nil {
		d.Help = append(d.Help, "fixed by --fix: removes "+ld.Fix.String())
	}
	d.Help = append(d.Help, "to suppress: add \"// NOLINT("+ld.Analyzer+")\" at the end of this line")
	return d
}

func mapSeverity(sev lint.Severity) diagnostic.Severity {
	switch sev {
	case lint.SeverityError:
		return diagnostic.SeverityError
	case lint.SeverityInfo:
		return diagnostic.SeverityNote
	default:
		return diagnostic.SeverityWarning
	}
}

// renderLintDiagnostics renders lint diagnostics as annotated source
// snippets.
func renderLintDiagnostics(w io.Writer, r *diagnostic.Renderer, diags []lint.Diagnostic) error {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	return r.RenderAll(w, ds)
}
