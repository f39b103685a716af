// Copyright © 2024 The cxxlint authors

package lsp

import (
	"context"
	"strings"
	"time"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	// debounceDelay is how long an edited document must stay unchanged
	// before it is linted again.
	debounceDelay = 300 * time.Millisecond

	// diagnosticSource tags every diagnostic published by the server.
	diagnosticSource = "cxxlint"
)

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	item := params.TextDocument
	s.lintAndPublish(s.docs.Open(item.URI, int32(item.Version), item.Text))
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	uri := params.TextDocument.URI
	s.docs.Change(uri, int32(params.TextDocument.Version), fullText(params.ContentChanges))
	s.schedule(uri)
	return nil
}

// textDocumentDidSave lints right away; a run pending from the last edit
// would only repeat the work.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	uri := params.TextDocument.URI
	s.cancelPending(uri)
	if doc := s.docs.Get(uri); doc != nil {
		s.lintAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose forgets the document and clears its diagnostics in
// the client.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.cancelPending(uri)
	s.docs.Close(uri)
	s.publish(uri, nil, []protocol.Diagnostic{})
	return nil
}

// fullText returns the document text carried by a full-sync change list,
// which is the text of its last entry.
func fullText(changes []any) string {
	var text string
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			text = c.Text
		}
	}
	return text
}

// schedule lints the document at uri once no edit has arrived for
// debounceDelay, replacing any run already pending for it.
func (s *Server) schedule(uri string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if t, ok := s.pending[uri]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(debounceDelay, func() {
		defer func() { _ = recover() }() // a panicking check must not take the server down
		s.pendingMu.Lock()
		if s.pending[uri] == timer {
			delete(s.pending, uri)
		}
		s.pendingMu.Unlock()
		if doc := s.docs.Get(uri); doc != nil {
			s.lintAndPublish(doc)
		}
	})
	s.pending[uri] = timer
}

func (s *Server) cancelPending(uri string) {
	s.pendingMu.Lock()
	if t, ok := s.pending[uri]; ok {
		t.Stop()
		delete(s.pending, uri)
	}
	s.pendingMu.Unlock()
}

func (s *Server) cancelAllPending() {
	s.pendingMu.Lock()
	for uri, t := range s.pending {
		t.Stop()
		delete(s.pending, uri)
	}
	s.pendingMu.Unlock()
}

// lintAndPublish lints doc, reusing its cached result, and publishes the
// findings. A file the linter cannot handle at all is reported as a single
// error diagnostic at the top of the document.
func (s *Server) lintAndPublish(doc *Document) {
	l := s.currentLinter()
	doc.mu.Lock()
	res, err := doc.lint(context.Background(), l, s.displayPath(doc.URI))
	content, version := doc.Content, doc.Version
	doc.mu.Unlock()

	diags := []protocol.Diagnostic{}
	if err != nil {
		diags = append(diags, protocol.Diagnostic{
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr(diagnosticSource),
			Message:  err.Error(),
		})
	} else {
		for _, d := range res.Diagnostics {
			diags = append(diags, convertLintDiagnostic(content, d))
		}
	}
	v := protocol.UInteger(version) // #nosec G115 -- versions are non-negative
	s.publish(doc.URI, &v, diags)
}

func (s *Server) publish(uri string, version *protocol.UInteger, diags []protocol.Diagnostic) {
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic
// positioned within content. Notes follow the message on their own lines.
func convertLintDiagnostic(content string, d lint.Diagnostic) protocol.Diagnostic {
	msg := d.Message
	if len(d.Notes) > 0 {
		msg += "\nnote: " + strings.Join(d.Notes, "\nnote: ")
	}
	return protocol.Diagnostic{
		Range:    lintToLSPRange(content, d),
		Severity: severity(mapLintSeverity(d.Severity)),
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  msg,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
// An unset severity is shown as a warning.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
