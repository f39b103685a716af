// Copyright © 2024 The cxxlint authors

package lsp

import (
	"context"
	"fmt"
	"strings"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/cxxlint/cxxlint/rewrite"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCodeAction handles the textDocument/codeAction request.
// Diagnostics carrying a fix get a quick-fix that deletes the offending
// text, every diagnostic can be suppressed with a NOLINTNEXTLINE comment,
// and a source.fixAll action applies all fixes in the document at once.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	wantQuickFix := wantsKind(params.Context.Only, protocol.CodeActionKindQuickFix)
	wantFixAll := len(params.Context.Only) > 0 &&
		wantsKind(params.Context.Only, protocol.CodeActionKindSourceFixAll)
	if !wantQuickFix && !wantFixAll {
		return nil, nil
	}

	l := s.currentLinter()
	doc.mu.Lock()
	res, err := doc.lint(context.Background(), l, s.displayPath(doc.URI))
	content := doc.Content
	doc.mu.Unlock()
	if err != nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	var actions []protocol.CodeAction

	if wantQuickFix {
		for _, diag := range params.Context.Diagnostics {
			// Only handle diagnostics from our own source.
			if diag.Source == nil || *diag.Source != diagnosticSource || diag.Code == nil {
				continue
			}
			analyzer := fmt.Sprintf("%v", diag.Code.Value)
			if analyzer == "" {
				continue
			}
			if d := matchDiagnostic(res, content, analyzer, diag.Range); d != nil && d.Fix != nil {
				actions = append(actions, fixAction(uri, diag, content, *d.Fix))
			}
			actions = append(actions, suppressLintAction(uri, diag, analyzer, content))
		}
	}

	if wantFixAll {
		if a, ok := fixAllAction(uri, res, content); ok {
			actions = append(actions, a)
		}
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// matchDiagnostic finds the lint finding that produced an LSP diagnostic.
func matchDiagnostic(res *lint.Result, content, analyzer string, rng protocol.Range) *lint.Diagnostic {
	if res == nil {
		return nil
	}
	for i := range res.Diagnostics {
		d := &res.Diagnostics[i]
		if d.Analyzer != analyzer {
			continue
		}
		if lintToLSPRange(content, *d).Start == rng.Start {
			return d
		}
	}
	return nil
}

// fixAction creates a quick-fix that deletes the byte range of edit.
func fixAction(uri string, diag protocol.Diagnostic, content string, edit rewrite.Edit) protocol.CodeAction {
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       fixTitle(edit),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		IsPreferred: boolPtr(true),
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {deleteEdit(content, edit)},
			},
		},
	}
}

// fixAllAction bundles every fix of a lint result into one workspace edit.
// Fix ranges never overlap, so the edits can be sent as a single batch
// against the unmodified document.
func fixAllAction(uri string, res *lint.Result, content string) (protocol.CodeAction, bool) {
	var edits []protocol.TextEdit
	for _, d := range res.Diagnostics {
		if d.Fix != nil {
			edits = append(edits, deleteEdit(content, *d.Fix))
		}
	}
	if len(edits) == 0 {
		return protocol.CodeAction{}, false
	}
	kind := protocol.CodeActionKindSourceFixAll
	return protocol.CodeAction{
		Title: "Apply all cxxlint fixes",
		Kind:  &kind,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{uri: edits},
		},
	}, true
}

func deleteEdit(content string, edit rewrite.Edit) protocol.TextEdit {
	return protocol.TextEdit{
		Range: protocol.Range{
			Start: offsetToPosition(content, edit.Start),
			End:   offsetToPosition(content, edit.End),
		},
		NewText: "",
	}
}

func fixTitle(edit rewrite.Edit) string {
	if edit.OldText == "" {
		return "Remove offending code"
	}
	return fmt.Sprintf("Remove '%s'", edit.OldText)
}

// suppressLintAction creates a code action that inserts a
// "// NOLINTNEXTLINE(analyzer)" comment above the diagnostic line, indented
// like that line.
func suppressLintAction(uri string, diag protocol.Diagnostic, analyzer, content string) protocol.CodeAction {
	line := int(diag.Range.Start.Line)
	lines := strings.Split(content, "\n")
	indent := ""
	if line >= 0 && line < len(lines) {
		text := lines[line]
		indent = text[:len(text)-len(strings.TrimLeft(text, " \t"))]
	}

	kind := protocol.CodeActionKindQuickFix
	insertPos := protocol.Position{Line: diag.Range.Start.Line, Character: 0}
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Suppress with // NOLINTNEXTLINE(%s)", analyzer),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{diag},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {
					{
						Range:   protocol.Range{Start: insertPos, End: insertPos},
						NewText: indent + "// NOLINTNEXTLINE(" + analyzer + ")\n",
					},
				},
			},
		},
	}
}

// wantsKind reports whether a code action of the given kind was requested.
// An empty filter accepts every kind; a filter entry also matches its
// sub-kinds, so "source" accepts "source.fixAll".
func wantsKind(only []protocol.CodeActionKind, kind protocol.CodeActionKind) bool {
	if len(only) == 0 {
		return true
	}
	for _, k := range only {
		if k == kind || strings.HasPrefix(kind, k+".") {
			return true
		}
	}
	return false
}
