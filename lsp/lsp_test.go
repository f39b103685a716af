// Copyright © 2024 The cxxlint authors

package lsp

import (
	"testing"
	"time"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const scenarioSource = "using namespace std;\nint main() {\n  goto end;\nend:\n  return 0;\n}\n"

// openDoc opens a document in the test server and returns it.
func openDoc(s *Server, uri, content string) *Document {
	return s.docs.Open(uri, 1, content)
}

// mockContext returns a minimal glsp.Context for testing.
func mockContext() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {},
	}
}

// capturingContext returns a context that captures published diagnostics.
func capturingContext() (*glsp.Context, *[]*protocol.PublishDiagnosticsParams) {
	var captured []*protocol.PublishDiagnosticsParams
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				captured = append(captured, params.(*protocol.PublishDiagnosticsParams))
			}
		},
	}
	return ctx, &captured
}

func diagCodes(diags []protocol.Diagnostic) []string {
	codes := make([]string, 0, len(diags))
	for _, d := range diags {
		if d.Code != nil {
			codes = append(codes, d.Code.Value.(string))
		}
	}
	return codes
}

// --- Position conversion tests ---

func TestOffsetToPosition(t *testing.T) {
	tests := []struct {
		name    string
		content string
		offset  int
		line    protocol.UInteger
		char    protocol.UInteger
	}{
		{"start", "ab\ncd", 0, 0, 0},
		{"first line", "ab\ncd", 2, 0, 2},
		{"second line", "ab\ncd", 4, 1, 1},
		{"past end", "ab\ncd", 100, 1, 2},
		{"negative", "ab", -3, 0, 0},
		{"two byte rune", "é=1", 2, 0, 1},
		{"astral rune", "😀x", 4, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := offsetToPosition(tt.content, tt.offset)
			assert.Equal(t, tt.line, pos.Line)
			assert.Equal(t, tt.char, pos.Character)
		})
	}
}

func TestPositionToOffset(t *testing.T) {
	content := "int a;\n😀 b;\nc"
	for _, off := range []int{0, 3, 7, 11, 12, 15, len(content)} {
		pos := offsetToPosition(content, off)
		assert.Equal(t, off, positionToOffset(content, pos), "offset %d via %v", off, pos)
	}
	assert.Equal(t, 6, positionToOffset(content, protocol.Position{Line: 0, Character: 99}))
	assert.Equal(t, len(content), positionToOffset(content, protocol.Position{Line: 9}))
}

func TestLintToLSPRange(t *testing.T) {
	content := "int x;\nint main() {}\n"
	d := lint.Diagnostic{
		Pos:    lint.Position{Line: 2, Col: 5, Offset: 11},
		EndPos: lint.Position{Line: 2, Col: 9, Offset: 15},
	}
	rng := lintToLSPRange(content, d)
	assert.Equal(t, protocol.Position{Line: 1, Character: 4}, rng.Start)
	assert.Equal(t, protocol.Position{Line: 1, Character: 8}, rng.End)

	d.EndPos = lint.Position{}
	rng = lintToLSPRange(content, d)
	assert.Equal(t, rng.Start, rng.End, "missing end gives a zero-width range")
}

func TestURIConversion(t *testing.T) {
	assert.Equal(t, "/src/a.cpp", uriToPath("file:///src/a.cpp"))
	assert.Equal(t, "untitled:1", uriToPath("untitled:1"))
	assert.Equal(t, "file:///src/a.cpp", pathToURI("/src/a.cpp"))
	assert.Equal(t, "rel/a.cpp", pathToURI("rel/a.cpp"))
}

// --- Document store tests ---

func TestDocumentStore(t *testing.T) {
	store := NewDocumentStore()
	uri := "file:///test/a.cpp"

	doc := store.Open(uri, 1, "int x;")
	require.NotNil(t, doc)
	assert.Equal(t, "int x;", doc.Content)
	assert.Same(t, doc, store.Get(uri))
	assert.Len(t, store.All(), 1)

	doc.result = &lint.Result{}
	changed := store.Change(uri, 2, "int y;")
	assert.Same(t, doc, changed)
	assert.Equal(t, int32(2), changed.Version)
	assert.Equal(t, "int y;", changed.Content)
	assert.Nil(t, changed.result, "change drops the cached result")

	store.Close(uri)
	assert.Nil(t, store.Get(uri))
	assert.Empty(t, store.All())

	// Changing an unknown document creates it.
	created := store.Change("file:///test/b.cpp", 1, "int z;")
	assert.Equal(t, "int z;", created.Content)
}

// --- Lifecycle tests ---

func TestInitialize(t *testing.T) {
	s := New()
	rootURI := "file:///workspace"
	result, err := s.initialize(mockContext(), &protocol.InitializeParams{RootURI: &rootURI})
	require.NoError(t, err)

	initRes, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, initRes.ServerInfo)
	assert.Equal(t, serverName, initRes.ServerInfo.Name)
	require.NotNil(t, initRes.ServerInfo.Version)
	assert.Equal(t, Version, *initRes.ServerInfo.Version)
	assert.NotNil(t, initRes.Capabilities.CodeActionProvider)
	assert.Equal(t, "/workspace", s.rootPath)
}

func TestShutdownCancelsPendingLint(t *testing.T) {
	s := New(WithDebug(true))
	assert.True(t, s.debug)
	ctx, captured := capturingContext()
	uri := "file:///test/pending.cpp"
	openDoc(s, uri, "int computeTotal;")

	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "int x;"}},
	})
	require.NoError(t, err)

	s.pendingMu.Lock()
	assert.Len(t, s.pending, 1)
	s.pendingMu.Unlock()

	require.NoError(t, s.shutdown(mockContext()))
	s.pendingMu.Lock()
	assert.Empty(t, s.pending)
	s.pendingMu.Unlock()

	time.Sleep(2 * debounceDelay)
	assert.Empty(t, *captured, "a cancelled lint run never publishes")
}

func TestExitCallsExitFn(t *testing.T) {
	s := New()
	code := -1
	s.exitFn = func(c int) { code = c }
	require.NoError(t, s.shutdown(mockContext()))
	require.NoError(t, s.exit(mockContext()))
	assert.Equal(t, 0, code)
}

// --- Diagnostics tests ---

func TestDiagnosticsOnOpen(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:     "file:///test/main.cpp",
			Version: 1,
			Text:    scenarioSource,
		},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)

	params := (*captured)[0]
	assert.Equal(t, "file:///test/main.cpp", params.URI)
	assert.ElementsMatch(t,
		[]string{"using-namespace-std", "entry-point-name", "goto-usage"},
		diagCodes(params.Diagnostics))

	for _, d := range params.Diagnostics {
		require.NotNil(t, d.Source)
		assert.Equal(t, diagnosticSource, *d.Source)
		if d.Code.Value == "using-namespace-std" {
			assert.Equal(t, protocol.Position{Line: 0, Character: 0}, d.Range.Start)
			assert.Equal(t, protocol.Position{Line: 0, Character: 20}, d.Range.End)
			require.NotNil(t, d.Severity)
			assert.Equal(t, protocol.DiagnosticSeverityWarning, *d.Severity)
		}
	}
}

func TestDiagnosticsOnOpen_CleanCode(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:  "file:///test/clean.cpp",
			Text: "int computeTotal(int count) {\n  return count;\n}\n",
		},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.NotNil(t, (*captured)[0].Diagnostics, "clean files publish an empty list")
	assert.Empty(t, (*captured)[0].Diagnostics)
}

func TestDiagnosticsWithAnalyzers(t *testing.T) {
	s := New(WithAnalyzers([]*lint.Analyzer{lint.AnalyzerGotoUsage}))
	ctx, captured := capturingContext()

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///test/main.cpp", Text: scenarioSource},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Equal(t, []string{"goto-usage"}, diagCodes((*captured)[0].Diagnostics))
}

func TestDiagnosticsOnChange_Debounced(t *testing.T) {
	s := New()
	published := make(chan *protocol.PublishDiagnosticsParams, 4)
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			if method == protocol.ServerTextDocumentPublishDiagnostics {
				published <- params.(*protocol.PublishDiagnosticsParams)
			}
		},
	}
	uri := "file:///test/change.cpp"
	openDoc(s, uri, "int computeTotal;")

	err := s.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
			Version:                2,
		},
		ContentChanges: []any{
			protocol.TextDocumentContentChangeEventWhole{Text: "void f() { goto x; x: return; }"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, published, "publish is deferred until the debounce fires")

	select {
	case params := <-published:
		assert.Equal(t, []string{"goto-usage"}, diagCodes(params.Diagnostics))
		require.NotNil(t, params.Version)
		assert.EqualValues(t, 2, *params.Version)
	case <-time.After(5 * time.Second):
		t.Fatal("diagnostics were not published after the debounce delay")
	}
}

func TestDiagnosticsOnSave_Immediate(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	uri := "file:///test/save.cpp"
	openDoc(s, uri, scenarioSource)

	err := s.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Len(t, (*captured)[0].Diagnostics, 3)
}

func TestDiagnosticsOnClose_Cleared(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	uri := "file:///test/close.cpp"
	openDoc(s, uri, scenarioSource)
	s.captureNotify(ctx)

	err := s.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Empty(t, (*captured)[0].Diagnostics)
	assert.Nil(t, s.docs.Get(uri))
}

func TestDiagnosticsSuppressedByNolint(t *testing.T) {
	s := New()
	ctx, captured := capturingContext()
	src := "void f() {\n  // NOLINTNEXTLINE(goto-usage)\n  goto x;\nx:\n  return;\n}\n"

	err := s.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///test/nolint.cpp", Text: src},
	})
	require.NoError(t, err)
	require.Len(t, *captured, 1)
	assert.Empty(t, (*captured)[0].Diagnostics)
}

func TestMapLintSeverity(t *testing.T) {
	assert.Equal(t, protocol.DiagnosticSeverityError, mapLintSeverity(lint.SeverityError))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, mapLintSeverity(lint.SeverityWarning))
	assert.Equal(t, protocol.DiagnosticSeverityInformation, mapLintSeverity(lint.SeverityInfo))
	assert.Equal(t, protocol.DiagnosticSeverityWarning, mapLintSeverity(lint.Severity(0)))
}

func TestConvertLintDiagnosticNotes(t *testing.T) {
	d := lint.Diagnostic{
		Pos:      lint.Position{Line: 1, Col: 1, Offset: 0},
		EndPos:   lint.Position{Line: 1, Col: 21, Offset: 20},
		Message:  "Usage of 'using namespace std' found",
		Analyzer: "using-namespace-std",
		Severity: lint.SeverityWarning,
		Notes:    []string{"qualify names with std:: instead"},
	}
	got := convertLintDiagnostic("using namespace std;\n", d)
	assert.Equal(t, "Usage of 'using namespace std' found\nnote: qualify names with std:: instead", got.Message)
	assert.Equal(t, "using-namespace-std", got.Code.Value)
	assert.Equal(t, protocol.Position{Line: 0, Character: 20}, got.Range.End)
}

func TestFullText(t *testing.T) {
	assert.Equal(t, "", fullText(nil))
	assert.Equal(t, "b", fullText([]any{
		protocol.TextDocumentContentChangeEventWhole{Text: "a"},
		protocol.TextDocumentContentChangeEventWhole{Text: "b"},
	}))
}
