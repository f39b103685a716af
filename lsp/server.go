// Copyright © 2024 The cxxlint authors

// Package lsp implements a Language Server Protocol server for cxxlint.
// It lints open C++ documents, publishes the findings as diagnostics and
// offers code actions that apply fixes or add NOLINT suppressions.
package lsp

import (
	"os"
	"sync"
	"time"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "cxxlint-lsp"

// Version is reported to clients in the initialize response. Release builds
// set it with -ldflags "-X github.com/cxxlint/cxxlint/lsp.Version=...".
var Version = "0.1.0"

// Server is the cxxlint language server.
type Server struct {
	handler protocol.Handler
	glspSrv *glspserver.Server
	docs    *DocumentStore
	debug   bool

	// linter is replaced, never mutated, when the client changes settings.
	linterMu sync.RWMutex
	linter   *lint.Linter

	// Workspace root from the initialize request, if the client sent one.
	rootURI  string
	rootPath string

	// Pending lint runs of edited documents, keyed by URI.
	pendingMu sync.Mutex
	pending   map[string]*time.Timer

	// Notify function of the most recent client message. Debounced lint
	// runs publish through it after the request that scheduled them ended.
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn handles the exit notification. Tests replace os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithAnalyzers restricts the server to the given checks.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(s *Server) {
		l := *s.linter
		l.Analyzers = analyzers
		s.linter = &l
	}
}

// WithLinter replaces the server's linter, for example to set a tracer.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) {
		if l != nil {
			s.linter = l
		}
	}
}

// WithDebug makes the protocol layer log every message it exchanges.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// New creates a new cxxlint LSP server. Without options every check,
// parse-error included, runs on open documents.
func New(opts ...Option) *Server {
	s := &Server{
		docs:    NewDocumentStore(),
		linter:  &lint.Linter{Analyzers: lint.AllAnalyzers()},
		pending: make(map[string]*time.Timer),
		exitFn:  os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidSave:    s.textDocumentDidSave,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCodeAction: s.textDocumentCodeAction,

		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,
	}
	s.glspSrv = glspserver.NewServer(&s.handler, serverName, s.debug)
	return s
}

// RunStdio serves a single client over stdin and stdout.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP serves clients connecting to addr.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	switch {
	case params.RootURI != nil:
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	case params.RootPath != nil:
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}

	version := Version
	return protocol.InitializeResult{
		Capabilities: s.capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// capabilities advertises full document sync and the code action kinds
// produced by textDocumentCodeAction.
func (s *Server) capabilities() protocol.ServerCapabilities {
	caps := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}
	caps.CodeActionProvider = &protocol.CodeActionOptions{
		CodeActionKinds: []protocol.CodeActionKind{
			protocol.CodeActionKindQuickFix,
			protocol.CodeActionKindSourceFixAll,
		},
	}
	return caps
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.cancelAllPending()
	return nil
}

// exit always reports success; clients that skip shutdown lose nothing
// since the server holds no unsaved state.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace accepts $/setTrace, which some clients send unconditionally.
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
