// Copyright © 2024 The cxxlint authors

package lsp

import (
	"context"
	"sync"

	"github.com/cxxlint/cxxlint/lint"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	// result caches the lint result for Content. It is cleared on change.
	result  *lint.Result
	lintErr error
}

// lint runs the linter over the current content unless a result for it is
// already cached. The caller must hold d.mu.
func (d *Document) lint(ctx context.Context, l *lint.Linter, filename string) (*lint.Result, error) {
	if d.result != nil || d.lintErr != nil {
		return d.result, d.lintErr
	}
	d.result, d.lintErr = l.LintFileContext(ctx, []byte(d.Content), filename)
	return d.result, d.lintErr
}

// invalidate drops the cached lint result. The caller must hold d.mu.
func (d *Document) invalidate() {
	d.result = nil
	d.lintErr = nil
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and drops its cached
// lint result.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	doc.Version = version
	doc.Content = content
	doc.invalidate()
	doc.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns a snapshot of all open documents.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	return docs
}
