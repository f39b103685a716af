// Copyright © 2024 The cxxlint authors

package lsp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// settingsSection is the key of the server's settings in the object sent
// with workspace/didChangeConfiguration:
//
//	{"cxxlint": {"checks": ["goto-usage", "short-name"]}}
const settingsSection = "cxxlint"

func (s *Server) currentLinter() *lint.Linter {
	s.linterMu.RLock()
	defer s.linterMu.RUnlock()
	return s.linter
}

func (s *Server) setAnalyzers(analyzers []*lint.Analyzer) {
	s.linterMu.Lock()
	l := *s.linter
	l.Analyzers = analyzers
	s.linter = &l
	s.linterMu.Unlock()
}

// workspaceDidChangeConfiguration re-selects the checks from the client's
// settings and re-lints every open document. An empty or missing list
// selects every check.
func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	s.captureNotify(ctx)
	checks, ok, err := settingsChecks(params.Settings)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	analyzers := lint.AllAnalyzers()
	if len(checks) > 0 {
		if analyzers, err = lint.LookupAnalyzers(checks); err != nil {
			return err
		}
	}
	s.setAnalyzers(analyzers)

	for _, doc := range s.docs.All() {
		doc.mu.Lock()
		doc.invalidate()
		doc.mu.Unlock()
		s.lintAndPublish(doc)
	}
	return nil
}

// settingsChecks extracts the check list from decoded JSON settings. It
// reports false when the settings carry no cxxlint section.
func settingsChecks(settings any) ([]string, bool, error) {
	root, ok := settings.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	section, ok := root[settingsSection].(map[string]any)
	if !ok {
		return nil, false, nil
	}
	var checks []string
	switch v := section["checks"].(type) {
	case nil:
	case string:
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				checks = append(checks, name)
			}
		}
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, false, fmt.Errorf("%s.checks: %v is not a check name", settingsSection, item)
			}
			checks = append(checks, name)
		}
	default:
		return nil, false, fmt.Errorf("%s.checks: expected a list of check names", settingsSection)
	}
	return checks, true, nil
}

// displayPath names the document at uri in lint results, relative to the
// workspace root when it lies inside it.
func (s *Server) displayPath(uri string) string {
	path := uriToPath(uri)
	if s.rootPath == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(s.rootPath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
