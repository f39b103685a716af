// Copyright © 2024 The cxxlint authors

// Package syntax adapts the tree-sitter C++ grammar for the linter.
//
// The rest of the module never inspects grammar kind labels directly. Every
// node is classified once through KindOf into the closed Kind enumeration,
// and nodes the linter does not care about fall into KindOther.
package syntax

import (
	"errors"
	"fmt"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// ErrNoTree is returned when the parser yields no tree at all.
var ErrNoTree = errors.New("parser produced no syntax tree")

// Tree is a parsed C++ translation unit together with the source it was
// parsed from. The tree is read-only; it may be linted any number of times.
type Tree struct {
	// Source is the exact byte buffer the tree spans refer to.
	Source []byte

	ts *tree_sitter.Tree
}

// Language returns the tree-sitter C++ language.
func Language() *tree_sitter.Language {
	return tree_sitter.NewLanguage(tree_sitter_cpp.Language())
}

// Parse parses src as C++. Malformed input does not fail: the returned tree
// contains ERROR and missing nodes covering the unparsable regions. An error
// is returned only when the grammar cannot be loaded or no tree is produced.
func Parse(src []byte) (*Tree, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(Language()); err != nil {
		return nil, fmt.Errorf("loading C++ grammar: %w", err)
	}
	ts := parser.Parse(src, nil)
	if ts == nil {
		return nil, ErrNoTree
	}
	return &Tree{Source: src, ts: ts}, nil
}

// Root returns the translation_unit node.
func (t *Tree) Root() *tree_sitter.Node {
	if t == nil || t.ts == nil {
		return nil
	}
	return t.ts.RootNode()
}

// HasError reports whether any part of the source failed to parse.
func (t *Tree) HasError() bool {
	return t.ts.RootNode().HasError()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.ts.Close()
}

// Text returns the source text covered by n. The second result is false when
// the span lies outside src or does not hold valid UTF-8; callers skip the
// node rather than failing.
func Text(n *tree_sitter.Node, src []byte) (string, bool) {
	if n == nil {
		return "", false
	}
	start, end := n.StartByte(), n.EndByte()
	if start > end || end > uint(len(src)) {
		return "", false
	}
	b := src[start:end]
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// Line returns the 1-based line on which n starts.
func Line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// Column returns the 1-based byte column at which n starts.
func Column(n *tree_sitter.Node) int {
	return int(n.StartPosition().Column) + 1
}

// EndLine returns the 1-based line on which n ends.
func EndLine(n *tree_sitter.Node) int {
	return int(n.EndPosition().Row) + 1
}

// EndColumn returns the 1-based byte column just past the end of n.
func EndColumn(n *tree_sitter.Node) int {
	return int(n.EndPosition().Column) + 1
}
