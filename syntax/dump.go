// Copyright © 2024 The cxxlint authors

package syntax

import (
	"fmt"
	"io"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Dump writes an indented outline of every node under root, one node per
// line, in document order. Field names are shown as prefixes and anonymous
// tokens are quoted.
func Dump(w io.Writer, root *tree_sitter.Node) error {
	if root == nil {
		return nil
	}
	cursor := root.Walk()
	defer cursor.Close()

	depth := 0
	for {
		if err := dumpNode(w, cursor, depth); err != nil {
			return err
		}
		if cursor.GotoFirstChild() {
			depth++
			continue
		}
		for !cursor.GotoNextSibling() {
			if depth == 0 || !cursor.GotoParent() {
				return nil
			}
			depth--
		}
	}
}

func dumpNode(w io.Writer, cursor *tree_sitter.TreeCursor, depth int) error {
	n := cursor.Node()
	label := n.Kind()
	switch {
	case n.IsMissing():
		label = "MISSING " + label
	case !n.IsNamed():
		label = fmt.Sprintf("%q", label)
	}
	if field := cursor.FieldName(); field != "" {
		label = field + ": " + label
	}
	start, end := n.StartPosition(), n.EndPosition()
	_, err := fmt.Fprintf(w, "%s%s [%d, %d] - [%d, %d]\n",
		strings.Repeat("  ", depth), label,
		start.Row, start.Column, end.Row, end.Column)
	return err
}
