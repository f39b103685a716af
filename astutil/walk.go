// Copyright © 2024 The cxxlint authors

// Package astutil provides shared walking utilities for tree-sitter syntax
// trees.
//
// These helpers are used by both the lint and lsp packages. The walk uses an
// explicit work stack instead of recursion, so deeply nested input cannot
// exhaust the goroutine stack.
package astutil

import (
	"github.com/cxxlint/cxxlint/syntax"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

type frame struct {
	node  *tree_sitter.Node
	depth int
}

// Walk calls fn for every node under root, root included, in pre-order:
// a node is visited before its children and children left to right. depth is
// zero for root. The walk stops at the first error returned by fn.
func Walk(root *tree_sitter.Node, fn func(node *tree_sitter.Node, depth int) error) error {
	if root == nil {
		return nil
	}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if err := fn(top.node, top.depth); err != nil {
			return err
		}
		// Push in reverse so the leftmost child is popped first.
		for i := top.node.ChildCount(); i > 0; i-- {
			if child := top.node.Child(i - 1); child != nil {
				stack = append(stack, frame{node: child, depth: top.depth + 1})
			}
		}
	}
	return nil
}

// WalkKind calls fn for every node of kind k under root, in pre-order.
func WalkKind(root *tree_sitter.Node, k syntax.Kind, fn func(node *tree_sitter.Node)) {
	_ = Walk(root, func(node *tree_sitter.Node, _ int) error {
		if syntax.KindOf(node) == k {
			fn(node)
		}
		return nil
	})
}

// FieldChildren returns every child of n stored under the named field.
// A declaration such as "int a, b;" has two "declarator" children.
func FieldChildren(n *tree_sitter.Node, field string) []*tree_sitter.Node {
	cursor := n.Walk()
	defer cursor.Close()
	children := n.ChildrenByFieldName(field, cursor)
	out := make([]*tree_sitter.Node, len(children))
	for i := range children {
		out[i] = &children[i]
	}
	return out
}

// Ancestor returns the node levels steps above n, or nil if the tree is not
// that deep. Ancestor(n, 1) is the parent.
func Ancestor(n *tree_sitter.Node, levels int) *tree_sitter.Node {
	for ; n != nil && levels > 0; levels-- {
		n = n.Parent()
	}
	return n
}
