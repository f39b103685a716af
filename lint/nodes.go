// Copyright © 2024 The cxxlint authors

package lint

import (
	"github.com/cxxlint/cxxlint/astutil"
	"github.com/cxxlint/cxxlint/syntax"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// FunctionName returns the identifier naming a function definition, or nil
// for operators, destructors and other non-identifier declarators.
func FunctionName(fn *tree_sitter.Node) *tree_sitter.Node {
	decl := fn.ChildByFieldName("declarator")
	if decl == nil {
		return nil
	}
	name := decl.ChildByFieldName("declarator")
	if syntax.KindOf(name) != syntax.KindIdentifier {
		return nil
	}
	return name
}

// DeclaredIdentifiers returns the identifier of every declarator of decl that
// declares a plain variable, with or without an initializer:
//
//	int a, b = 2;   // a, b
//	int *p, f();    // neither
func DeclaredIdentifiers(decl *tree_sitter.Node) []*tree_sitter.Node {
	var ids []*tree_sitter.Node
	for _, d := range astutil.FieldChildren(decl, "declarator") {
		switch syntax.KindOf(d) {
		case syntax.KindIdentifier:
			ids = append(ids, d)
		case syntax.KindInitDeclarator:
			inner := d.ChildByFieldName("declarator")
			if syntax.KindOf(inner) == syntax.KindIdentifier {
				ids = append(ids, inner)
			}
		}
	}
	return ids
}

// IsConstant reports whether decl is qualified const or constexpr.
func IsConstant(decl *tree_sitter.Node, src []byte) bool {
	for i := uint(0); i < decl.ChildCount(); i++ {
		child := decl.Child(i)
		if syntax.KindOf(child) != syntax.KindTypeQualifier {
			continue
		}
		switch text, _ := syntax.Text(child, src); text {
		case "const", "constexpr":
			return true
		}
	}
	return false
}

// InLoopHeader reports whether decl is the initializer of a for loop.
func InLoopHeader(decl *tree_sitter.Node) bool {
	parent := decl.Parent()
	if syntax.KindOf(parent) == syntax.KindInitStatement {
		parent = parent.Parent()
	}
	switch syntax.KindOf(parent) {
	case syntax.KindForStatement, syntax.KindForRangeLoop:
		return true
	}
	return false
}
