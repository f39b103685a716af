// Copyright © 2024 The cxxlint authors

package syntax

import tree_sitter "github.com/tree-sitter/go-tree-sitter"

// Kind is the closed set of grammar categories the linter distinguishes.
type Kind int

const (
	KindOther Kind = iota
	KindTranslationUnit
	KindFunctionDefinition
	KindDeclaration
	KindInitDeclarator
	KindInitStatement
	KindIdentifier
	KindTypeQualifier
	KindUsingDeclaration
	KindGotoStatement
	KindForStatement
	KindForRangeLoop
	KindIfStatement
	KindWhileStatement
	KindCallExpression
	KindPreprocInclude
	KindComment
	KindError
)

var kindNames = [...]string{
	KindOther:              "other",
	KindTranslationUnit:    "translation_unit",
	KindFunctionDefinition: "function_definition",
	KindDeclaration:        "declaration",
	KindInitDeclarator:     "init_declarator",
	KindInitStatement:      "init_statement",
	KindIdentifier:         "identifier",
	KindTypeQualifier:      "type_qualifier",
	KindUsingDeclaration:   "using_declaration",
	KindGotoStatement:      "goto_statement",
	KindForStatement:       "for_statement",
	KindForRangeLoop:       "for_range_loop",
	KindIfStatement:        "if_statement",
	KindWhileStatement:     "while_statement",
	KindCallExpression:     "call_expression",
	KindPreprocInclude:     "preproc_include",
	KindComment:            "comment",
	KindError:              "ERROR",
}

// kindsByLabel is the only place grammar labels are matched.
var kindsByLabel = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if Kind(k) == KindOther {
			continue
		}
		m[name] = Kind(k)
	}
	return m
}()

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// KindOf classifies n. Error and missing nodes are KindError; named nodes
// outside the enumeration and all anonymous tokens are KindOther.
func KindOf(n *tree_sitter.Node) Kind {
	if n == nil {
		return KindOther
	}
	if n.IsError() || n.IsMissing() {
		return KindError
	}
	if !n.IsNamed() {
		return KindOther
	}
	if k, ok := kindsByLabel[n.Kind()]; ok {
		return k
	}
	return KindOther
}
