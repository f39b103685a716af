// Copyright © 2024 The cxxlint authors

package syntax

import (
	"bytes"
	"strings"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse([]byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

// firstOfKind returns the first node of kind k in pre-order.
func firstOfKind(root *tree_sitter.Node, k Kind) *tree_sitter.Node {
	if KindOf(root) == k {
		return root
	}
	for i := uint(0); i < root.ChildCount(); i++ {
		if found := firstOfKind(root.Child(i), k); found != nil {
			return found
		}
	}
	return nil
}

func TestCanLoadGrammar(t *testing.T) {
	assert.NotNil(t, Language())
}

func TestParse_Root(t *testing.T) {
	tree := parse(t, "int x;\n")
	root := tree.Root()
	assert.Equal(t, KindTranslationUnit, KindOf(root))
	assert.False(t, tree.HasError())
}

func TestParse_MalformedInputYieldsErrorNodes(t *testing.T) {
	tree := parse(t, "int main( { return 0; \n")
	assert.True(t, tree.HasError())
}

func TestKindOf(t *testing.T) {
	src := `#include <vector>
using namespace std;
const int LIMIT = 3;
int main() {
  for (int i = 0; i < LIMIT; i++) {}
  for (auto v : values) {}
  if (x) {}
  while (x) {}
  foo(1);
  goto end;
end:
  return 0;
}
// trailing
`
	tree := parse(t, src)
	root := tree.Root()
	for _, k := range []Kind{
		KindPreprocInclude,
		KindUsingDeclaration,
		KindDeclaration,
		KindTypeQualifier,
		KindInitDeclarator,
		KindIdentifier,
		KindFunctionDefinition,
		KindForStatement,
		KindForRangeLoop,
		KindIfStatement,
		KindWhileStatement,
		KindCallExpression,
		KindGotoStatement,
		KindComment,
	} {
		assert.NotNil(t, firstOfKind(root, k), "expected a %s node", k)
	}
}

func TestKindOf_AnonymousTokensAreOther(t *testing.T) {
	tree := parse(t, "int x;")
	decl := firstOfKind(tree.Root(), KindDeclaration)
	require.NotNil(t, decl)
	semi := decl.Child(decl.ChildCount() - 1)
	require.NotNil(t, semi)
	assert.Equal(t, ";", semi.Kind())
	assert.Equal(t, KindOther, KindOf(semi))
}

func TestKindOf_Nil(t *testing.T) {
	assert.Equal(t, KindOther, KindOf(nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "declaration", KindDeclaration.String())
	assert.Equal(t, "other", KindOther.String())
	assert.Equal(t, "unknown", Kind(-1).String())
}

func TestText(t *testing.T) {
	tree := parse(t, "using namespace std;\n")
	using := firstOfKind(tree.Root(), KindUsingDeclaration)
	require.NotNil(t, using)
	text, ok := Text(using, tree.Source)
	require.True(t, ok)
	assert.Equal(t, "using namespace std;", text)
}

func TestText_InvalidUTF8(t *testing.T) {
	src := []byte("int x = 1; /* \xff\xfe */\n")
	tree, err := Parse(src)
	require.NoError(t, err)
	defer tree.Close()
	comment := firstOfKind(tree.Root(), KindComment)
	require.NotNil(t, comment)
	_, ok := Text(comment, tree.Source)
	assert.False(t, ok)
}

func TestText_OutOfRange(t *testing.T) {
	tree := parse(t, "int value;\n")
	decl := firstOfKind(tree.Root(), KindDeclaration)
	require.NotNil(t, decl)
	_, ok := Text(decl, []byte("int"))
	assert.False(t, ok)
	_, ok = Text(nil, tree.Source)
	assert.False(t, ok)
}

func TestPositions(t *testing.T) {
	tree := parse(t, "\n  goto done;\n")
	stmt := firstOfKind(tree.Root(), KindGotoStatement)
	require.NotNil(t, stmt)
	assert.Equal(t, 2, Line(stmt))
	assert.Equal(t, 3, Column(stmt))
	assert.Equal(t, 2, EndLine(stmt))
	assert.Equal(t, 13, EndColumn(stmt))
}

func TestDump(t *testing.T) {
	tree := parse(t, "int x;\n")
	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, tree.Root()))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "translation_unit [0, 0] - [1, 0]", lines[0])
	assert.Contains(t, buf.String(), "  declaration [0, 0] - [0, 6]")
	assert.Contains(t, buf.String(), "    type: primitive_type [0, 0] - [0, 3]")
	assert.Contains(t, buf.String(), "    declarator: identifier [0, 4] - [0, 5]")
	assert.Contains(t, buf.String(), `    ";" [0, 5] - [0, 6]`)
}
