// Copyright © 2024 The cxxlint authors

package lint

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cxxlint/cxxlint/naming"
	"github.com/cxxlint/cxxlint/rewrite"
	"github.com/cxxlint/cxxlint/syntax"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// MinNameLength is the shortest variable name accepted by short-name.
const MinNameLength = 3

// umbrellaHeader is the catch-all libstdc++ header flagged by umbrella-include.
const umbrellaHeader = "bits/stdc++.h"

// AnalyzerEntryPointName reports functions named main.
var AnalyzerEntryPointName = &Analyzer{
	Name:     "entry-point-name",
	Doc:      "Report function definitions named `main`.\n\nThe checked sources are expected to be library code; a `main` function belongs in a separate program target.",
	Severity: SeverityWarning,
	Kinds:    []syntax.Kind{syntax.KindFunctionDefinition},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		name, ok := pass.Text(FunctionName(node))
		if !ok || name != "main" {
			return nil
		}
		pass.Reportf(node, "Function named 'main' found")
		return nil
	},
}

// AnalyzerDeclarationNaming checks the spelling of declared variables.
var AnalyzerDeclarationNaming = &Analyzer{
	Name:     "declaration-naming",
	Doc:      "Check that variables are camelCase and constants are ALLUPPERCASE.\n\nA declaration qualified with `const` or `constexpr` must name its variables with uppercase letters only (no digits or underscores). Every other variable must start with a lowercase letter, contain no underscores and never have two uppercase letters in a row (`myId`, not `myID`).",
	Severity: SeverityWarning,
	Kinds:    []syntax.Kind{syntax.KindDeclaration},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		constant := IsConstant(node, pass.Source)
		for _, id := range DeclaredIdentifiers(node) {
			name, ok := pass.Text(id)
			if !ok {
				continue
			}
			switch {
			case constant && !naming.IsAllUppercase(name):
				pass.Report(Diagnostic{
					Pos:     StartOf(id),
					EndPos:  EndOf(id),
					Message: fmt.Sprintf("Constant '%s' is not all uppercase", name),
				})
			case !constant && !naming.IsCamelCase(name):
				pass.Report(Diagnostic{
					Pos:     StartOf(id),
					EndPos:  EndOf(id),
					Message: fmt.Sprintf("Variable '%s' is not in camel case", name),
				})
			}
		}
		return nil
	},
}

// AnalyzerShortName reports variable names shorter than MinNameLength.
// Loop counters declared in a for header are exempt.
var AnalyzerShortName = &Analyzer{
	Name:     "short-name",
	Doc:      "Report variable names shorter than three characters.\n\nDeclarations in the header of a `for` loop are exempt, so counters such as `i` are accepted there.",
	Severity: SeverityWarning,
	Kinds:    []syntax.Kind{syntax.KindDeclaration},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		if InLoopHeader(node) {
			return nil
		}
		for _, id := range DeclaredIdentifiers(node) {
			name, ok := pass.Text(id)
			if !ok {
				continue
			}
			if n := utf8.RuneCountInString(name); n < MinNameLength {
				pass.Report(Diagnostic{
					Pos:     StartOf(id),
					EndPos:  EndOf(id),
					Message: fmt.Sprintf("Variable '%s' is too short (%d < %d characters)", name, n, MinNameLength),
				})
			}
		}
		return nil
	},
}

// AnalyzerUsingNamespaceStd reports `using namespace std` and removes it
// from the rewritten source.
var AnalyzerUsingNamespaceStd = &Analyzer{
	Name:     "using-namespace-std",
	Doc:      "Report `using namespace std` directives.\n\nImporting the whole standard namespace invites name collisions. The fix deletes the directive.",
	Severity: SeverityWarning,
	Kinds:    []syntax.Kind{syntax.KindUsingDeclaration},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		text, ok := pass.Text(node)
		if !ok || !strings.Contains(text, "namespace std") {
			return nil
		}
		pass.ReportWithNotes(Diagnostic{
			Pos:     StartOf(node),
			EndPos:  EndOf(node),
			Message: "Usage of 'using namespace std' found",
		}, "qualify names with std:: instead")
		return nil
	},
	Fix: func(pass *Pass, node *tree_sitter.Node) (rewrite.Edit, bool) {
		text, ok := pass.Text(node)
		if !ok {
			return rewrite.Edit{}, false
		}
		return rewrite.Edit{
			Start:   int(node.StartByte()),
			End:     int(node.EndByte()),
			OldText: text,
		}, true
	},
}

// AnalyzerGotoUsage reports every goto statement.
var AnalyzerGotoUsage = &Analyzer{
	Name:     "goto-usage",
	Doc:      "Report `goto` statements.",
	Severity: SeverityWarning,
	Kinds:    []syntax.Kind{syntax.KindGotoStatement},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		pass.Reportf(node, "Usage of 'goto' statement found")
		return nil
	},
}

// controlFlowSpacings are the accepted keyword spellings. A statement whose
// text contains none of them is missing the space before its parenthesis.
var controlFlowSpacings = []string{"for (", "if (", "while ("}

// AnalyzerControlFlowSpacing checks for a space between a control flow
// keyword and its opening parenthesis.
var AnalyzerControlFlowSpacing = &Analyzer{
	Name:     "control-flow-spacing",
	Doc:      "Require a space between `for`, `if` or `while` and the opening parenthesis.",
	Severity: SeverityInfo,
	Kinds: []syntax.Kind{
		syntax.KindForStatement,
		syntax.KindIfStatement,
		syntax.KindWhileStatement,
		syntax.KindForRangeLoop,
	},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		text, ok := pass.Text(node)
		if !ok {
			return nil
		}
		for _, s := range controlFlowSpacings {
			if strings.Contains(text, s) {
				return nil
			}
		}
		keyword := "statement"
		if first := node.Child(0); first != nil {
			keyword = first.Kind()
		}
		pass.Reportf(node, "Missing space between '%s' and '('", keyword)
		return nil
	},
}

// AnalyzerRangeBasedFor suggests range-based loops for C-style for loops.
var AnalyzerRangeBasedFor = &Analyzer{
	Name:     "range-based-for",
	Doc:      "Suggest a range-based for loop in place of an index-based one.\n\nThe check is textual: a `for (` statement without any `:` is assumed to iterate by index.",
	Severity: SeverityInfo,
	Kinds:    []syntax.Kind{syntax.KindForStatement},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		text, ok := pass.Text(node)
		if !ok {
			return nil
		}
		if strings.Contains(text, "for (") && !strings.Contains(text, ":") {
			pass.Reportf(node, "Consider using a range-based for loop")
		}
		return nil
	},
}

// AnalyzerCallSpacing reports a space before the argument list of a call.
var AnalyzerCallSpacing = &Analyzer{
	Name:     "call-spacing",
	Doc:      "Report a space before the parenthesis of a function call, as in `foo (x)`.",
	Severity: SeverityInfo,
	Kinds:    []syntax.Kind{syntax.KindCallExpression},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		text, ok := pass.Text(node)
		if !ok || !strings.Contains(text, " (") {
			return nil
		}
		pass.Reportf(node, "Space before '(' in function call")
		return nil
	},
}

// AnalyzerUmbrellaInclude reports inclusion of bits/stdc++.h.
var AnalyzerUmbrellaInclude = &Analyzer{
	Name:     "umbrella-include",
	Doc:      "Report `#include <bits/stdc++.h>`.\n\nThe header is a non-standard libstdc++ internal that pulls in the entire standard library. Include the headers that are actually used.",
	Severity: SeverityWarning,
	Kinds:    []syntax.Kind{syntax.KindPreprocInclude},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		text, ok := pass.Text(node)
		if !ok || !strings.Contains(text, umbrellaHeader) {
			return nil
		}
		pass.Reportf(node, "Avoid including <%s>", umbrellaHeader)
		return nil
	},
}

// AnalyzerParseError reports regions the parser could not make sense of. It
// is not part of DefaultAnalyzers.
var AnalyzerParseError = &Analyzer{
	Name:     "parse-error",
	Doc:      "Report unparsable regions of the file.\n\nOne diagnostic is reported for every ERROR node and every token the parser had to assume was missing.",
	Severity: SeverityError,
	Kinds:    []syntax.Kind{syntax.KindError},
	Run: func(pass *Pass, node *tree_sitter.Node) error {
		if node.IsMissing() {
			pass.Reportf(node, "Syntax error: missing '%s'", node.Kind())
			return nil
		}
		pass.Reportf(node, "Syntax error: unexpected input")
		return nil
	},
}

// DefaultAnalyzers returns the built-in set of lint checks. The order is the
// order in which checks report on a shared node.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerEntryPointName,
		AnalyzerDeclarationNaming,
		AnalyzerShortName,
		AnalyzerUsingNamespaceStd,
		AnalyzerGotoUsage,
		AnalyzerControlFlowSpacing,
		AnalyzerRangeBasedFor,
		AnalyzerCallSpacing,
		AnalyzerUmbrellaInclude,
	}
}

// AllAnalyzers returns DefaultAnalyzers followed by the opt-in checks.
func AllAnalyzers() []*Analyzer {
	return append(DefaultAnalyzers(), AnalyzerParseError)
}

// LookupAnalyzers returns the named checks in table order. Unknown names are
// an error.
func LookupAnalyzers(names []string) ([]*Analyzer, error) {
	selected := make(map[string]bool)
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			selected[name] = true
		}
	}
	var out []*Analyzer
	for _, a := range AllAnalyzers() {
		if selected[a.Name] {
			out = append(out, a)
			delete(selected, a.Name)
		}
	}
	if len(selected) > 0 {
		unknown := make([]string, 0, len(selected))
		for name := range selected {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown check: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// AnalyzerNames returns the names of all available checks, sorted.
func AnalyzerNames() []string {
	analyzers := AllAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// AnalyzerDoc returns a formatted listing of every check and its summary.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range AllAnalyzers() {
		fmt.Fprintf(&b, "  %s\n", a.Name)
		summary, _, _ := strings.Cut(a.Doc, "\n")
		fmt.Fprintf(&b, "%s\n\n", indent.String(wordwrap.String(summary, 68), 4))
	}
	return b.String()
}
