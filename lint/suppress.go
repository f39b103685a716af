// Copyright © 2024 The cxxlint authors

package lint

import (
	"strings"

	"github.com/cxxlint/cxxlint/astutil"
	"github.com/cxxlint/cxxlint/syntax"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// directive is the set of checks silenced on one line. A nil names map
// silences every check.
type directive struct {
	names map[string]bool
}

func (d *directive) merge(names []string) {
	if names == nil {
		d.names = nil
		return
	}
	if d.names == nil {
		return
	}
	for _, n := range names {
		d.names[n] = true
	}
}

func (d *directive) covers(analyzer string) bool {
	return d.names == nil || d.names[analyzer]
}

// suppressions maps 1-based source lines to NOLINT directives.
type suppressions map[int]*directive

// scanSuppressions collects the NOLINT comments of a file:
//
//	x = 1; // NOLINT                    every check on this line
//	x = 1; // NOLINT(short-name)        only short-name on this line
//	// NOLINTNEXTLINE(goto-usage)       goto-usage on the following line
func scanSuppressions(tree *syntax.Tree) suppressions {
	lines := make(suppressions)
	astutil.WalkKind(tree.Root(), syntax.KindComment, func(node *tree_sitter.Node) {
		text, ok := syntax.Text(node, tree.Source)
		if !ok {
			return
		}
		next, names, ok := ParseNolint(text)
		if !ok {
			return
		}
		line := syntax.Line(node)
		if next {
			line = syntax.EndLine(node) + 1
		}
		lines.add(line, names)
	})
	return lines
}

func (s suppressions) add(line int, names []string) {
	d, ok := s[line]
	if !ok {
		d = &directive{}
		if names != nil {
			d.names = make(map[string]bool)
		}
		s[line] = d
	}
	d.merge(names)
}

// filter drops the diagnostics silenced by a directive on their line.
func (s suppressions) filter(diags []Diagnostic) []Diagnostic {
	if len(s) == 0 || len(diags) == 0 {
		return diags
	}
	kept := diags[:0]
	for _, d := range diags {
		if dir, ok := s[d.Pos.Line]; ok && dir.covers(d.Analyzer) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// ParseNolint parses a comment for a NOLINT or NOLINTNEXTLINE marker. It
// returns whether the marker targets the next line and the listed check
// names, nil meaning all checks.
func ParseNolint(comment string) (nextLine bool, names []string, ok bool) {
	text := strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	default:
		return false, nil, false
	}
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "NOLINTNEXTLINE"):
		nextLine = true
		text = strings.TrimPrefix(text, "NOLINTNEXTLINE")
	case strings.HasPrefix(text, "NOLINT"):
		text = strings.TrimPrefix(text, "NOLINT")
	default:
		return false, nil, false
	}

	if !strings.HasPrefix(text, "(") {
		// A word glued to the marker, as in NOLINTED, is not a directive.
		if text != "" && !strings.HasPrefix(text, " ") && !strings.HasPrefix(text, ":") {
			return false, nil, false
		}
		return nextLine, nil, true
	}
	list, _, closed := strings.Cut(text[1:], ")")
	if !closed {
		return false, nil, false
	}
	names = []string{}
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return nextLine, names, true
}
