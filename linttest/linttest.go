// Copyright © 2024 The cxxlint authors

// Package linttest runs lint checks over annotated C++ test files.
//
// A test file marks every expected diagnostic with a comment on the line the
// diagnostic is reported on:
//
//	int x;  // want "Variable 'x' is too short (1 < 3 characters)"
//
// A comment may carry several quoted messages. A file named like the test
// file with a ".golden" suffix holds the expected source after fixes.
package linttest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/stretchr/testify/assert"
)

// wantMarker introduces an expectation inside a line comment.
const wantMarker = "// want "

// sourceExts are the test file extensions picked up by RunDir.
var sourceExts = map[string]bool{".cpp": true, ".cc": true, ".h": true, ".hpp": true}

// BenchmarkLint returns a benchmark linting the file at path with the given
// analyzers.
func BenchmarkLint(path string, analyzers []*lint.Analyzer) func(*testing.B) {
	return func(b *testing.B) {
		src, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		l := &lint.Linter{Analyzers: analyzers}
		b.SetBytes(int64(len(src)))
		for i := 0; i < b.N; i++ {
			if _, err := l.LintFile(src, path); err != nil {
				b.Fatalf("Lint failure: %v", err)
			}
		}
	}
}

// Runner is a test runner.
type Runner struct {
	// Analyzers run over every test file. When nil lint.DefaultAnalyzers is
	// used.
	Analyzers []*lint.Analyzer
}

func (r *Runner) linter() *lint.Linter {
	analyzers := r.Analyzers
	if analyzers == nil {
		analyzers = lint.DefaultAnalyzers()
	}
	return &lint.Linter{Analyzers: analyzers}
}

// RunDir runs RunTestFile as a subtest for every C++ file in dir.
func (r *Runner) RunDir(t *testing.T, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Unable to read test directory: %v", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !sourceExts[filepath.Ext(e.Name())] {
			continue
		}
		n++
		path := filepath.Join(dir, e.Name())
		t.Run(e.Name(), func(t *testing.T) {
			r.RunTestFile(t, path)
		})
	}
	if n == 0 {
		t.Errorf("no test files in %s", dir)
	}
}

// RunTestFile lints the file at path and checks the diagnostics against its
// want comments and the fixed source against its golden file.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	t.Helper()
	src, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	want, err := ParseExpectations(src)
	if err != nil {
		t.Errorf("%s: %v", path, err)
		return
	}
	res, err := r.linter().LintFile(src, path)
	if err != nil {
		t.Errorf("%s: lint failed: %v", path, err)
		return
	}

	for _, d := range res.Diagnostics {
		if !consume(want, d.Line(), d.Message) {
			t.Errorf("%s: unexpected diagnostic: %s (%s)", d.Pos, d.Message, d.Analyzer)
		}
	}
	lines := make([]int, 0, len(want))
	for line := range want {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	for _, line := range lines {
		for _, msg := range want[line] {
			t.Errorf("%s:%d: missing diagnostic %q", path, line, msg)
		}
	}

	golden, err := os.ReadFile(path + ".golden") //#nosec G304
	switch {
	case err == nil:
		assert.Equal(t, string(golden), string(res.Source), "fixed source differs from %s.golden", path)
	case os.IsNotExist(err):
		assert.False(t, res.Changed(), "%s: fixes applied but no golden file", path)
	default:
		t.Errorf("Unable to read golden file: %v", err)
	}
}

// consume removes msg from the expectations of line and reports whether it
// was there.
func consume(want map[int][]string, line int, msg string) bool {
	msgs := want[line]
	for i, m := range msgs {
		if m != msg {
			continue
		}
		msgs = append(msgs[:i], msgs[i+1:]...)
		if len(msgs) == 0 {
			delete(want, line)
		} else {
			want[line] = msgs
		}
		return true
	}
	return false
}

// ParseExpectations collects the messages of every want comment in src,
// keyed by 1-based line.
func ParseExpectations(src []byte) (map[int][]string, error) {
	want := make(map[int][]string)
	for i, line := range strings.Split(string(src), "\n") {
		_, rest, ok := strings.Cut(line, wantMarker)
		if !ok {
			continue
		}
		msgs, err := parseQuoted(rest)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		want[i+1] = append(want[i+1], msgs...)
	}
	return want, nil
}

// parseQuoted splits a sequence of Go string literals separated by spaces.
func parseQuoted(s string) ([]string, error) {
	var msgs []string
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			break
		}
		lit, err := strconv.QuotedPrefix(s)
		if err != nil {
			return nil, fmt.Errorf("bad want comment %q: %w", s, err)
		}
		msg, err := strconv.Unquote(lit)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
		s = s[len(lit):]
	}
	if len(msgs) == 0 {
		return nil, errors.New("want comment without messages")
	}
	return msgs, nil
}
