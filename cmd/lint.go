// Copyright © 2024 The cxxlint authors

package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/cxxlint/cxxlint/syntax"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// stdinPath is the argument that selects standard input.
const stdinPath = "-"

// Exit codes of the lint command.
const (
	exitClean   = 0
	exitIssues  = 1
	exitFailure = 2
)

type lintFlags struct {
	filePath string
	debug    int
	list     bool
	fix      bool
	output   string
}

// fileResult is the outcome of linting one input.
type fileResult struct {
	path   string
	source []byte
	res    *lint.Result
	dump   []byte
}

// LintCommand creates the "lint" cobra command. Embedders can pass
// WithViper, WithLinter or WithExitFunc to control configuration, tracing
// and process exit.
func LintCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var flags lintFlags

	cmd := &cobra.Command{
		Use:   "lint [flags] [files...]",
		Short: "Check C++ source files for style issues",
		Long: `Check C++ source files for style issues.

Each check is an independent analyzer dispatched on the syntax tree node
kinds it cares about. Every finding is printed as "Issue: <message>"; a
clean file prints "No issues found".

Inputs are given with -f/--file_path and/or as arguments. An argument
ending in "/..." expands to every C and C++ file below that directory, and
"-" reads standard input.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files, parser failure)

To suppress diagnostics on a line, end it with a comment:
  goto done;  // NOLINT(goto-usage)

To suppress all checks on a line:
  goto done;  // NOLINT

To suppress checks on the following line:
  // NOLINTNEXTLINE(short-name)
  int n = 0;

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  cxxlint lint -f main.cpp                      # Lint a single file
  cxxlint lint src/...                          # Lint a directory tree
  cxxlint lint --format=json main.cpp           # Output diagnostics as JSON
  cxxlint lint --checks=goto-usage main.cpp     # Run only specific checks
  cxxlint lint --fix main.cpp                   # Apply fixes in place
  cxxlint lint --output=- main.cpp              # Print the fixed source
  cxxlint lint --exclude=third_party ./...      # Exclude a directory
  cxxlint lint -d 1 main.cpp                    # Dump the syntax tree first
  cat main.cpp | cxxlint lint -                 # Lint from stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			if code := runLint(cmd, cfg, &flags, args); code != exitClean {
				cfg.exit(code)
			}
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.filePath, "file_path", "f", "",
		"Source file to lint.")
	f.IntVarP(&flags.debug, "debug", "d", 0,
		"Dump the syntax tree of each file before linting when non-zero.")
	f.String("format", "text",
		`Report format: "text", "vet", "pretty", or "json".`)
	f.StringSlice("checks", nil,
		"Comma-separated list of checks to run (default: all style checks).")
	f.BoolVar(&flags.list, "list", false,
		"List available checks and exit.")
	f.BoolVar(&flags.fix, "fix", false,
		"Write fixed sources back to their files.")
	f.StringVar(&flags.output, "output", "",
		`Write the fixed source of a single input to PATH ("-" for stdout).`)
	f.StringArray("exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	f.Int("jobs", 0,
		"Number of files linted concurrently (default: GOMAXPROCS).")
	cmd.MarkFlagsMutuallyExclusive("fix", "output")

	for _, key := range []string{"format", "checks", "exclude", "jobs"} {
		_ = cfg.viper.BindPFlag(key, f.Lookup(key))
	}
	return cmd
}

func runLint(cmd *cobra.Command, cfg *cmdConfig, flags *lintFlags, args []string) int {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	v := cfg.viper

	if flags.list {
		for _, name := range lint.AnalyzerNames() {
			fmt.Fprintln(stdout, name)
		}
		return exitClean
	}

	l, err := newLinter(cfg, v.GetStringSlice("checks"))
	if err != nil {
		fmt.Fprintf(stderr, "cxxlint lint: %v\n", err)
		return exitFailure
	}

	format := v.GetString("format")
	switch format {
	case "", "text", "vet", "pretty", "json":
	default:
		fmt.Fprintf(stderr, "cxxlint lint: unknown format %q\n", format)
		return exitFailure
	}

	inputs := args
	if flags.filePath != "" {
		inputs = append([]string{flags.filePath}, args...)
	}
	if len(inputs) == 0 {
		fmt.Fprintln(stderr, "cxxlint lint: no input files (use -f FILE or pass files as arguments)")
		return exitFailure
	}
	paths, err := expandArgs(inputs, v.GetStringSlice("exclude"))
	if err != nil {
		fmt.Fprintf(stderr, "cxxlint lint: %v\n", err)
		return exitFailure
	}
	if len(paths) == 0 {
		logger.Warn("no source files matched")
		return exitClean
	}
	if flags.output != "" && len(paths) != 1 {
		fmt.Fprintf(stderr, "cxxlint lint: --output needs exactly one input, got %d\n", len(paths))
		return exitFailure
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := lintPaths(ctx, l, paths, v.GetInt("jobs"), flags.debug != 0, cmd.InOrStdin())
	if err != nil {
		fmt.Fprintf(stderr, "cxxlint lint: %v\n", err)
		return exitFailure
	}

	// The fixed source owns stdout when it is written there.
	report := stdout
	if flags.output == stdinPath {
		report = stderr
	}
	if err := writeReport(report, format, v.GetString("color"), results); err != nil {
		fmt.Fprintf(stderr, "cxxlint lint: %v\n", err)
		return exitFailure
	}

	switch {
	case flags.fix:
		if err := writeFixes(results); err != nil {
			fmt.Fprintf(stderr, "cxxlint lint: %v\n", err)
			return exitFailure
		}
	case flags.output != "":
		if err := writeOutput(stdout, flags.output, results[0]); err != nil {
			fmt.Fprintf(stderr, "cxxlint lint: %v\n", err)
			return exitFailure
		}
	}

	for _, r := range results {
		if len(r.res.Diagnostics) > 0 {
			return exitIssues
		}
	}
	return exitClean
}

// newLinter builds the linter for the selected checks. An injected linter
// keeps its tracer and, without a selection, its analyzers.
func newLinter(cfg *cmdConfig, checks []string) (*lint.Linter, error) {
	l := &lint.Linter{}
	if cfg.linter != nil {
		*l = *cfg.linter
	}
	if len(checks) > 0 {
		analyzers, err := lint.LookupAnalyzers(checks)
		if err != nil {
			return nil, err
		}
		l.Analyzers = analyzers
	}
	if l.Analyzers == nil {
		l.Analyzers = lint.DefaultAnalyzers()
	}
	return l, nil
}

// lintPaths lints every path with at most jobs files in flight. Results are
// returned in the order of paths regardless of completion order.
func lintPaths(ctx context.Context, l *lint.Linter, paths []string, jobs int, dump bool, stdin io.Reader) ([]fileResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]fileResult, len(paths))

	// Standard input can only be consumed once and before any worker runs.
	var stdinSrc []byte
	for _, p := range paths {
		if p == stdinPath {
			src, err := io.ReadAll(stdin)
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			stdinSrc = src
			break
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			src := stdinSrc
			name := "<stdin>"
			if path != stdinPath {
				var err error
				src, err = os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
				if err != nil {
					return err
				}
				name = path
			}
			logger.Debugf("linting %s", name)
			r, err := lintSource(gctx, l, src, name, dump)
			if err != nil {
				return err
			}
			r.path = path
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func lintSource(ctx context.Context, l *lint.Linter, src []byte, name string, dump bool) (fileResult, error) {
	tree, err := syntax.Parse(src)
	if err != nil {
		return fileResult{}, fmt.Errorf("%s: %w", name, err)
	}
	defer tree.Close()

	r := fileResult{source: src}
	if dump {
		var buf bytes.Buffer
		if err := syntax.Dump(&buf, tree.Root()); err != nil {
			return fileResult{}, fmt.Errorf("%s: %w", name, err)
		}
		r.dump = buf.Bytes()
	}
	if r.res, err = l.LintTree(ctx, tree, name); err != nil {
		return fileResult{}, err
	}
	return r, nil
}

func writeReport(w io.Writer, format, color string, results []fileResult) error {
	var all []lint.Diagnostic
	for _, r := range results {
		all = append(all, r.res.Diagnostics...)
	}

	switch format {
	case "json":
		return lint.FormatJSON(w, all)
	case "pretty":
		for _, r := range results {
			if r.dump != nil {
				if _, err := w.Write(r.dump); err != nil {
					return err
				}
			}
		}
		if len(all) == 0 {
			_, err := fmt.Fprintln(w, "No issues found")
			return err
		}
		sources := make(map[string][]byte, len(results))
		for _, r := range results {
			sources[r.res.Filename] = r.source
		}
		return renderLintDiagnostics(w, newRenderer(color, sources), all)
	}

	ew := &errWriter{w: w}
	for _, r := range results {
		if r.dump != nil {
			ew.write(r.dump)
		}
		if len(results) > 1 {
			ew.printf("%s:\n", r.res.Filename)
		}
		if format == "vet" {
			lint.FormatVet(ew, r.res.Diagnostics)
		} else {
			lint.FormatText(ew, r.res.Diagnostics)
		}
	}
	return ew.err
}

// writeFixes writes every changed source back to its file, keeping the
// file's permissions.
func writeFixes(results []fileResult) error {
	for _, r := range results {
		if !r.res.Changed() {
			continue
		}
		if r.path == stdinPath {
			logger.Warn("fixes for standard input are not written; use --output=-")
			continue
		}
		info, err := os.Stat(r.path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(r.path, r.res.Source, info.Mode().Perm()); err != nil {
			return err
		}
		logger.Infof("fixed %s (%d edits)", r.path, r.res.Fixes)
	}
	return nil
}

// writeOutput writes the fixed source of r to path, or to stdout for "-".
func writeOutput(stdout io.Writer, path string, r fileResult) error {
	if path == stdinPath {
		_, err := stdout.Write(r.res.Source)
		return err
	}
	if err := os.WriteFile(path, r.res.Source, 0o644); err != nil { //nolint:gosec // output is a regular source file
		return err
	}
	logger.Debugf("wrote %s (%d edits)", path, r.res.Fixes)
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	var n int
	n, ew.err = ew.w.Write(p)
	return n, ew.err
}

func (ew *errWriter) write(p []byte) {
	_, _ = ew.Write(p)
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}
