// Copyright © 2024 The cxxlint authors

package cmd

import (
	"fmt"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/cxxlint/cxxlint/lsp"
	"github.com/spf13/cobra"
)

// LSPCommand creates the "lsp" cobra command. The --checks selection (flag,
// config file or CXXLINT_CHECKS) applies to the server as it does to lint.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the cxxlint Language Server Protocol server",
		Long: `Start an LSP server for C++ source files.

The language server lints documents as they are opened, edited and saved,
publishes the findings as diagnostics and offers code actions that apply
fixes or insert NOLINTNEXTLINE suppressions.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

With --verbose every protocol message is logged to stderr.

Examples:
  cxxlint lsp                        Start with stdio transport
  cxxlint lsp --stdio                Same as above (explicit)
  cxxlint lsp --port 7998            Start with TCP on port 7998`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			l, err := newServerLinter(cfg, cfg.viper.GetStringSlice("checks"))
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cxxlint lsp: %v\n", err)
				cfg.exit(exitFailure)
				return
			}
			srv := lsp.New(lsp.WithLinter(l), lsp.WithDebug(cfg.viper.GetBool("verbose")))

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				logger.Infof("cxxlint LSP server listening on %s", addr)
				err = srv.RunTCP(addr)
			} else {
				logger.Debug("cxxlint LSP server running on stdio")
				err = srv.RunStdio()
			}
			if err != nil {
				logger.Errorf("lsp server error: %v", err)
				cfg.exit(exitIssues)
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

// newServerLinter is newLinter for the language server, which also reports
// syntax errors unless checks are selected explicitly.
func newServerLinter(cfg *cmdConfig, checks []string) (*lint.Linter, error) {
	l, err := newLinter(cfg, checks)
	if err != nil {
		return nil, err
	}
	if len(checks) == 0 && (cfg.linter == nil || cfg.linter.Analyzers == nil) {
		l.Analyzers = lint.AllAnalyzers()
	}
	return l, nil
}
