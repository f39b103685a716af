// Copyright © 2024 The cxxlint authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/cxxlint/cxxlint/syntax"
	"github.com/spf13/cobra"
)

// TreeCommand creates the "tree" cobra command, which prints the syntax
// tree of a file the way the linter sees it.
func TreeCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	cmd := &cobra.Command{
		Use:   "tree [flags] FILE",
		Short: "Dump the syntax tree of a C++ source file",
		Long: `Dump the syntax tree of a C++ source file.

Every node is printed on its own line in pre-order, indented by depth, with
its field name, kind and 0-based [row, column] start and end points. Node
kinds are the names the checks dispatch on. Use "-" to read standard input.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := dumpTree(cmd.OutOrStdout(), cmd.InOrStdin(), args[0]); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cxxlint tree: %v\n", err)
				cfg.exit(exitFailure)
			}
		},
	}
	return cmd
}

func dumpTree(w io.Writer, stdin io.Reader, path string) error {
	var (
		src []byte
		err error
	)
	if path == stdinPath {
		src, err = io.ReadAll(stdin)
	} else {
		src, err = os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
	}
	if err != nil {
		return err
	}
	tree, err := syntax.Parse(src)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()
	if tree.HasError() {
		logger.Warnf("%s: source contains syntax errors", path)
	}
	return syntax.Dump(w, tree.Root())
}
