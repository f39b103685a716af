// Copyright © 2024 The cxxlint authors

package cmd

import (
	"os"

	"github.com/cxxlint/cxxlint/lint"
	"github.com/spf13/viper"
)

// Option configures an exported command factory (LintCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	viper  *viper.Viper
	exit   func(int)
	linter *lint.Linter
}

// WithViper binds the command's flags to v instead of the global viper
// instance. Embedders and tests use it to keep configuration isolated.
func WithViper(v *viper.Viper) Option {
	return func(c *cmdConfig) { c.viper = v }
}

// WithExitFunc replaces os.Exit as the way the command reports its exit
// code.
func WithExitFunc(fn func(int)) Option {
	return func(c *cmdConfig) { c.exit = fn }
}

// WithLinter injects a preconfigured linter, for example one carrying a
// tracer. Its analyzers are replaced by the --checks selection when that
// flag or config key is set.
func WithLinter(l *lint.Linter) Option {
	return func(c *cmdConfig) { c.linter = l }
}

func newCmdConfig(opts []Option) *cmdConfig {
	cfg := &cmdConfig{
		viper: viper.GetViper(),
		exit:  os.Exit,
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
