// Copyright © 2024 The cxxlint authors

package cmd

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// logger reports what the tool itself is doing (config used, files fixed,
// server lifecycle). Lint findings never go through it.
var logger = newLogger()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cxxlint",
	Short: "cxxlint checks C++ sources against a small set of style rules",
	Long: `cxxlint parses C++ sources with tree-sitter and reports style issues:
naming conventions, goto, "using namespace std", spacing around control
flow keywords and calls, index-based for loops and umbrella includes.

Getting started:
  cxxlint lint -f main.cpp          Lint a single file
  cxxlint lint src/...              Lint every C/C++ file under src
  cxxlint lint --fix main.cpp       Lint and apply the available fixes
  cxxlint lint --list               List available checks
  cxxlint tree main.cpp             Dump the syntax tree of a file
  cxxlint lsp                       Start the language server

Configuration is read from .cxxlint.yaml in the working directory or the
home directory, or from the file given with --config. Every key can also be
set through a CXXLINT_ environment variable, e.g. CXXLINT_CHECKS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(2)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.cxxlint.yaml, then $HOME/.cxxlint.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"Log what the tool is doing to stderr.")
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(LintCommand())
	rootCmd.AddCommand(TreeCommand())
	rootCmd.AddCommand(LSPCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".cxxlint")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CXXLINT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	configureLogger(logger, viper.GetBool("verbose"))

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logger.Debugf("using config file %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logger.Errorf("reading config: %v", err)
		os.Exit(2)
	}
	// The config file may itself turn on verbose logging.
	configureLogger(logger, viper.GetBool("verbose"))
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	configureLogger(logger, false)
	return logger
}

func configureLogger(logger *logrus.Logger, verbose bool) {
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	level := logrus.WarnLevel
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
}
