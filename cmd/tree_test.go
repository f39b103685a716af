// Copyright © 2024 The cxxlint authors

package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.cpp", "int total;\n")

	code := -1
	cmd := TreeCommand(WithExitFunc(func(c int) { code = c }))
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, -1, code)
	assert.Equal(t, "translation_unit [0, 0] - [1, 0]\n"+
		"  declaration [0, 0] - [0, 10]\n"+
		"    type: primitive_type [0, 0] - [0, 3]\n"+
		"    declarator: identifier [0, 4] - [0, 9]\n"+
		"    \";\" [0, 9] - [0, 10]\n", stdout.String())
}

func TestTreeCommand_Stdin(t *testing.T) {
	cmd := TreeCommand(WithExitFunc(func(int) {}))
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetIn(strings.NewReader("goto x;"))
	cmd.SetArgs([]string{"-"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "goto_statement")
}

func TestTreeCommand_MissingFile(t *testing.T) {
	code := -1
	cmd := TreeCommand(WithExitFunc(func(c int) { code = c }))
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.cpp")})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "cxxlint tree:")
}

func TestTreeCommand_NeedsOneArg(t *testing.T) {
	cmd := TreeCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.Error(t, cmd.Execute())
}
