// Copyright © 2024 The cxxlint authors

package main

import "github.com/cxxlint/cxxlint/cmd"

func main() {
	cmd.Execute()
}
