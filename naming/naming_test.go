// Copyright © 2024 The cxxlint authors

package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCamelCase(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"", false},
		{"myVar", true},
		{"MyVar", false},
		{"my_var", false},
		{"myID", false},
		{"myId", true},
		{"x", true},
		{"i2c", true},
		{"value2Go", true},
		{"my var", false},
		{"my\tvar", false},
		{"_private", false},
		{"9lives", false},
		{"aBcD", true},
		{"aBCd", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsCamelCase(tt.name), "IsCamelCase(%q)", tt.name)
	}
}

func TestIsCamelCase_DigitResetsUppercaseRun(t *testing.T) {
	// A digit between two capitals breaks the run.
	assert.True(t, IsCamelCase("aB1C"))
}

func TestIsAllUppercase(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"", true},
		{"MAXSIZE", true},
		{"MAX_SIZE", false},
		{"MAX1", false},
		{"maxSize", false},
		{"Max", false},
		{"ÄÖÜ", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAllUppercase(tt.name), "IsAllUppercase(%q)", tt.name)
	}
}
