// Copyright © 2024 The cxxlint authors

// Package naming classifies identifiers against the naming conventions
// enforced by the linter.
package naming

import "unicode"

// IsCamelCase reports whether name is lower camelCase.
//
// The first rune must be a lowercase letter. Underscores and whitespace are
// rejected anywhere, and two uppercase letters in a row are rejected so that
// acronyms are written "myId" rather than "myID".
func IsCamelCase(name string) bool {
	if name == "" {
		return false
	}
	prevUpper := false
	for i, r := range name {
		if i == 0 {
			if !unicode.IsLower(r) {
				return false
			}
			continue
		}
		if r == '_' || unicode.IsSpace(r) {
			return false
		}
		if unicode.IsUpper(r) {
			if prevUpper {
				return false
			}
			prevUpper = true
		} else {
			prevUpper = false
		}
	}
	return true
}

// IsAllUppercase reports whether every rune of name is an uppercase letter.
// Digits and underscores are not tolerated, so "MAX_SIZE" fails. The empty
// string is vacuously uppercase.
func IsAllUppercase(name string) bool {
	for _, r := range name {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
