// Copyright © 2024 The cxxlint authors

package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/cxxlint/cxxlint/lint"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// offsetToPosition converts a byte offset in content to a 0-based LSP
// position. Characters are counted in UTF-16 code units. Offsets past the
// end of content are clamped to the end.
func offsetToPosition(content string, offset int) protocol.Position {
	if offset > len(content) {
		offset = len(content)
	}
	if offset < 0 {
		offset = 0
	}
	prefix := content[:offset]
	line := strings.Count(prefix, "\n")
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(utf16Len(prefix[lineStart:])),
	}
}

// positionToOffset converts a 0-based LSP position back to a byte offset in
// content. Positions past the end of a line clamp to the line end.
func positionToOffset(content string, pos protocol.Position) int {
	offset := 0
	for i := 0; i < int(pos.Line); i++ {
		nl := strings.IndexByte(content[offset:], '\n')
		if nl < 0 {
			return len(content)
		}
		offset += nl + 1
	}
	line := content[offset:]
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	units := 0
	for i, r := range line {
		if units >= int(pos.Character) {
			return offset + i
		}
		units += utf16RuneLen(r)
	}
	return offset + len(line)
}

// lintToLSPRange converts the byte span of a lint diagnostic to an LSP
// range over content. A diagnostic without an end position gets a
// zero-width range.
func lintToLSPRange(content string, d lint.Diagnostic) protocol.Range {
	start := offsetToPosition(content, d.Pos.Offset)
	if d.EndPos.Line == 0 || d.EndPos.Offset < d.Pos.Offset {
		return protocol.Range{Start: start, End: start}
	}
	return protocol.Range{Start: start, End: offsetToPosition(content, d.EndPos.Offset)}
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16RuneLen(r)
	}
	return n
}

func utf16RuneLen(r rune) int {
	if r == utf8.RuneError || r < 0x10000 {
		return 1
	}
	return 2
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
