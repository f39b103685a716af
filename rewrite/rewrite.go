// Copyright © 2024 The cxxlint authors

// Package rewrite applies byte-range deletions to a working copy of a source
// file.
//
// Edits are always expressed in offsets of the ORIGINAL source. A Buffer
// applies each deletion as soon as it is requested and keeps the list of
// applied edits so that later original offsets can be translated into the
// shrunken working copy. Apply is the batch alternative which sorts edits by
// descending start offset so that no translation is needed at all.
package rewrite

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrOverlap is returned when an edit intersects an edit that was already
	// applied.
	ErrOverlap = errors.New("edit overlaps a previous edit")
	// ErrOutOfRange is returned when an edit does not lie inside the source.
	ErrOutOfRange = errors.New("edit span out of range")
	// ErrMismatch is returned when the source bytes under an edit differ from
	// its OldText.
	ErrMismatch = errors.New("existing text does not match expected content")
)

// Edit deletes the half-open byte range [Start, End) of the original source.
// When OldText is non-empty the range must currently hold exactly that text.
type Edit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	OldText string `json:"old_text,omitempty"`
}

// Len is the number of bytes removed by e.
func (e Edit) Len() int {
	return e.End - e.Start
}

func (e Edit) String() string {
	return fmt.Sprintf("[%d,%d)", e.Start, e.End)
}

// Buffer is an owned, mutable copy of a source file.
type Buffer struct {
	orig    []byte
	working []byte
	applied []Edit // sorted by Start
}

// New returns a Buffer holding a copy of src.
func New(src []byte) *Buffer {
	return &Buffer{
		orig:    src,
		working: bytes.Clone(src),
	}
}

// Delete removes e from the working copy. The edit is validated against the
// original source and against every edit already applied; on error the buffer
// is unchanged.
func (b *Buffer) Delete(e Edit) error {
	if err := check(b.orig, e); err != nil {
		return fmt.Errorf("delete %v: %w", e, err)
	}
	if e.Len() == 0 {
		return nil
	}
	for _, prev := range b.applied {
		if spansConflict(prev, e) {
			return fmt.Errorf("delete %v: %w %v", e, ErrOverlap, prev)
		}
	}
	start := b.Map(e.Start)
	end := start + e.Len()
	b.working = append(b.working[:start], b.working[end:]...)
	b.applied = insertSorted(b.applied, e)
	return nil
}

// Map translates an offset in the original source into the working copy.
// Offsets inside a deleted range collapse onto the start of the deletion.
func (b *Buffer) Map(offset int) int {
	shift := 0
	for _, e := range b.applied {
		if e.Start >= offset {
			break
		}
		if e.End > offset {
			return e.Start - shift
		}
		shift += e.Len()
	}
	return offset - shift
}

// Bytes returns the current working copy. The caller must not modify it.
func (b *Buffer) Bytes() []byte {
	return b.working
}

// Changed reports whether any deletion was applied.
func (b *Buffer) Changed() bool {
	return len(b.applied) > 0
}

// Edits returns the applied edits ordered by start offset.
func (b *Buffer) Edits() []Edit {
	return append([]Edit(nil), b.applied...)
}

// Apply returns a copy of src with every edit deleted. Edits are checked for
// range, content and mutual overlap before any byte is touched, then spliced
// out from the end of the file towards the start.
func Apply(src []byte, edits []Edit) ([]byte, error) {
	sorted := make([]Edit, 0, len(edits))
	for i, e := range edits {
		if err := check(src, e); err != nil {
			return nil, fmt.Errorf("edit %d %v: %w", i, e, err)
		}
		if e.Len() > 0 {
			sorted = append(sorted, e)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})
	for i := 1; i < len(sorted); i++ {
		if spansConflict(sorted[i-1], sorted[i]) {
			return nil, fmt.Errorf("edit %v: %w %v", sorted[i], ErrOverlap, sorted[i-1])
		}
	}
	out := bytes.Clone(src)
	for _, e := range sorted {
		out = append(out[:e.Start], out[e.End:]...)
	}
	return out, nil
}

func check(src []byte, e Edit) error {
	if e.Start < 0 || e.End < e.Start || e.End > len(src) {
		return ErrOutOfRange
	}
	if e.OldText != "" && string(src[e.Start:e.End]) != e.OldText {
		return ErrMismatch
	}
	return nil
}

func spansConflict(a, b Edit) bool {
	return a.Start < b.End && b.Start < a.End
}

func insertSorted(edits []Edit, e Edit) []Edit {
	i := sort.Search(len(edits), func(i int) bool {
		return edits[i].Start > e.Start
	})
	edits = append(edits, Edit{})
	copy(edits[i+1:], edits[i:])
	edits[i] = e
	return edits
}
