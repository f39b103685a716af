// Copyright © 2024 The cxxlint authors

package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(src, sub string) Edit {
	i := strings.Index(src, sub)
	if i < 0 {
		panic("substring not found: " + sub)
	}
	return Edit{Start: i, End: i + len(sub), OldText: sub}
}

func TestBuffer_DeleteSingle(t *testing.T) {
	src := "int main() { using namespace std; return 0; }"
	b := New([]byte(src))
	require.NoError(t, b.Delete(span(src, "using namespace std;")))
	assert.Equal(t, "int main() {  return 0; }", string(b.Bytes()))
	assert.True(t, b.Changed())
	// The original is untouched.
	assert.Equal(t, "int main() { using namespace std; return 0; }", src)
}

func TestBuffer_DeleteInTraversalOrder(t *testing.T) {
	src := "A;using namespace std;B;using namespace std;C;"
	first := Edit{Start: 2, End: 22}
	second := Edit{Start: 24, End: 44}
	b := New([]byte(src))
	require.NoError(t, b.Delete(first))
	require.NoError(t, b.Delete(second))
	assert.Equal(t, "A;B;C;", string(b.Bytes()))
	assert.Equal(t, []Edit{first, second}, b.Edits())
}

func TestBuffer_DeleteOutOfOrder(t *testing.T) {
	src := "0123456789"
	b := New([]byte(src))
	require.NoError(t, b.Delete(Edit{Start: 6, End: 8}))
	require.NoError(t, b.Delete(Edit{Start: 1, End: 3, OldText: "12"}))
	assert.Equal(t, "034589", string(b.Bytes()))
	assert.Equal(t, []Edit{{Start: 1, End: 3, OldText: "12"}, {Start: 6, End: 8}}, b.Edits())
}

func TestBuffer_Map(t *testing.T) {
	b := New([]byte("0123456789"))
	require.NoError(t, b.Delete(Edit{Start: 2, End: 4}))
	require.NoError(t, b.Delete(Edit{Start: 6, End: 7}))
	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{2, 2},
		{3, 2}, // inside the first deletion
		{4, 2},
		{5, 3},
		{6, 4},
		{7, 4},
		{10, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Map(tt.offset), "offset %d", tt.offset)
	}
}

func TestBuffer_Errors(t *testing.T) {
	src := "0123456789"
	tests := []struct {
		name string
		edit Edit
		want error
	}{
		{"negative", Edit{Start: -1, End: 2}, ErrOutOfRange},
		{"inverted", Edit{Start: 5, End: 4}, ErrOutOfRange},
		{"past end", Edit{Start: 8, End: 11}, ErrOutOfRange},
		{"stale text", Edit{Start: 0, End: 2, OldText: "xx"}, ErrMismatch},
		{"overlap left", Edit{Start: 3, End: 5}, ErrOverlap},
		{"overlap inner", Edit{Start: 5, End: 6}, ErrOverlap},
		{"overlap right", Edit{Start: 6, End: 9}, ErrOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New([]byte(src))
			require.NoError(t, b.Delete(Edit{Start: 4, End: 7}))
			before := string(b.Bytes())
			err := b.Delete(tt.edit)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, before, string(b.Bytes()))
			assert.Len(t, b.Edits(), 1)
		})
	}
}

func TestBuffer_AdjacentAndEmpty(t *testing.T) {
	b := New([]byte("abcdef"))
	require.NoError(t, b.Delete(Edit{Start: 2, End: 4}))
	require.NoError(t, b.Delete(Edit{Start: 4, End: 6}))
	require.NoError(t, b.Delete(Edit{Start: 0, End: 2}))
	require.NoError(t, b.Delete(Edit{Start: 3, End: 3}))
	assert.Equal(t, "", string(b.Bytes()))
	assert.Len(t, b.Edits(), 3)
}

func TestBuffer_Unchanged(t *testing.T) {
	b := New([]byte("int x;"))
	assert.False(t, b.Changed())
	assert.Equal(t, "int x;", string(b.Bytes()))
	assert.Empty(t, b.Edits())
}

// The remaining text must read as the original with the deleted substrings
// excised, whichever order the deletions are requested in.
func TestBuffer_Locality(t *testing.T) {
	src := "#include <x>\nusing namespace std;\nint main() {\n  using namespace std;\n}\n"
	first := strings.Index(src, "using namespace std;")
	second := strings.LastIndex(src, "using namespace std;")
	n := len("using namespace std;")
	want := src[:first] + src[first+n:second] + src[second+n:]

	forward := New([]byte(src))
	require.NoError(t, forward.Delete(Edit{Start: first, End: first + n}))
	require.NoError(t, forward.Delete(Edit{Start: second, End: second + n}))
	assert.Equal(t, want, string(forward.Bytes()))

	backward := New([]byte(src))
	require.NoError(t, backward.Delete(Edit{Start: second, End: second + n}))
	require.NoError(t, backward.Delete(Edit{Start: first, End: first + n}))
	assert.Equal(t, want, string(backward.Bytes()))

	batch, err := Apply([]byte(src), []Edit{{Start: first, End: first + n}, {Start: second, End: second + n}})
	require.NoError(t, err)
	assert.Equal(t, want, string(batch))
}

func TestApply(t *testing.T) {
	src := []byte("0123456789")
	out, err := Apply(src, []Edit{{Start: 1, End: 2}, {Start: 8, End: 10}, {Start: 4, End: 6, OldText: "45"}})
	require.NoError(t, err)
	assert.Equal(t, "02367", string(out))
	assert.Equal(t, "0123456789", string(src))

	out, err = Apply(src, nil)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(out))
}

func TestApply_Errors(t *testing.T) {
	src := []byte("0123456789")
	_, err := Apply(src, []Edit{{Start: 1, End: 5}, {Start: 4, End: 6}})
	assert.ErrorIs(t, err, ErrOverlap)

	_, err = Apply(src, []Edit{{Start: 1, End: 2}, {Start: 9, End: 12}})
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "edit 1")

	_, err = Apply(src, []Edit{{Start: 0, End: 1, OldText: "9"}})
	assert.ErrorIs(t, err, ErrMismatch)
}
