package filesystem

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func TestNodeType_String(t *testing.T) {
	assert.Equal(t, "file", FileNodeType.String())
	assert.Equal(t, "dir", DirNodeType.String())
	assert.Equal(t, "unknown", UnknownNodeType.String())
}

func TestNewFile(t *testing.T) {
	f := NewFile("diary.txt", "secret")

	assert.Equal(t, "diary.txt", f.Name())
	assert.Equal(t, "secret", f.Content())
	assert.Equal(t, FileNodeType, f.Type())
	assert.Nil(t, f.Parent())
	assert.NotEqual(t, NewFile("diary.txt", "secret").ID(), f.ID(), "every node gets its own identity")

	f.SetContent("changed")
	assert.Equal(t, "changed", f.Content())
}

func TestDirectory_Insert(t *testing.T) {
	dir := NewDirectory("forest")
	f := NewFile("Diary.txt", "")

	require.NoError(t, dir.Insert(f))

	assert.Same(t, dir, f.Parent())
	assert.Equal(t, 1, dir.Len())

	got, ok := dir.Child("diary.TXT")
	require.True(t, ok)
	assert.Same(t, f, got)
	assert.Equal(t, "Diary.txt", got.Name(), "original case is preserved")
}

func TestDirectory_Insert_Conflict(t *testing.T) {
	dir := NewDirectory("forest")
	first := NewFile("a.txt", "first")
	require.NoError(t, dir.Insert(first))

	err := dir.Insert(NewFile("A.TXT", "second"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, KindConflict, KindOf(err))

	got, _ := dir.Child("a.txt")
	assert.Same(t, first, got, "original entry is retained")
	assert.Equal(t, 1, dir.Len())
}

func TestDirectory_Insert_Invalid(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		err := NewDirectory("d").Insert(nil)
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("typed nil", func(t *testing.T) {
		d := NewDirectory("d")
		assert.NotPanics(t, func() {
			assert.ErrorIs(t, d.Insert((*File)(nil)), ErrInternal)
			assert.ErrorIs(t, d.Insert((*Directory)(nil)), ErrInternal)
		})
		assert.Equal(t, 0, d.Len())
	})

	t.Run("already attached", func(t *testing.T) {
		a, b := NewDirectory("a"), NewDirectory("b")
		f := NewFile("f", "")
		require.NoError(t, a.Insert(f))

		err := b.Insert(f)
		assert.ErrorIs(t, err, ErrInternal)
		assert.Same(t, a, f.Parent())
		assert.Equal(t, 0, b.Len())
	})

	t.Run("into itself", func(t *testing.T) {
		d := NewDirectory("d")
		assert.ErrorIs(t, d.Insert(d), ErrInternal)
	})

	t.Run("into descendant", func(t *testing.T) {
		outer, inner := NewDirectory("outer"), NewDirectory("inner")
		require.NoError(t, outer.Insert(inner))

		assert.ErrorIs(t, inner.Insert(outer), ErrInternal)
	})
}

func TestDirectory_Remove(t *testing.T) {
	dir := NewDirectory("bin")
	f := NewFile("cat", "")
	require.NoError(t, dir.Insert(f))

	removed, ok := dir.Remove("CAT")
	require.True(t, ok)
	assert.Same(t, f, removed)
	assert.Nil(t, f.Parent(), "removed node is detached")
	assert.Equal(t, 0, dir.Len())

	_, ok = dir.Remove("cat")
	assert.False(t, ok)

	// a detached node can be attached again
	require.NoError(t, dir.Insert(f))
}

func TestDirectory_Children_Order(t *testing.T) {
	dir := NewDirectory("/")
	for _, n := range []Node{
		NewFile("zeta", ""),
		NewDirectory("Beta"),
		NewFile("alpha", ""),
		NewDirectory("gamma"),
		NewFile("Alpha2", ""),
	} {
		require.NoError(t, dir.Insert(n))
	}

	assert.Equal(t, []string{"alpha", "Alpha2", "Beta", "gamma", "zeta"}, names(dir.Children()))
	// calling twice yields the same order
	assert.Equal(t, names(dir.Children()), names(dir.Children()))
}

func TestSortNodes_TieBreak(t *testing.T) {
	// Names that only differ by case cannot share a directory, but sorting
	// is also used on arbitrary node sets.
	nodes := []Node{NewFile("b", ""), NewFile("B", ""), NewFile("a", "")}
	SortNodes(nodes)
	assert.Equal(t, []string{"a", "B", "b"}, names(nodes))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "forest/", DisplayName(NewDirectory("forest")))
	assert.Equal(t, "fairy.exe", DisplayName(NewFile("fairy.exe", "")))
}

func TestDirectory_ConcurrentInsert(t *testing.T) {
	dir := NewDirectory("d")

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- dir.Insert(NewFile("same", ""))
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one insert wins")
	assert.Equal(t, 1, dir.Len())
}
