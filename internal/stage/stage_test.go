package stage

import (
	"testing"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	nodes []filesystem.Node
}

func (f *fakeLister) ListCurrent() []filesystem.Node { return f.nodes }

func TestNew_AllHidden(t *testing.T) {
	l := &fakeLister{nodes: []filesystem.Node{
		filesystem.NewDirectory("bin"),
		filesystem.NewFile("fairy.exe", ""),
	}}

	s := New(l, 0)

	objs := s.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "bin", objs[0].Name)
	assert.Equal(t, filesystem.DirNodeType, objs[0].Type)
	for _, o := range objs {
		assert.False(t, o.Visible)
		assert.False(t, o.Shown)
	}
}

func TestStage_Layout(t *testing.T) {
	var nodes []filesystem.Node
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		nodes = append(nodes, filesystem.NewFile(name, ""))
	}

	s := New(&fakeLister{nodes: nodes}, 2)

	objs := s.Objects()
	assert.Equal(t, [2]int{0, 0}, [2]int{objs[0].Row, objs[0].Col})
	assert.Equal(t, [2]int{0, 1}, [2]int{objs[1].Row, objs[1].Col})
	assert.Equal(t, [2]int{1, 0}, [2]int{objs[2].Row, objs[2].Col})
	assert.Equal(t, [2]int{2, 0}, [2]int{objs[4].Row, objs[4].Col})
}

func TestStage_LsReveals(t *testing.T) {
	a, b := filesystem.NewFile("a", ""), filesystem.NewFile("b", "")
	s := New(&fakeLister{nodes: []filesystem.Node{a, b}}, 0)

	s.Handle(vshell.Success("ls", "a").WithNodes([]filesystem.Node{a}))

	objs := s.Objects()
	assert.True(t, objs[0].Visible)
	assert.False(t, objs[1].Visible)
}

func TestStage_CatMarksShown(t *testing.T) {
	a := filesystem.NewFile("a", "text")
	s := New(&fakeLister{nodes: []filesystem.Node{a}}, 0)

	s.Handle(vshell.Success("cat", "text").WithTarget(a))

	assert.True(t, s.Objects()[0].Shown)
}

func TestStage_IgnoresErrors(t *testing.T) {
	a := filesystem.NewFile("a", "")
	l := &fakeLister{nodes: []filesystem.Node{a}}
	s := New(l, 0)

	l.nodes = nil
	s.Handle(vshell.Failure("cd", filesystem.NewError(filesystem.KindNoSuchPath, "x", "")))

	assert.Len(t, s.Objects(), 1, "failed cd keeps the stage")
}

func TestStage_WithFileSystem(t *testing.T) {
	fs, err := filesystem.NewFS(filesystem.SeedFunc(func(root *filesystem.Directory) error {
		forest := filesystem.NewDirectory("forest")
		if err := root.Insert(forest); err != nil {
			return err
		}
		if err := root.Insert(filesystem.NewFile("fairy.exe", "I am Ririn.")); err != nil {
			return err
		}
		return forest.Insert(filesystem.NewFile("diary.txt", "secret"))
	}))
	require.NoError(t, err)
	s := New(fs, 0)

	s.Handle(vshell.Success("ls", "").WithNodes(fs.ListCurrent()))
	assert.True(t, s.Objects()[0].Visible)

	require.NoError(t, fs.ChangeDirectory("forest"))
	s.Handle(vshell.Success("cd", ""))

	objs := s.Objects()
	require.Len(t, objs, 1)
	assert.Equal(t, "diary.txt", objs[0].Name)
	assert.False(t, objs[0].Visible, "new directory starts hidden")
}

func TestStage_SnapshotIsCopy(t *testing.T) {
	s := New(&fakeLister{nodes: []filesystem.Node{filesystem.NewFile("a", "")}}, 0)

	objs := s.Objects()
	objs[0].Visible = true

	assert.False(t, s.Objects()[0].Visible)
}
