package vshell

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/brettbedarf/vshell/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccess(t *testing.T) {
	r := Success("echo", "hi").WithCwd("/home")

	assert.Equal(t, "echo", r.Command())
	assert.Equal(t, "hi", r.Output())
	assert.False(t, r.IsError())
	assert.Empty(t, r.Kind())
	assert.Nil(t, r.Target())
	assert.Empty(t, r.Nodes())
	assert.Equal(t, "/home", r.Cwd())
}

func TestFailure(t *testing.T) {
	dir := filesystem.NewDirectory("forest")
	err := &filesystem.Error{Kind: filesystem.KindIsADirectory, Name: "forest", Target: dir}

	r := Failure("cat", err)

	assert.True(t, r.IsError())
	assert.Equal(t, filesystem.KindIsADirectory, r.Kind())
	assert.Equal(t, "is a directory: forest", r.Output())
	assert.Same(t, dir, r.Target())
}

func TestFailure_PlainError(t *testing.T) {
	r := Failure("cp", errors.New("boom"))

	assert.True(t, r.IsError())
	assert.Equal(t, filesystem.KindInternal, r.Kind())
	assert.Equal(t, "boom", r.Output())
}

func TestCommandResult_Immutable(t *testing.T) {
	a, b := filesystem.NewFile("a", ""), filesystem.NewFile("b", "")
	nodes := []filesystem.Node{a, b}

	base := Success("ls", "a\nb")
	r := base.WithNodes(nodes)

	nodes[0] = b
	assert.Same(t, a, r.Nodes()[0], "input slice is copied")

	got := r.Nodes()
	got[0] = b
	assert.Same(t, a, r.Nodes()[0], "accessor returns a copy")

	assert.Empty(t, base.Nodes(), "With* leaves the receiver unchanged")
}

func TestCommandResult_MarshalJSON(t *testing.T) {
	f := filesystem.NewFile("fairy.exe", "")
	d := filesystem.NewDirectory("forest")

	data, err := json.Marshal(Success("ls", "fairy.exe\nforest/").
		WithNodes([]filesystem.Node{f, d}).
		WithCwd("/"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ls", decoded["command"])
	assert.Equal(t, false, decoded["error"])
	assert.Equal(t, "/", decoded["cwd"])
	assert.NotContains(t, decoded, "kind")
	assert.NotContains(t, decoded, "target")

	nodes := decoded["nodes"].([]any)
	require.Len(t, nodes, 2)
	first := nodes[0].(map[string]any)
	assert.Equal(t, f.ID().String(), first["id"])
	assert.Equal(t, "fairy.exe", first["name"])
	assert.Equal(t, "file", first["type"])
	assert.Equal(t, "dir", nodes[1].(map[string]any)["type"])
}

func TestCommandResult_MarshalJSON_Error(t *testing.T) {
	f := filesystem.NewFile("fairy.exe", "")
	r := Failure("cd", &filesystem.Error{Kind: filesystem.KindNotADirectory, Name: "fairy.exe", Target: f})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded struct {
		Error  bool   `json:"error"`
		Kind   string `json:"kind"`
		Output string `json:"output"`
		Target struct {
			Name string `json:"name"`
		} `json:"target"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Error)
	assert.Equal(t, "not_a_directory", decoded.Kind)
	assert.Equal(t, "not a directory: fairy.exe", decoded.Output)
	assert.Equal(t, "fairy.exe", decoded.Target.Name)
}
