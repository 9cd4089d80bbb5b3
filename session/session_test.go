package session

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/config"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/brettbedarf/vshell/progression"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	results []vshell.CommandResult
}

func (r *recorder) last(t *testing.T) vshell.CommandResult {
	t.Helper()
	require.NotEmpty(t, r.results)
	return r.results[len(r.results)-1]
}

func newTestSession(t *testing.T, cfg *config.Config) (*Session, *recorder) {
	t.Helper()
	s, err := New(cfg, nil)
	require.NoError(t, err)
	rec := &recorder{}
	s.Subscribe(func(r vshell.CommandResult) { rec.results = append(rec.results, r) })
	return s, rec
}

func TestSession_DefaultProgression(t *testing.T) {
	s, rec := newTestSession(t, nil)
	require.NotNil(t, s.Filter())

	run := func(line string) vshell.CommandResult {
		s.ProcessLine(line)
		return rec.last(t)
	}

	r := run("cat fairy.exe")
	assert.True(t, r.IsError())
	assert.Equal(t, filesystem.KindNotAllowed, r.Kind())
	assert.Equal(t, "command not found: cat", r.Output())

	r = run("ls")
	assert.Equal(t, "bin/\nfairy.exe\nforest/\nhome/", r.Output())

	run("cd home")
	assert.True(t, s.Tracker().Achieved(progression.EnterHome))

	r = run("find diary.txt")
	assert.Equal(t, filesystem.KindNotAllowed, r.Kind())

	r = run("cp find")
	assert.False(t, r.IsError())
	assert.True(t, s.Tracker().Achieved(progression.FindUnlocked))
	assert.True(t, s.Filter().IsAllowed("find"))

	r = run("find diary.txt")
	assert.Equal(t, "/forest/diary.txt", r.Output())

	run("cd core")
	run("cp cat")
	assert.True(t, s.Tracker().Achieved(progression.CatUnlocked))

	run("cd /")
	r = run("cat fairy.exe")
	assert.Equal(t, "I am Ririn.", r.Output())

	run("cd bin")
	r = run("ls")
	assert.Equal(t, "cat\nfind", r.Output())

	assert.Equal(t,
		[]string{progression.EnterHome, progression.FindUnlocked, progression.CatUnlocked},
		s.Tracker().AchievedIDs())

	count, err := testutil.GatherAndCount(s.Registry(), "vshell_milestones_achieved_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSession_EffectsVisibleToLaterSubscribers(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)

	var sawAchieved bool
	s.Subscribe(func(r vshell.CommandResult) {
		if r.Command() == "cd" && r.Cwd() == "/home" {
			sawAchieved = s.Tracker().Achieved(progression.EnterHome)
		}
	})

	s.ProcessLine("cd home")
	assert.True(t, sawAchieved)
}

func TestSession_OnMilestone(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)

	var got []progression.Milestone
	s.OnMilestone(func(m progression.Milestone) { got = append(got, m) })

	s.ProcessLine("cd home")
	s.ProcessLine("cd home") // already achieved
	require.Len(t, got, 1)
	assert.Equal(t, progression.EnterHome, got[0].ID)
	assert.NotEmpty(t, got[0].Narrative)
}

func TestSession_Unrestricted(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Unrestricted = true
	s, rec := newTestSession(t, cfg)

	assert.Nil(t, s.Filter())

	s.ProcessLine("cat fairy.exe")
	assert.Equal(t, "I am Ririn.", rec.last(t).Output())

	// milestones still progress without a gate
	s.ProcessLine("cd home")
	s.ProcessLine("cp find")
	assert.True(t, s.Tracker().Achieved(progression.FindUnlocked))
}

func TestSession_BlankLine(t *testing.T) {
	s, rec := newTestSession(t, nil)

	s.ProcessLine("   ")
	assert.Empty(t, rec.results, "the filter drops blank lines")
}

func TestSession_Unsubscribe(t *testing.T) {
	s, rec := newTestSession(t, nil)
	calls := 0
	sub := s.Subscribe(func(vshell.CommandResult) { calls++ })

	s.ProcessLine("pwd")
	require.True(t, s.Unsubscribe(sub))
	s.ProcessLine("pwd")

	assert.Equal(t, 1, calls)
	assert.Len(t, rec.results, 2)
}

func TestSession_Stage(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)

	for _, o := range s.Stage().Objects() {
		assert.False(t, o.Visible)
	}
	s.ProcessLine("ls")
	objects := s.Stage().Objects()
	require.Len(t, objects, 4)
	for _, o := range objects {
		assert.True(t, o.Visible, o.Name)
	}
}

func TestSession_ServeMetrics(t *testing.T) {
	s, err := New(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, s.MetricsAddr())
	require.NoError(t, s.Shutdown(context.Background()), "shutdown without a server is a no-op")

	require.NoError(t, s.ServeMetrics("127.0.0.1:0"))
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	s.ProcessLine("ls")

	resp, err := http.Get("http://" + s.MetricsAddr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `vshell_commands_total{command="ls",outcome="ok"} 1`)
}
