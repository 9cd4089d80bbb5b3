package shell

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) ProcessLine(raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, raw)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func TestSerializer_PreservesOrder(t *testing.T) {
	rec := &recorder{}
	s := NewSerializer(rec, 4)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	var want []string
	for n := range 20 {
		line := fmt.Sprintf("echo %d", n)
		want = append(want, line)
		require.NoError(t, s.Submit(ctx, line))
	}
	s.Close()

	require.NoError(t, <-errCh)
	assert.Equal(t, want, rec.snapshot())
}

func TestSerializer_ConcurrentSubmit(t *testing.T) {
	rec := &recorder{}
	s := NewSerializer(rec, 0)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range 25 {
				assert.NoError(t, s.Submit(ctx, fmt.Sprintf("%d-%d", w, n)))
			}
		}()
	}
	wg.Wait()
	s.Close()
	require.NoError(t, <-errCh)

	lines := rec.snapshot()
	require.Len(t, lines, 100)
	// per-producer order survives interleaving
	last := map[int]int{}
	for _, line := range lines {
		var w, n int
		_, err := fmt.Sscanf(line, "%d-%d", &w, &n)
		require.NoError(t, err)
		if prev, ok := last[w]; ok {
			assert.Greater(t, n, prev)
		}
		last[w] = n
	}
}

func TestSerializer_SubmitAfterClose(t *testing.T) {
	s := NewSerializer(&mocks.MockLineProcessor{}, 1)
	s.Close()
	s.Close()

	assert.ErrorIs(t, s.Submit(context.Background(), "ls"), ErrSerializerClosed)
}

func TestSerializer_CloseRacingSubmit(t *testing.T) {
	for range 50 {
		rec := &recorder{}
		s := NewSerializer(rec, 8)
		ctx := context.Background()

		errCh := make(chan error, 1)
		go func() { errCh <- s.Run(ctx) }()

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
		)
		for w := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for n := range 20 {
					if err := s.Submit(ctx, fmt.Sprintf("%d-%d", w, n)); err != nil {
						assert.ErrorIs(t, err, ErrSerializerClosed)
						return
					}
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}
		s.Close()
		wg.Wait()
		require.NoError(t, <-errCh)

		assert.Len(t, rec.snapshot(), accepted, "every accepted line is processed")
	}
}

func TestSerializer_DrainsOnClose(t *testing.T) {
	p := &mocks.MockLineProcessor{}
	p.On("ProcessLine", mock.Anything)
	s := NewSerializer(p, 3)
	ctx := context.Background()

	for _, line := range []string{"a", "b", "c"} {
		require.NoError(t, s.Submit(ctx, line))
	}
	s.Close()

	require.NoError(t, s.Run(ctx))
	p.AssertNumberOfCalls(t, "ProcessLine", 3)
}

func TestSerializer_ContextCancel(t *testing.T) {
	s := NewSerializer(&mocks.MockLineProcessor{}, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// nobody is running, so an unbuffered submit blocks until the deadline
	assert.ErrorIs(t, s.Submit(ctx, "ls"), context.DeadlineExceeded)
	assert.ErrorIs(t, s.Run(ctx), context.DeadlineExceeded)
}

func TestSerializer_FeedsInterpreter(t *testing.T) {
	i, _, bus := newTestInterpreter(t)
	var got []string
	bus.Subscribe(func(r vshell.CommandResult) { got = append(got, r.Output()) })

	s := NewSerializer(i, 8)
	ctx := context.Background()
	for _, line := range []string{"cd home", "pwd", "cd core", "pwd"} {
		require.NoError(t, s.Submit(ctx, line))
	}
	s.Close()
	require.NoError(t, s.Run(ctx))

	assert.Equal(t, []string{"", "/home", "", "/home/core"}, got)
}
