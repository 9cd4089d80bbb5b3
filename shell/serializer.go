package shell

import (
	"context"
	"errors"
	"sync"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/internal/util"
)

// ErrSerializerClosed is returned by Submit after Close
var ErrSerializerClosed = errors.New("serializer closed")

// Serializer funnels lines from any number of goroutines into a single
// LineProcessor, one at a time and in submission order.
type Serializer struct {
	p     vshell.LineProcessor
	lines chan string
	// stopping rejects new and blocked submits; done tells Run to drain and
	// is closed only after every in-flight Submit has returned
	stopping  chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

// NewSerializer creates a serializer with room for buffer pending lines.
// Run must be called to start draining.
func NewSerializer(p vshell.LineProcessor, buffer int) *Serializer {
	if buffer < 0 {
		buffer = 0
	}
	return &Serializer{
		p:        p,
		lines:    make(chan string, buffer),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Submit queues line, blocking while the buffer is full. A nil return means
// the line will be processed unless Run's context is cancelled.
func (s *Serializer) Submit(ctx context.Context, line string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSerializerClosed
	}
	s.inFlight.Add(1)
	s.mu.Unlock()
	defer s.inFlight.Done()

	select {
	case <-s.stopping:
		return ErrSerializerClosed
	case <-ctx.Done():
		return ctx.Err()
	case s.lines <- line:
		return nil
	}
}

// Run processes queued lines until ctx is cancelled or Close is called.
// After Close, lines already queued are processed before Run returns nil.
func (s *Serializer) Run(ctx context.Context) error {
	logger := util.GetLogger("Serializer.Run")
	logger.Debug().Int("buffer", cap(s.lines)).Msg("Serializer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line := <-s.lines:
			s.p.ProcessLine(line)
		case <-s.done:
			for {
				select {
				case line := <-s.lines:
					s.p.ProcessLine(line)
				default:
					logger.Debug().Msg("Serializer drained")
					return nil
				}
			}
		}
	}
}

// Close stops accepting lines and waits for pending Submit calls to settle.
// It is safe to call more than once.
func (s *Serializer) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.stopping)
		s.mu.Unlock()

		s.inFlight.Wait()
		close(s.done)
	})
}
