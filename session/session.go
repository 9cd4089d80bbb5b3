// Package session assembles the shell components for one player.
package session

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/config"
	"github.com/brettbedarf/vshell/events"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/brettbedarf/vshell/internal/stage"
	"github.com/brettbedarf/vshell/internal/util"
	"github.com/brettbedarf/vshell/metrics"
	"github.com/brettbedarf/vshell/policy"
	"github.com/brettbedarf/vshell/progression"
	"github.com/brettbedarf/vshell/shell"
	"github.com/brettbedarf/vshell/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Session contains the file system, the result bus and every built-in
// subscriber. Display subscribers attach after New so they observe a result
// after the tracker has applied its effects.
type Session struct {
	*filesystem.FileSystem
	cfg *config.Config

	bus         *events.Bus[vshell.CommandResult]
	interpreter *shell.Interpreter
	filter      *policy.Filter // nil when commands are unrestricted
	entry       vshell.LineProcessor
	tracker     *progression.Tracker
	stage       *stage.Stage
	registry    *prometheus.Registry
	recorder    *metrics.Recorder

	server *http.Server
	addr   net.Addr
}

var _ vshell.LineProcessor = (*Session)(nil)

// New builds a session for w. A nil world selects the embedded default.
func New(cfg *config.Config, w *world.World) (*Session, error) {
	logger := util.GetLogger("session.New")

	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if w == nil {
		var err error
		if w, err = world.Default(); err != nil {
			return nil, err
		}
	}

	fs, err := w.Build()
	if err != nil {
		return nil, err
	}

	s := &Session{
		FileSystem: fs,
		cfg:        cfg,
		bus:        events.NewBus[vshell.CommandResult](),
		registry:   prometheus.NewRegistry(),
	}
	s.interpreter = shell.NewInterpreter(fs, s.bus)
	s.entry = s.interpreter

	// gate stays a nil interface when there is no filter
	var gate progression.Gate
	if !cfg.Unrestricted && w.Policy != nil {
		s.filter = policy.NewFilter(s.interpreter, s.bus,
			policy.WithAllowed(w.Policy.Allow...),
			policy.WithBlocked(w.Policy.Block...),
			policy.WithCwd(fs.CurrentPath),
		)
		s.entry = s.filter
		gate = s.filter
	}

	s.registry.MustRegister(collectors.NewGoCollector())
	s.recorder = metrics.NewRecorder(s.registry)
	s.tracker = progression.NewTracker(w.Milestones, gate)
	s.tracker.OnAchieved(func(m progression.Milestone) { s.recorder.RecordMilestone(m.ID) })
	s.stage = stage.New(fs, cfg.ItemsPerRow)

	s.bus.Subscribe(s.tracker.Handle)
	s.bus.Subscribe(s.stage.Handle)
	s.bus.Subscribe(s.recorder.Handle)

	logger.Info().
		Bool("restricted", s.filter != nil).
		Int("milestones", len(w.Milestones)).
		Msg("Session initialized")
	return s, nil
}

// ProcessLine is the single inbound entry point
func (s *Session) ProcessLine(raw string) {
	s.entry.ProcessLine(raw)
}

// Subscribe attaches fn to the result bus
func (s *Session) Subscribe(fn func(vshell.CommandResult)) events.Subscription {
	return s.bus.Subscribe(fn)
}

// Unsubscribe detaches a subscriber added with Subscribe
func (s *Session) Unsubscribe(sub events.Subscription) bool {
	return s.bus.Unsubscribe(sub)
}

// OnMilestone registers fn for achieved milestones
func (s *Session) OnMilestone(fn func(progression.Milestone)) events.Subscription {
	return s.tracker.OnAchieved(fn)
}

func (s *Session) Interpreter() *shell.Interpreter { return s.interpreter }
func (s *Session) Filter() *policy.Filter { return s.filter }
func (s *Session) Tracker() *progression.Tracker { return s.tracker }
func (s *Session) Stage() *stage.Stage { return s.stage }
func (s *Session) Registry() *prometheus.Registry { return s.registry }
func (s *Session) Config() *config.Config { return s.cfg }
func (s *Session) Bus() *events.Bus[vshell.CommandResult] { return s.bus }

// ServeMetrics starts the /metrics endpoint on addr in the background. It
// returns once the listener is bound.
func (s *Session) ServeMetrics(addr string) error {
	logger := util.GetLogger("session.ServeMetrics")

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	errLog := util.NewLogLogger("MetricsServer", util.ErrorLevel)
	mux.Handle("/metrics", metrics.Handler(s.registry, errLog))
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          errLog,
	}

	s.addr = ln.Addr()

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
	logger.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	return nil
}

// MetricsAddr is the bound metrics address, or "" when not serving
func (s *Session) MetricsAddr() string {
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// Shutdown stops the metrics endpoint if it is running
func (s *Session) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
