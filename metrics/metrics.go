// Package metrics provides Prometheus metrics for shell sessions.
package metrics

import (
	"net/http"

	"github.com/brettbedarf/vshell"
	"github.com/brettbedarf/vshell/filesystem"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// UnknownCommand is the command label for lines that never reached a handler.
// Their token is free user input and would make the label unbounded.
const UnknownCommand = "unknown"

// Recorder counts results and milestones. It subscribes to the result bus
// via Handle and to the tracker via RecordMilestone.
type Recorder struct {
	commandsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	milestonesTotal *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		commandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vshell_commands_total",
				Help: "Total number of processed command lines",
			},
			[]string{"command", "outcome"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vshell_command_errors_total",
				Help: "Total number of failed commands by error kind",
			},
			[]string{"kind"},
		),
		milestonesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vshell_milestones_achieved_total",
				Help: "Total number of achieved progression milestones",
			},
			[]string{"milestone"},
		),
	}
}

// Handle records one result. Blank lines are not counted.
func (r *Recorder) Handle(result vshell.CommandResult) {
	if result.Command() == "" {
		return
	}
	outcome := OutcomeOK
	if result.IsError() {
		outcome = OutcomeError
		r.errorsTotal.WithLabelValues(string(result.Kind())).Inc()
	}
	r.commandsTotal.WithLabelValues(commandLabel(result), outcome).Inc()
}

func commandLabel(result vshell.CommandResult) string {
	switch result.Kind() {
	case filesystem.KindCommandNotFound, filesystem.KindNotAllowed:
		return UnknownCommand
	}
	return result.Command()
}

// RecordMilestone counts an achieved milestone
func (r *Recorder) RecordMilestone(id string) {
	r.milestonesTotal.WithLabelValues(id).Inc()
}

// Handler returns an HTTP handler exposing the metrics gathered by g
func Handler(g prometheus.Gatherer, errorLog promhttp.Logger) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{ErrorLog: errorLog})
}
