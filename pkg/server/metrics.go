package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crystal-mush/bwho/pkg/events"
	"github.com/crystal-mush/bwho/pkg/whois"
)

// Metrics holds Prometheus metric descriptors for the host. A nil *Metrics
// records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	invocationsTotal *prometheus.CounterVec
	commandsUnknown  prometheus.Counter
	reloadsTotal     *prometheus.CounterVec
	eventsTotal      *prometheus.CounterVec
	rosterPlayers    prometheus.Gauge
	adminRecords     prometheus.Gauge
	uptimeSeconds    prometheus.GaugeFunc
}

// NewMetrics creates the host metrics on a fresh registry, together with the
// Go runtime and process collectors.
func NewMetrics(startTime time.Time) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startTime: startTime,
		invocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bwho_invocations_total",
			Help: "Lookup command invocations by command and final status.",
		}, []string{"command", "status"}),
		commandsUnknown: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bwho_unknown_commands_total",
			Help: "Console lines naming a command that is not registered.",
		}),
		reloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bwho_reloads_total",
			Help: "File source reloads by source and result.",
		}, []string{"source", "result"}),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bwho_events_total",
			Help: "Events emitted on the reply bus by type.",
		}, []string{"type"}),
		rosterPlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bwho_roster_players",
			Help: "Players in the last loaded roster snapshot.",
		}),
		adminRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bwho_admin_records",
			Help: "Admin records currently loaded.",
		}),
	}
	m.uptimeSeconds = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "bwho_uptime_seconds",
		Help: "Host uptime in seconds.",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	m.registry.MustRegister(
		m.invocationsTotal,
		m.commandsUnknown,
		m.reloadsTotal,
		m.eventsTotal,
		m.rosterPlayers,
		m.adminRecords,
		m.uptimeSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Prime creates the invocation series for every status of command so they
// are exported as zero before the first run.
func (m *Metrics) Prime(command string) {
	if m == nil {
		return
	}
	for _, st := range whois.Statuses() {
		m.invocationsTotal.WithLabelValues(command, st.String())
	}
}

// Invocation counts one finished command run.
func (m *Metrics) Invocation(command string, st whois.Status) {
	if m == nil {
		return
	}
	m.invocationsTotal.WithLabelValues(command, st.String()).Inc()
}

// UnknownCommand counts a line naming no registered command.
func (m *Metrics) UnknownCommand() {
	if m == nil {
		return
	}
	m.commandsUnknown.Inc()
}

// Reload counts one source reload.
func (m *Metrics) Reload(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloadsTotal.WithLabelValues(source, result).Inc()
}

// Receive implements events.Subscriber; the metrics subscribe globally to
// count every emitted event.
func (m *Metrics) Receive(ev events.Event) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(ev.Type.String()).Inc()
}

// Closed implements events.Subscriber.
func (m *Metrics) Closed() bool { return false }

// SetRosterPlayers records the size of the loaded roster.
func (m *Metrics) SetRosterPlayers(n int) {
	if m == nil {
		return
	}
	m.rosterPlayers.Set(float64(n))
}

// SetAdminRecords records the number of loaded admin records.
func (m *Metrics) SetAdminRecords(n int) {
	if m == nil {
		return
	}
	m.adminRecords.Set(float64(n))
}

// Handler returns an http.Handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
