package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var (
	_ output.MetricsPort = (*Prometheus)(nil)
	_ output.MetricsPort = Nop{}
)

const namespace = "research"

// Prometheus records pipeline, agent and tool metrics on its own registry so
// tests and embedded servers do not collide on the global one.
type Prometheus struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	runLatency      *prometheus.HistogramVec
	agentRuns       *prometheus.CounterVec
	agentIterations *prometheus.HistogramVec
	toolCalls       *prometheus.CounterVec
}

func NewPrometheus() *Prometheus {
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_runs_total",
				Help:      "Pipeline runs by terminal status.",
			},
			[]string{"status"},
		),
		runLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_run_duration_seconds",
				Help:      "The latency of a full pipeline run.",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
			[]string{"status"},
		),
		agentRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "agent_runs_total",
				Help:      "Reasoning agent runs by role and whether the iteration budget stopped them.",
			},
			[]string{"role", "stopped"},
		),
		agentIterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agent_iterations",
				Help:      "Reasoning cycles used per agent run.",
				Buckets:   prometheus.LinearBuckets(1, 1, 10),
			},
			[]string{"role"},
		),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Tool invocations by tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.runs,
		m.runLatency,
		m.agentRuns,
		m.agentIterations,
		m.toolCalls,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Prometheus) ObserveRun(status string, duration time.Duration) {
	m.runs.WithLabelValues(status).Inc()
	m.runLatency.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Prometheus) ObserveAgent(role entity.AgentRole, iterations int, stopped bool) {
	label := "false"
	if stopped {
		label = "true"
	}
	m.agentRuns.WithLabelValues(role.String(), label).Inc()
	m.agentIterations.WithLabelValues(role.String()).Observe(float64(iterations))
}

func (m *Prometheus) ObserveToolCall(tool entity.ToolName, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool.String(), outcome).Inc()
}

// Nop discards every observation.
type Nop struct{}

func (Nop) ObserveRun(string, time.Duration)         {}
func (Nop) ObserveAgent(entity.AgentRole, int, bool) {}
func (Nop) ObserveToolCall(entity.ToolName, error)   {}
