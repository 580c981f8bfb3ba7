// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the orchestration engine: task and tool counters, LLM latency, re-plan
// and HITL-pause counts, and spans around each run phase.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument the engine and its collaborators record
// into. One instance per process, registered on a private registry so tests
// can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	taskRuns     *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec

	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec

	llmCalls    *prometheus.CounterVec
	llmDuration prometheus.Histogram

	// Replans counts evaluator-triggered re-planning cycles.
	Replans prometheus.Counter

	// HITLPauses counts runs suspended for human approval.
	HITLPauses prometheus.Counter

	// ActionsExecuted counts approved actions dispatched to the executor.
	ActionsExecuted *prometheus.CounterVec
}

// NewMetrics builds and registers all instruments.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.taskRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsreasoner",
		Name:      "agent_task_runs_total",
		Help:      "Agent task outcomes per dispatch cycle.",
	}, []string{"agent", "outcome"})

	m.taskDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opsreasoner",
		Name:      "agent_task_duration_seconds",
		Help:      "Wall-clock duration of a dispatch cycle, attributed per task.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"agent"})

	m.toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsreasoner",
		Name:      "tool_calls_total",
		Help:      "Tool-transport invocations by tool and outcome.",
	}, []string{"tool", "outcome"})

	m.toolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opsreasoner",
		Name:      "tool_call_duration_seconds",
		Help:      "Tool-transport invocation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"tool"})

	m.llmCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsreasoner",
		Name:      "llm_calls_total",
		Help:      "LLM completions by component and outcome.",
	}, []string{"component", "outcome"})

	m.llmDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "opsreasoner",
		Name:      "llm_call_duration_seconds",
		Help:      "LLM completion latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})

	m.Replans = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "opsreasoner",
		Name:      "replans_total",
		Help:      "Evaluator-triggered re-planning cycles.",
	})

	m.HITLPauses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "opsreasoner",
		Name:      "hitl_pauses_total",
		Help:      "Runs suspended awaiting human approval.",
	})

	m.ActionsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opsreasoner",
		Name:      "actions_executed_total",
		Help:      "Approved pending actions dispatched, by action type.",
	}, []string{"action_type"})

	m.registry.MustRegister(
		m.taskRuns, m.taskDuration,
		m.toolCalls, m.toolDuration,
		m.llmCalls, m.llmDuration,
		m.Replans, m.HITLPauses, m.ActionsExecuted,
	)
	return m
}

// ObserveTask records one agent task outcome and its cycle duration.
func (m *Metrics) ObserveTask(agent, outcome string, d time.Duration) {
	m.taskRuns.WithLabelValues(agent, outcome).Inc()
	m.taskDuration.WithLabelValues(agent).Observe(d.Seconds())
}

// ObserveToolCall records one tool-transport invocation. Plugged into the
// transport client as its observer callback.
func (m *Metrics) ObserveToolCall(tool string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(d.Seconds())
}

// ObserveLLMCall records one chat completion.
func (m *Metrics) ObserveLLMCall(component string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.llmCalls.WithLabelValues(component, outcome).Inc()
	m.llmDuration.Observe(d.Seconds())
}

// Handler exposes the registry for a /metrics route.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
