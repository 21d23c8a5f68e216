package observability

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what the engine does.
type Metrics struct {
	operations  *prometheus.CounterVec
	transitions *prometheus.CounterVec
	segments    *prometheus.CounterVec
	elements    *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_operations_total",
				Help: "Operations submitted to a model, by outcome",
			},
			[]string{"model", "operation", "outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_transitions_finished_total",
				Help: "Element transitions that finished, by whether the element was pruned",
			},
			[]string{"model", "pruned"},
		),
		segments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waypoint_segments_finished_total",
				Help: "Keyframe segments played to completion",
			},
			[]string{"model"},
		),
		elements: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "waypoint_elements",
				Help: "Elements currently held by a model",
			},
			[]string{"model"},
		),
	}
	reg.MustRegister(m.operations, m.transitions, m.segments, m.elements)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnOperation: func(_ context.Context, e *domain.OperationEvent) {
			outcome := "applied"
			if !e.Applied {
				outcome = "ignored"
			}
			m.operations.WithLabelValues(e.Model, e.Operation, outcome).Inc()
		},
		OnRejected: func(_ context.Context, e *domain.OperationEvent) {
			m.operations.WithLabelValues(e.Model, e.Operation, "rejected").Inc()
		},
		OnTransitionFinished: func(_ context.Context, e *domain.TransitionEvent) {
			pruned := "false"
			if e.Pruned {
				pruned = "true"
			}
			m.transitions.WithLabelValues(e.Model, pruned).Inc()
		},
		OnSegmentFinished: func(_ context.Context, e *domain.SegmentEvent) {
			m.segments.WithLabelValues(e.Model).Inc()
		},
	}
}

// SetElements records the size of a model's collection.
func (m *Metrics) SetElements(model string, n int) {
	m.elements.WithLabelValues(model).Set(float64(n))
}
