package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reelvm/reel/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	active       prometheus.Gauge
	started      prometheus.Counter
	completed    prometheus.Counter
	skips        prometheus.Counter
	gameState    *prometheus.GaugeVec
}

// NewMetrics registers the engine collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "ticks_total",
			Help:      "Scheduling passes executed.",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "reel",
			Name:      "tick_duration_seconds",
			Help:      "Wall time of one scheduling pass.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "reel",
			Name:      "instances_active",
			Help:      "Live graph instances after the last pass.",
		}),
		started: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "instances_started_total",
			Help:      "Instances begun or rejoined.",
		}),
		completed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "instances_completed_total",
			Help:      "Instances that reached the terminal sentinel.",
		}),
		skips: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "reel",
			Name:      "skip_requests_total",
			Help:      "Fast-forward requests accepted.",
		}),
		gameState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "reel",
			Name:      "game_state",
			Help:      "Derived game state; the active state holds 1.",
		}, []string{"state"}),
	}
}

// Hooks returns lifecycle hooks feeding the instance counters. Hosts that
// have their own hooks chain them manually.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInstanceStart: func(context.Context, *domain.InstanceEvent) {
			m.started.Inc()
		},
		OnInstanceComplete: func(context.Context, *domain.InstanceEvent) {
			m.completed.Inc()
		},
		OnSkipRequested: func(context.Context, *domain.InstanceEvent) {
			m.skips.Inc()
		},
	}
}

// ObserveTick records one scheduling pass.
func (m *Metrics) ObserveTick(elapsed time.Duration, active int, state domain.GameState) {
	m.ticks.Inc()
	m.tickDuration.Observe(elapsed.Seconds())
	m.active.Set(float64(active))

	for _, s := range []domain.GameState{
		domain.StateNormal,
		domain.StateCutscene,
		domain.StateDialogOptions,
		domain.StatePaused,
	} {
		v := 0.0
		if s == state {
			v = 1
		}
		m.gameState.WithLabelValues(string(s)).Set(v)
	}
}
