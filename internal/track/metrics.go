package track

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the generator's Prometheus instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Spawned    *prometheus.CounterVec // by kind: road, branch, provisional
	Retired    prometheus.Counter
	Discarded  prometheus.Counter
	AreaHits   *prometheus.CounterVec // by path: tracked, provisional, foreign
	Branches   *prometheus.CounterVec // by outcome: presented, committed, aborted
	Sequences  *prometheus.CounterVec // by end: natural, forced, abandoned
	Live       prometheus.Gauge
	Suspended  prometheus.Gauge
	ConfigErrs prometheus.Counter
}

// NewMetrics registers the instruments on reg. A nil reg leaves them
// unregistered, which tests use to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Spawned: f.NewCounterVec(prometheus.CounterOpts{
			Name: "track_segments_spawned_total",
			Help: "Segments instantiated, by kind",
		}, []string{"kind"}),
		Retired: f.NewCounter(prometheus.CounterOpts{
			Name: "track_segments_retired_total",
			Help: "Active segments released behind the runner or by area clears",
		}),
		Discarded: f.NewCounter(prometheus.CounterOpts{
			Name: "track_provisional_discarded_total",
			Help: "Provisional branch children destroyed without promotion",
		}),
		AreaHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "track_area_clear_hits_total",
			Help: "Objects removed by area clears, by reconciliation path",
		}, []string{"path"}),
		Branches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "track_branches_total",
			Help: "Branch attempts, by outcome",
		}, []string{"outcome"}),
		Sequences: f.NewCounterVec(prometheus.CounterOpts{
			Name: "track_sequences_total",
			Help: "Finished themed sequences, by how they ended",
		}, []string{"end"}),
		Live: f.NewGauge(prometheus.GaugeOpts{
			Name: "track_live_segments",
			Help: "Active segments currently held by the ledger",
		}),
		Suspended: f.NewGauge(prometheus.GaugeOpts{
			Name: "track_suspended",
			Help: "1 while a branch awaits a choice",
		}),
		ConfigErrs: f.NewCounter(prometheus.CounterOpts{
			Name: "track_config_errors_total",
			Help: "Generation attempts aborted by configuration errors",
		}),
	}
}

func (m *Metrics) spawned(kind string) {
	if m == nil {
		return
	}
	m.Spawned.WithLabelValues(kind).Inc()
}

func (m *Metrics) retired() {
	if m == nil {
		return
	}
	m.Retired.Inc()
}

func (m *Metrics) discarded() {
	if m == nil {
		return
	}
	m.Discarded.Inc()
}

func (m *Metrics) areaHit(path string) {
	if m == nil {
		return
	}
	m.AreaHits.WithLabelValues(path).Inc()
}

func (m *Metrics) branch(outcome string) {
	if m == nil {
		return
	}
	m.Branches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) sequence(end string) {
	if m == nil {
		return
	}
	m.Sequences.WithLabelValues(end).Inc()
}

func (m *Metrics) live(n int) {
	if m == nil {
		return
	}
	m.Live.Set(float64(n))
}

func (m *Metrics) suspended(on bool) {
	if m == nil {
		return
	}
	if on {
		m.Suspended.Set(1)
	} else {
		m.Suspended.Set(0)
	}
}

func (m *Metrics) configErr() {
	if m == nil {
		return
	}
	m.ConfigErrs.Inc()
}
