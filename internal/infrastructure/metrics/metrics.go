package metrics

import (
	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "photo_ingest"

// Metrics holds the service collectors.
type Metrics struct {
	UploadsTotal      *prometheus.CounterVec
	UploadedBytes     prometheus.Counter
	StageFailures     *prometheus.CounterVec
	ReconcileFindings *prometheus.GaugeVec
	ReconcileRuns     *prometheus.CounterVec
	ThumbnailsHandled *prometheus.CounterVec
	EventsPublished   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		UploadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uploads",
				Name:      "total",
				Help:      "Uploads by outcome code (ok or the rejection code)",
			},
			[]string{"outcome"},
		),

		UploadedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "uploads",
				Name:      "bytes_total",
				Help:      "Bytes of successfully indexed uploads",
			},
		),

		StageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "stage_failures_total",
				Help:      "Pipeline failures by stage",
			},
			[]string{"stage"},
		),

		ReconcileFindings: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "reconcile",
				Name:      "findings",
				Help:      "Divergences found by the last reconciliation pass",
			},
			[]string{"kind"},
		),

		ReconcileRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reconcile",
				Name:      "runs_total",
				Help:      "Reconciliation passes by mode",
			},
			[]string{"mode"},
		),

		ThumbnailsHandled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "thumbnails",
				Name:      "handled_total",
				Help:      "Image events handled by the thumbnail controller",
			},
			[]string{"type", "status"},
		),

		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "published_total",
				Help:      "Image events published",
			},
			[]string{"type", "status"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.UploadsTotal,
		m.UploadedBytes,
		m.StageFailures,
		m.ReconcileFindings,
		m.ReconcileRuns,
		m.ThumbnailsHandled,
		m.EventsPublished,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) UploadAccepted(size int64) {
	m.UploadsTotal.WithLabelValues("ok").Inc()
	m.UploadedBytes.Add(float64(size))
}

func (m *Metrics) UploadRejected(code string) {
	m.UploadsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) StageFailed(stage string) {
	m.StageFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) EventPublished(eventType string, ok bool) {
	m.EventsPublished.WithLabelValues(eventType, status(ok)).Inc()
}

func (m *Metrics) ThumbnailHandled(eventType string, ok bool) {
	m.ThumbnailsHandled.WithLabelValues(eventType, status(ok)).Inc()
}

func (m *Metrics) ReconcileFinished(r *entity.ReconcileReport) {
	mode := "check"
	if r.Repaired {
		mode = "repair"
	}
	m.ReconcileRuns.WithLabelValues(mode).Inc()

	drift := 0.0
	if r.CountersDrifted() {
		drift = 1
	}

	m.ReconcileFindings.WithLabelValues("dangling_index").Set(float64(len(r.DanglingIndex)))
	m.ReconcileFindings.WithLabelValues("unindexed_records").Set(float64(len(r.UnindexedRecords)))
	m.ReconcileFindings.WithLabelValues("orphan_objects").Set(float64(len(r.OrphanObjects)))
	m.ReconcileFindings.WithLabelValues("counter_drift").Set(drift)
}

func status(ok bool) string {
	if ok {
		return "ok"
	}

	return "error"
}

// Nop discards every observation.
type Nop struct{}

func (Nop) UploadAccepted(int64)                      {}
func (Nop) UploadRejected(string)                     {}
func (Nop) StageFailed(string)                        {}
func (Nop) EventPublished(string, bool)               {}
func (Nop) ThumbnailHandled(string, bool)             {}
func (Nop) ReconcileFinished(*entity.ReconcileReport) {}
