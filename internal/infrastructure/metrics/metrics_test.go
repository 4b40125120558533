package metrics

import (
	"testing"

	"github.com/andreyxaxa/Photo-Ingest/internal/entity"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.UploadAccepted(100)
	m.UploadAccepted(50)
	m.UploadRejected("INVALID_IMAGE")
	m.StageFailed("store")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UploadsTotal.WithLabelValues("INVALID_IMAGE")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.UploadedBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageFailures.WithLabelValues("store")))

	m.ReconcileFinished(&entity.ReconcileReport{
		DanglingIndex:  []uuid.UUID{uuid.New(), uuid.New()},
		CountersBefore: entity.Counters{TotalImages: 3},
		Repaired:       true,
	})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReconcileFindings.WithLabelValues("dangling_index")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileFindings.WithLabelValues("counter_drift")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReconcileRuns.WithLabelValues("repair")))

	_, err = New(reg)
	assert.Error(t, err, "registering twice must fail")
}
