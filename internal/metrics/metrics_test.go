package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetHealth_UpdatesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SetHealth(5, 3, 1)

	assert.Equal(t, float64(5), testutil.ToFloat64(m.WorkersTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.WorkersRunning))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WorkersFailed))
}

func TestRecordOp_IncrementsLabeledCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordOp("deposit", "success")
	m.RecordOp("deposit", "success")
	m.RecordOp("deposit", "failure")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OpsTotal.WithLabelValues("deposit", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OpsTotal.WithLabelValues("deposit", "failure")))
}
