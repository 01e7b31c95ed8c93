package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(WithRegistry(reg), WithNamespace("test"))

	m.RecordNavigation("push")
	m.RecordNavigation("push")
	m.RecordNavigation("pop")
	m.RecordRedirect("secured")
	m.RecordResolution(OutcomeResolved)
	m.RecordLoad(10*time.Millisecond, nil)
	m.RecordLoad(5*time.Millisecond, errors.New("boom"))
	m.RecordSessionOpen()
	m.RecordSessionOpen()
	m.RecordSessionClose()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.navigations.WithLabelValues("push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.navigations.WithLabelValues("pop")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.redirects.WithLabelValues("secured")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues(OutcomeResolved)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))

	count, err := testutil.GatherAndCount(reg, "test_component_load_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordNavigation("push")
		m.RecordRedirect("secured")
		m.RecordResolution(OutcomeNotFound)
		m.RecordLoad(time.Second, nil)
		m.RecordSessionOpen()
		m.RecordSessionClose()
	})
}
