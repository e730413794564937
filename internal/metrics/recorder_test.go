package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	require.NoError(t, err)

	r.WindowFlushed("1", 3)
	r.WindowFlushed("1", 0)
	r.WriteFailed("1")
	r.ActiveContacts("1", 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.windows.WithLabelValues("1")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.rows.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.writeErrors.WithLabelValues("1")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.activeContacts.WithLabelValues("1")))
}

func TestRecorderReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	require.NoError(t, err)
	second, err := NewRecorder(reg)
	require.NoError(t, err)

	first.WindowFlushed("1", 1)
	second.WindowFlushed("1", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(second.windows.WithLabelValues("1")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.WindowFlushed("1", 1)
		r.WriteFailed("1")
		r.ActiveContacts("1", 1)
	})
}
