// Package metrics exposes window flush activity as Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ethpandaops/dtn-window-stats/constants"
)

const observerLabel = "observer"

// Recorder records flush activity per observer. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	windows        *prometheus.CounterVec
	rows           *prometheus.CounterVec
	writeErrors    *prometheus.CounterVec
	activeContacts *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them on reg. Collectors that
// are already registered are reused, so replicated observers share them.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		windows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "windows_flushed_total",
			Help:      "Number of windows closed and flushed.",
		}, []string{observerLabel}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "rows_written_total",
			Help:      "Number of neighbor rows appended to the log.",
		}, []string{observerLabel}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "write_errors_total",
			Help:      "Number of failed log writes.",
		}, []string{observerLabel}),
		activeContacts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "active_contacts",
			Help:      "Number of contacts open at the last tick.",
		}, []string{observerLabel}),
	}

	var err error
	if r.windows, err = registerCounter(reg, r.windows); err != nil {
		return nil, err
	}
	if r.rows, err = registerCounter(reg, r.rows); err != nil {
		return nil, err
	}
	if r.writeErrors, err = registerCounter(reg, r.writeErrors); err != nil {
		return nil, err
	}
	if err := reg.Register(r.activeContacts); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, fmt.Errorf("failed to register active contacts gauge: %w", err)
		}
		r.activeContacts = are.ExistingCollector.(*prometheus.GaugeVec)
	}

	return r, nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, fmt.Errorf("failed to register counter: %w", err)
	}
	return c, nil
}

// WindowFlushed counts one closed window and the rows written for it.
func (r *Recorder) WindowFlushed(observer string, rows int) {
	if r == nil {
		return
	}
	r.windows.WithLabelValues(observer).Inc()
	r.rows.WithLabelValues(observer).Add(float64(rows))
}

// WriteFailed counts one failed log write.
func (r *Recorder) WriteFailed(observer string) {
	if r == nil {
		return
	}
	r.writeErrors.WithLabelValues(observer).Inc()
}

// ActiveContacts sets the number of currently open contacts.
func (r *Recorder) ActiveContacts(observer string, n int) {
	if r == nil {
		return
	}
	r.activeContacts.WithLabelValues(observer).Set(float64(n))
}
