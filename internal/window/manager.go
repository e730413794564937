// Package window drives the fixed-length aggregation windows of an observer.
package window

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/buffer"
	"github.com/ethpandaops/dtn-window-stats/internal/peer"
)

// ErrDegenerateWindow is returned when the window size is too small to move
// the window start forward in float64.
var ErrDegenerateWindow = errors.New("window size does not advance the window start")

// Window is the half-open interval [Start, End) in simulated seconds.
type Window struct {
	Start float64
	End   float64
}

// Snapshot is the consistent state of one closed window.
type Snapshot struct {
	Window    Window
	Neighbors []peer.Stats
	Buffer    buffer.Aggregate
	Drops     buffer.DropCounters
}

// Emitter receives every closed window, in order.
type Emitter interface {
	Emit(snapshot Snapshot) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(snapshot Snapshot) error

// Emit calls f(snapshot).
func (f EmitterFunc) Emit(snapshot Snapshot) error { return f(snapshot) }

// State groups the per-window containers the manager folds, emits and resets.
type State struct {
	Neighbors peer.Repository
	Contacts  peer.ContactTracker
	Buffer    *buffer.Sampler
	Drops     *buffer.DropCounters
}

// Manager detects elapsed windows and runs the flush/reset cycle.
type Manager struct {
	start   float64
	size    float64
	state   State
	emitter Emitter
	logger  logrus.FieldLogger
}

// NewManager creates a manager whose first window opens at start. size must be
// positive; callers validate it through the config package.
func NewManager(start, size float64, state State, emitter Emitter, logger logrus.FieldLogger) *Manager {
	return &Manager{
		start:   start,
		size:    size,
		state:   state,
		emitter: emitter,
		logger:  logger.WithField("component", "window_manager"),
	}
}

// Start returns the start of the current window.
func (m *Manager) Start() float64 { return m.start }

// Size returns the window length in seconds.
func (m *Manager) Size() float64 { return m.size }

// Current returns the currently open window.
func (m *Manager) Current() Window {
	return Window{Start: m.start, End: m.start + m.size}
}

// Reset moves the current window to start without emitting anything.
func (m *Manager) Reset(start float64) {
	m.start = start
}

// Advance closes every window that ended at or before now and returns how many
// were emitted. A tick delayed by several window lengths emits one row set per
// elapsed window; none is skipped or merged. An emit error stops the loop and
// leaves the failed window's state in place.
func (m *Manager) Advance(now float64) (int, error) {
	emitted := 0

	for now >= m.start+m.size {
		end := m.start + m.size
		if end <= m.start {
			return emitted, fmt.Errorf("%w: start %v, size %v", ErrDegenerateWindow, m.start, m.size)
		}

		m.state.Contacts.FoldOngoingContacts(end)

		snapshot := Snapshot{
			Window:    Window{Start: m.start, End: end},
			Neighbors: m.state.Neighbors.Snapshot(),
			Buffer:    m.state.Buffer.Snapshot(),
			Drops:     *m.state.Drops,
		}

		if err := m.emitter.Emit(snapshot); err != nil {
			return emitted, fmt.Errorf("failed to emit window [%.0f, %.0f): %w", m.start, end, err)
		}

		m.logger.WithFields(logrus.Fields{
			"window_start": m.start,
			"window_end":   end,
			"neighbors":    len(snapshot.Neighbors),
			"buf_samples":  snapshot.Buffer.Count,
		}).Debug("Closed window")

		m.state.Neighbors.Clear()
		m.state.Buffer.Reset()
		m.state.Drops.Reset()
		m.start = end
		emitted++
	}

	return emitted, nil
}
