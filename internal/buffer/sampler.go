// Package buffer samples message store occupancy and counts buffer drops.
package buffer

import (
	"math"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// Unbounded is the capacity reported by a store without a size limit.
const Unbounded = math.MaxInt64

// Message is a read-only view of a message held by a store.
type Message struct {
	ID   string
	Size int64
}

// Store is the host's message buffer introspection surface.
type Store interface {
	Capacity() int64
	FreeCapacity() int64
	HeldMessages() []Message
}

// Occupancy returns the bytes currently held by store. Unbounded stores have no
// meaningful free capacity, so their held messages are summed instead.
func Occupancy(store Store) int64 {
	capacity := store.Capacity()
	if capacity == Unbounded || capacity < 0 {
		var occupancy int64
		for _, m := range store.HeldMessages() {
			occupancy += m.Size
		}
		return occupancy
	}

	return capacity - store.FreeCapacity()
}

// Aggregate is the buffer occupancy summary of one window.
type Aggregate struct {
	Sum   int64
	Count int64
	Max   int64
}

// Average returns Sum/Count, or 0 when no samples were taken.
func (a Aggregate) Average() float64 {
	if a.Count == 0 {
		return 0.0
	}
	return float64(a.Sum) / float64(a.Count)
}

// Sampler keeps the running sum, count and max of occupancy samples.
type Sampler struct {
	agg Aggregate
}

// NewSampler creates an empty sampler.
func NewSampler() *Sampler {
	return &Sampler{}
}

// Sample adds one occupancy observation.
func (s *Sampler) Sample(occupancy int64) {
	s.agg.Sum += occupancy
	s.agg.Count++
	if occupancy > s.agg.Max {
		s.agg.Max = occupancy
	}
}

// Average returns the mean occupancy of the current window.
func (s *Sampler) Average() float64 { return s.agg.Average() }

// Max returns the largest sample of the current window.
func (s *Sampler) Max() int64 { return s.agg.Max }

// Sum returns the total of all samples.
func (s *Sampler) Sum() int64 { return s.agg.Sum }

// Count returns the number of samples of the current window.
func (s *Sampler) Count() int64 { return s.agg.Count }

// Snapshot returns the current aggregate by value.
func (s *Sampler) Snapshot() Aggregate { return s.agg }

// Reset zeros sum, count and max.
func (s *Sampler) Reset() { s.agg = Aggregate{} }

// DropCounters counts messages evicted from the buffer, per class.
type DropCounters struct {
	Normal uint64
	Flood  uint64
}

// Record counts one drop. Messages of ClassNeither are not counted.
func (d *DropCounters) Record(class common.MessageClass) {
	switch class {
	case common.ClassNormal:
		d.Normal++
	case common.ClassFlood:
		d.Flood++
	}
}

// Reset zeros both counters.
func (d *DropCounters) Reset() { *d = DropCounters{} }
