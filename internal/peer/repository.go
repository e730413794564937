package peer

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// InMemoryRepository implements the Repository interface using in-memory storage.
// It is owned by a single observer and is not safe for concurrent use.
type InMemoryRepository struct {
	neighbors map[string]*Stats
	logger    logrus.FieldLogger
}

// NewInMemoryRepository creates a new in-memory neighbor repository
func NewInMemoryRepository(logger logrus.FieldLogger) *InMemoryRepository {
	return &InMemoryRepository{
		neighbors: make(map[string]*Stats),
		logger:    logger.WithField("component", "neighbor_repository"),
	}
}

// GetNeighbor retrieves a neighbor record by ID
func (r *InMemoryRepository) GetNeighbor(neighbor string) (*Stats, bool) {
	stats, exists := r.neighbors[neighbor]
	return stats, exists
}

// GetOrCreate returns the record for neighbor, creating it on first observation
func (r *InMemoryRepository) GetOrCreate(neighbor string) *Stats {
	if existing, exists := r.neighbors[neighbor]; exists {
		return existing
	}

	stats := &Stats{Neighbor: neighbor}
	r.neighbors[neighbor] = stats
	r.logger.WithField("neighbor", common.FormatShortNodeID(neighbor)).Debug("Created neighbor record")

	return stats
}

// RecordContactStart counts a link-up event for neighbor
func (r *InMemoryRepository) RecordContactStart(neighbor string) {
	r.GetOrCreate(neighbor).Contacts++
}

// RecordOffer counts an outbound transfer offered to neighbor
func (r *InMemoryRepository) RecordOffer(neighbor string, class common.MessageClass) {
	r.update(neighbor, class, func(c *ClassCounters) { c.TxOffer++ })
}

// RecordSuccess counts an outbound transfer to neighbor that completed
func (r *InMemoryRepository) RecordSuccess(neighbor string, class common.MessageClass) {
	r.update(neighbor, class, func(c *ClassCounters) { c.TxOk++ })
}

// RecordAbort counts an outbound transfer to neighbor that was aborted
func (r *InMemoryRepository) RecordAbort(neighbor string, class common.MessageClass) {
	r.update(neighbor, class, func(c *ClassCounters) { c.TxAbort++ })
}

// RecordReceive counts an inbound message from neighbor
func (r *InMemoryRepository) RecordReceive(neighbor string, class common.MessageClass) {
	r.update(neighbor, class, func(c *ClassCounters) { c.Rx++ })
}

// AddContactTime adds seconds of link-up time to neighbor
func (r *InMemoryRepository) AddContactTime(neighbor string, seconds float64) {
	r.GetOrCreate(neighbor).ContactTime += seconds
}

// Snapshot returns a copy of all records ordered by neighbor ID
func (r *InMemoryRepository) Snapshot() []Stats {
	snapshot := make([]Stats, 0, len(r.neighbors))
	for _, stats := range r.neighbors {
		snapshot = append(snapshot, *stats)
	}

	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].Neighbor < snapshot[j].Neighbor
	})

	return snapshot
}

// Len returns the number of neighbors observed in the current window
func (r *InMemoryRepository) Len() int {
	return len(r.neighbors)
}

// Clear drops every record. Called at each window reset.
func (r *InMemoryRepository) Clear() {
	r.neighbors = make(map[string]*Stats)
}

// update applies fn to the class counters of neighbor. ClassNeither has no
// counters and does not create a record.
func (r *InMemoryRepository) update(neighbor string, class common.MessageClass, fn func(*ClassCounters)) {
	if !class.Counted() {
		return
	}

	fn(r.GetOrCreate(neighbor).Counters(class))
}
