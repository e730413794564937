package peer

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

func TestInMemoryRepository(t *testing.T) {
	repo := NewInMemoryRepository(logrus.New())

	// Repeated calls for a new neighbor create exactly one record
	first := repo.GetOrCreate("n2")
	second := repo.GetOrCreate("n2")
	require.Same(t, first, second)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, "n2", first.Neighbor)

	repo.RecordContactStart("n2")
	repo.RecordOffer("n2", common.ClassNormal)
	repo.RecordOffer("n2", common.ClassNormal)
	repo.RecordSuccess("n2", common.ClassNormal)
	repo.RecordAbort("n2", common.ClassFlood)
	repo.RecordReceive("n2", common.ClassFlood)
	repo.AddContactTime("n2", 12.5)

	stats, exists := repo.GetNeighbor("n2")
	require.True(t, exists)
	assert.Equal(t, uint64(1), stats.Contacts)
	assert.Equal(t, 12.5, stats.ContactTime)
	assert.Equal(t, ClassCounters{TxOffer: 2, TxOk: 1}, stats.Normal)
	assert.Equal(t, ClassCounters{TxAbort: 1, Rx: 1}, stats.Flood)
}

func TestNeitherClassIsIgnored(t *testing.T) {
	repo := NewInMemoryRepository(logrus.New())

	repo.RecordOffer("n3", common.ClassNeither)
	repo.RecordSuccess("n3", common.ClassNeither)
	repo.RecordAbort("n3", common.ClassNeither)
	repo.RecordReceive("n3", common.ClassNeither)

	_, exists := repo.GetNeighbor("n3")
	assert.False(t, exists)
	assert.Equal(t, 0, repo.Len())

	repo.RecordOffer("n3", common.ClassFlood)
	stats, _ := repo.GetNeighbor("n3")
	assert.Equal(t, uint64(1), stats.Flood.TxOffer)
	assert.Equal(t, ClassCounters{}, stats.Normal)
}

func TestSnapshotIsSortedCopy(t *testing.T) {
	repo := NewInMemoryRepository(logrus.New())
	repo.RecordContactStart("c")
	repo.RecordContactStart("a")
	repo.RecordContactStart("b")

	snapshot := repo.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, "a", snapshot[0].Neighbor)
	assert.Equal(t, "b", snapshot[1].Neighbor)
	assert.Equal(t, "c", snapshot[2].Neighbor)

	// Modify the copy
	snapshot[0].Contacts = 999

	original, _ := repo.GetNeighbor("a")
	assert.Equal(t, uint64(1), original.Contacts)
}

func TestClear(t *testing.T) {
	repo := NewInMemoryRepository(logrus.New())
	repo.RecordContactStart("a")
	repo.Clear()

	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, repo.Snapshot())
}

func TestStatsAdd(t *testing.T) {
	total := Stats{Neighbor: "a", Contacts: 1, ContactTime: 10}
	total.Add(Stats{Contacts: 2, ContactTime: 5, Normal: ClassCounters{TxOffer: 3, Rx: 1}})
	total.Add(Stats{Flood: ClassCounters{TxOk: 4}})

	assert.Equal(t, uint64(3), total.Contacts)
	assert.Equal(t, 15.0, total.ContactTime)
	assert.Equal(t, ClassCounters{TxOffer: 3, Rx: 1}, total.Normal)
	assert.Equal(t, ClassCounters{TxOk: 4}, total.Flood)
}
