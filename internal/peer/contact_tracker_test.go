package peer

import (
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker() (*InMemoryRepository, *DefaultContactTracker) {
	logger, _ := test.NewNullLogger()
	repo := NewInMemoryRepository(logger)
	return repo, NewContactTracker(repo, logger)
}

func TestLinkUpDownSameTimestamp(t *testing.T) {
	repo, tracker := newTracker()

	repo.RecordContactStart("n1")
	tracker.OnLinkUp("n1", 42)
	tracker.OnLinkDown("n1", 42)

	stats, exists := repo.GetNeighbor("n1")
	require.True(t, exists)
	assert.Equal(t, uint64(1), stats.Contacts)
	assert.Equal(t, 0.0, stats.ContactTime)
	assert.Equal(t, 0, tracker.ActiveCount())
}

func TestLinkDownWithoutLinkUp(t *testing.T) {
	repo, tracker := newTracker()

	tracker.OnLinkDown("ghost", 10)

	_, exists := repo.GetNeighbor("ghost")
	assert.False(t, exists)
	assert.Equal(t, 0, tracker.ActiveCount())
}

func TestStaleLinkUpIsOverwritten(t *testing.T) {
	repo, tracker := newTracker()

	tracker.OnLinkUp("n1", 10)
	tracker.OnLinkUp("n1", 30)
	tracker.OnLinkDown("n1", 35)

	stats, _ := repo.GetNeighbor("n1")
	assert.Equal(t, 5.0, stats.ContactTime)
}

func TestFoldOngoingContactsAcrossWindows(t *testing.T) {
	repo, tracker := newTracker()

	tracker.OnLinkUp("n1", 250)

	tracker.FoldOngoingContacts(300)
	first, _ := repo.GetNeighbor("n1")
	assert.Equal(t, 50.0, first.ContactTime)

	repo.Clear()
	assert.Equal(t, 1, tracker.ActiveCount())

	tracker.FoldOngoingContacts(600)
	second, _ := repo.GetNeighbor("n1")
	assert.Equal(t, 300.0, second.ContactTime)

	repo.Clear()
	tracker.OnLinkDown("n1", 610)
	third, _ := repo.GetNeighbor("n1")
	assert.Equal(t, 10.0, third.ContactTime)

	// 50 + 300 + 10 equals the whole open duration
	assert.Equal(t, 610.0-250.0, first.ContactTime+second.ContactTime+third.ContactTime)
}

func TestTrackerReset(t *testing.T) {
	_, tracker := newTracker()
	tracker.OnLinkUp("a", 1)
	tracker.OnLinkUp("b", 2)
	require.Equal(t, 2, tracker.ActiveCount())

	tracker.Reset()
	assert.Equal(t, 0, tracker.ActiveCount())
}
