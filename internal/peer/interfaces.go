package peer

import (
	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// Repository defines the per-window neighbor statistics table
type Repository interface {
	GetNeighbor(neighbor string) (*Stats, bool)
	GetOrCreate(neighbor string) *Stats
	RecordContactStart(neighbor string)
	RecordOffer(neighbor string, class common.MessageClass)
	RecordSuccess(neighbor string, class common.MessageClass)
	RecordAbort(neighbor string, class common.MessageClass)
	RecordReceive(neighbor string, class common.MessageClass)
	AddContactTime(neighbor string, seconds float64)
	Snapshot() []Stats
	Len() int
	Clear()
}

// ContactTracker defines the interface for tracking currently open contacts
type ContactTracker interface {
	OnLinkUp(neighbor string, now float64)
	OnLinkDown(neighbor string, now float64)
	FoldOngoingContacts(boundary float64)
	ActiveCount() int
	Reset()
}
