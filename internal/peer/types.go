package peer

import "github.com/ethpandaops/dtn-window-stats/internal/common"

// ClassCounters holds the transfer counters of one message class.
type ClassCounters struct {
	TxOffer uint64 `json:"tx_offer"`
	TxOk    uint64 `json:"tx_ok"`
	TxAbort uint64 `json:"tx_abort"`
	Rx      uint64 `json:"rx"`
}

// Stats contains the observations for a single neighbor within the current window.
// TxOk + TxAbort may be lower than TxOffer when a transfer is still in flight at
// window close.
type Stats struct {
	Neighbor    string        `json:"neighbor"`
	Contacts    uint64        `json:"contacts"`
	ContactTime float64       `json:"contact_time"`
	Normal      ClassCounters `json:"normal"`
	Flood       ClassCounters `json:"flood"`
}

// Counters returns the counters for the given class, or nil for ClassNeither.
func (s *Stats) Counters(class common.MessageClass) *ClassCounters {
	switch class {
	case common.ClassNormal:
		return &s.Normal
	case common.ClassFlood:
		return &s.Flood
	default:
		return nil
	}
}

// Add folds other into s. Used to build cumulative totals from logged windows.
func (s *Stats) Add(other Stats) {
	s.Contacts += other.Contacts
	s.ContactTime += other.ContactTime
	s.Normal.add(other.Normal)
	s.Flood.add(other.Flood)
}

func (c *ClassCounters) add(other ClassCounters) {
	c.TxOffer += other.TxOffer
	c.TxOk += other.TxOk
	c.TxAbort += other.TxAbort
	c.Rx += other.Rx
}
