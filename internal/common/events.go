package common

// Event types emitted by the host's lifecycle hooks
const (
	EventLinkChanged     = "LINK_CHANGED"
	EventTransferStart   = "TRANSFER_START"
	EventTransferDone    = "TRANSFER_DONE"
	EventTransferAbort   = "TRANSFER_ABORT"
	EventMessageReceived = "MESSAGE_RECEIVED"
	EventMessageDeleted  = "MESSAGE_DELETED"
	EventTick            = "TICK"
)

// Event is one host observation. Time is the simulated clock reading when the
// hook fired; fields that do not apply to Type are left zero.
type Event struct {
	Type      string
	Time      float64
	Neighbor  string
	MessageID string
	Up        bool
	Drop      bool
}
