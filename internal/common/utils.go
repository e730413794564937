package common

import (
	"strings"

	"github.com/ethpandaops/dtn-window-stats/constants"
)

// MessageClass is the traffic class derived from a message identifier.
type MessageClass int

const (
	// ClassNeither is any message without a reserved prefix. It has no counters.
	ClassNeither MessageClass = iota
	// ClassNormal is regular unicast traffic.
	ClassNormal
	// ClassFlood is flooded traffic.
	ClassFlood
)

// String returns the class name used in log fields and metric labels.
func (c MessageClass) String() string {
	switch c {
	case ClassNormal:
		return constants.Normal
	case ClassFlood:
		return constants.Flood
	default:
		return constants.Neither
	}
}

// Counted reports whether the class has per-class counters.
func (c MessageClass) Counted() bool {
	return c == ClassNormal || c == ClassFlood
}

// Classify maps a message identifier to its traffic class. The flood marker is
// checked first.
func Classify(messageID string) MessageClass {
	switch {
	case messageID == "":
		return ClassNeither
	case strings.HasPrefix(messageID, constants.FloodPrefix):
		return ClassFlood
	case strings.HasPrefix(messageID, constants.NormalPrefix):
		return ClassNormal
	default:
		return ClassNeither
	}
}

// FormatShortNodeID returns a shortened version of the node ID for logging
func FormatShortNodeID(nodeID string) string {
	if len(nodeID) <= constants.ShortNodeIDLength {
		return nodeID
	}
	return nodeID[:constants.ShortNodeIDLength]
}
