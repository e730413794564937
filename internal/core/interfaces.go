package core

import (
	"github.com/ethpandaops/dtn-window-stats/internal/buffer"
	"github.com/ethpandaops/dtn-window-stats/internal/config"
)

// Hooks is the lifecycle surface a routing layer calls into. Only OnInit and
// OnTick can fail; their errors are fatal to the observer.
type Hooks interface {
	OnInit(nodeID string) error
	OnLinkChanged(neighbor string, up bool)
	OnTransferStart(neighbor, messageID string)
	OnTransferComplete(neighbor, messageID string)
	OnTransferAbort(neighbor, messageID string)
	OnMessageReceived(messageID, from string)
	OnMessageDeleted(messageID string, wasDrop bool)
	OnTick() error
	Close() error
}

// Config is an alias for the config package interface.
type Config = config.Config

// Store is an alias for the host's buffer introspection surface.
type Store = buffer.Store
