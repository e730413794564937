package events

import (
	"context"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// Handler defines the interface for handling specific event types
type Handler interface {
	HandleEvent(ctx context.Context, event *common.Event) error
	EventType() string
}

// Manager defines the interface for managing event handlers
type Manager interface {
	RegisterHandler(handler Handler) error
	HandleEvent(ctx context.Context, event *common.Event) error
	GetHandler(eventType string) (Handler, bool)
}

// ObserverInterface is an alias for the common interface
type ObserverInterface = common.ObserverInterface
