package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// TickHandler handles the periodic scheduler tick
type TickHandler struct {
	observer common.ObserverInterface
	logger   logrus.FieldLogger
}

// NewTickHandler creates a new tick event handler
func NewTickHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *TickHandler {
	return &TickHandler{
		observer: observer,
		logger:   logger.WithField("handler", "tick"),
	}
}

// EventType returns the event type this handler manages
func (h *TickHandler) EventType() string {
	return common.EventTick
}

// HandleEvent samples the buffer and closes elapsed windows. Errors are fatal
// to the observer.
func (h *TickHandler) HandleEvent(ctx context.Context, event *common.Event) error {
	return h.observer.Tick(event.Time)
}
