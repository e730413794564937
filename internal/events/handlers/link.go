package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// LinkHandler handles link up/down events
type LinkHandler struct {
	observer common.ObserverInterface
	logger   logrus.FieldLogger
}

// NewLinkHandler creates a new link event handler
func NewLinkHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *LinkHandler {
	return &LinkHandler{
		observer: observer,
		logger:   logger.WithField("handler", "link"),
	}
}

// EventType returns the event type this handler manages
func (h *LinkHandler) EventType() string {
	return common.EventLinkChanged
}

// HandleEvent processes a link change event
func (h *LinkHandler) HandleEvent(ctx context.Context, event *common.Event) error {
	h.logger.WithFields(logrus.Fields{
		"neighbor": common.FormatShortNodeID(event.Neighbor),
		"up":       event.Up,
		"time":     event.Time,
	}).Debug("Processing link event")

	h.observer.LinkChanged(event.Neighbor, event.Up, event.Time)
	return nil
}
