package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// ReceiveHandler handles inbound message events
type ReceiveHandler struct {
	observer common.ObserverInterface
	logger   logrus.FieldLogger
}

// NewReceiveHandler creates a new receive event handler
func NewReceiveHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *ReceiveHandler {
	return &ReceiveHandler{
		observer: observer,
		logger:   logger.WithField("handler", "receive"),
	}
}

// EventType returns the event type this handler manages
func (h *ReceiveHandler) EventType() string {
	return common.EventMessageReceived
}

// HandleEvent processes a message received from event.Neighbor
func (h *ReceiveHandler) HandleEvent(ctx context.Context, event *common.Event) error {
	h.observer.MessageReceived(event.Neighbor, common.Classify(event.MessageID))
	return nil
}

// DeleteHandler handles message removal from the buffer
type DeleteHandler struct {
	observer common.ObserverInterface
	logger   logrus.FieldLogger
}

// NewDeleteHandler creates a new delete event handler
func NewDeleteHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *DeleteHandler {
	return &DeleteHandler{
		observer: observer,
		logger:   logger.WithField("handler", "delete"),
	}
}

// EventType returns the event type this handler manages
func (h *DeleteHandler) EventType() string {
	return common.EventMessageDeleted
}

// HandleEvent counts a buffer drop. Deletions that are not drops, such as
// delivered or expired messages, are ignored.
func (h *DeleteHandler) HandleEvent(ctx context.Context, event *common.Event) error {
	if !event.Drop {
		return nil
	}

	class := common.Classify(event.MessageID)
	h.logger.WithFields(logrus.Fields{
		"message_id": event.MessageID,
		"class":      class,
	}).Debug("Message dropped")

	h.observer.MessageDropped(class)
	return nil
}
