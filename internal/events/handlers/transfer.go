package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
)

// TransferHandler handles outbound transfer events of one kind
type TransferHandler struct {
	eventType string
	record    func(neighbor string, class common.MessageClass)
	logger    logrus.FieldLogger
}

// NewTransferStartHandler creates a handler counting offered transfers
func NewTransferStartHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *TransferHandler {
	return newTransferHandler(common.EventTransferStart, observer.TransferStarted, logger)
}

// NewTransferDoneHandler creates a handler counting completed transfers
func NewTransferDoneHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *TransferHandler {
	return newTransferHandler(common.EventTransferDone, observer.TransferCompleted, logger)
}

// NewTransferAbortHandler creates a handler counting aborted transfers
func NewTransferAbortHandler(observer common.ObserverInterface, logger logrus.FieldLogger) *TransferHandler {
	return newTransferHandler(common.EventTransferAbort, observer.TransferAborted, logger)
}

func newTransferHandler(eventType string, record func(string, common.MessageClass), logger logrus.FieldLogger) *TransferHandler {
	return &TransferHandler{
		eventType: eventType,
		record:    record,
		logger:    logger.WithField("handler", "transfer"),
	}
}

// EventType returns the event type this handler manages
func (h *TransferHandler) EventType() string {
	return h.eventType
}

// HandleEvent processes a transfer event. A transfer without a message is
// missing data, not an error.
func (h *TransferHandler) HandleEvent(ctx context.Context, event *common.Event) error {
	if event.MessageID == "" {
		h.logger.WithFields(logrus.Fields{
			"event_type": h.eventType,
			"neighbor":   common.FormatShortNodeID(event.Neighbor),
		}).Debug("Transfer event without message")
		return nil
	}

	h.record(event.Neighbor, common.Classify(event.MessageID))
	return nil
}
