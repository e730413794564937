package events

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/dtn-window-stats/internal/common"
	"github.com/ethpandaops/dtn-window-stats/internal/events/handlers"
)

// DefaultManager implements the Manager interface
type DefaultManager struct {
	handlers map[string]Handler
	observer common.ObserverInterface
	logger   logrus.FieldLogger
}

// NewManager creates a new event manager dispatching to observer
func NewManager(observer common.ObserverInterface, logger logrus.FieldLogger) *DefaultManager {
	return &DefaultManager{
		handlers: make(map[string]Handler),
		observer: observer,
		logger:   logger,
	}
}

// RegisterHandler registers a handler for a specific event type
func (m *DefaultManager) RegisterHandler(handler Handler) error {
	eventType := handler.EventType()
	if eventType == "" {
		return fmt.Errorf("handler must specify a non-empty event type")
	}

	if _, exists := m.handlers[eventType]; exists {
		return fmt.Errorf("handler for event type %s already registered", eventType)
	}

	m.handlers[eventType] = handler
	m.logger.WithField("event_type", eventType).Debug("Registered event handler")
	return nil
}

// GetHandler returns the handler for the given event type
func (m *DefaultManager) GetHandler(eventType string) (Handler, bool) {
	handler, exists := m.handlers[eventType]
	return handler, exists
}

// HandleEvent routes the event to the appropriate handler
func (m *DefaultManager) HandleEvent(ctx context.Context, event *common.Event) error {
	handler, exists := m.handlers[event.Type]
	if !exists {
		m.logger.WithField("event_type", event.Type).Debug("Unhandled event type")
		return nil
	}

	if err := handler.HandleEvent(ctx, event); err != nil {
		return fmt.Errorf("handler for event type %s failed: %w", event.Type, err)
	}

	return nil
}

// RegisterDefaultHandlers registers all the default event handlers
func (m *DefaultManager) RegisterDefaultHandlers() error {
	eventHandlers := []Handler{
		handlers.NewLinkHandler(m.observer, m.logger),
		handlers.NewTransferStartHandler(m.observer, m.logger),
		handlers.NewTransferDoneHandler(m.observer, m.logger),
		handlers.NewTransferAbortHandler(m.observer, m.logger),
		handlers.NewReceiveHandler(m.observer, m.logger),
		handlers.NewDeleteHandler(m.observer, m.logger),
		handlers.NewTickHandler(m.observer, m.logger),
	}

	for _, handler := range eventHandlers {
		if err := m.RegisterHandler(handler); err != nil {
			return fmt.Errorf("failed to register handler %s: %w", handler.EventType(), err)
		}
	}
	return nil
}
