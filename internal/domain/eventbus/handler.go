package eventbus

import (
	"context"
	"time"

	"inventory-server-go/internal/domain/eventbus/repository"
	"inventory-server-go/internal/platform/logging"
)

// EventHandler consumes bus events.
type EventHandler interface {
	Handle(eventType string, data interface{})
}

// AuditHandler mirrors domain events into the structured log and,
// when a repository is attached, into the persistent audit trail.
type AuditHandler struct {
	logger *logging.Logger
	repo   repository.EventRepository
}

// NewAuditHandler creates an audit handler writing to the given logger.
// repo may be nil, in which case events are logged but not persisted.
func NewAuditHandler(logger *logging.Logger, repo repository.EventRepository) *AuditHandler {
	return &AuditHandler{logger: logger, repo: repo}
}

// Handle dispatches an event to the matching log line. Payloads of an
// unexpected type are dropped silently.
func (h *AuditHandler) Handle(eventType string, data interface{}) {
	switch eventType {
	case EventItemCreated, EventItemUpdated, EventItemDeleted:
		if d, ok := data.(ItemEventData); ok {
			h.handleItemEvent(d)
		}
	case EventSessionStarted, EventSessionRevoked:
		if d, ok := data.(SessionEventData); ok {
			h.handleSessionEvent(eventType, d)
		}
	case EventSystemError, EventSystemInfo:
		if d, ok := data.(SystemEventData); ok {
			h.handleSystemEvent(d)
		}
	}

	if h.repo != nil {
		h.record(eventType, data)
	}
}

func (h *AuditHandler) handleItemEvent(data ItemEventData) {
	h.logger.InfoTag("EVENTS", "item %s: id=%s name=%s price=%.2f owner=%d",
		data.Action, data.ItemID, data.Name, data.Price, data.OwnerID)
}

func (h *AuditHandler) handleSessionEvent(eventType string, data SessionEventData) {
	h.logger.InfoTag("EVENTS", "%s: jti=%s account=%d username=%s",
		eventType, data.JTI, data.AccountID, data.Username)
}

func (h *AuditHandler) handleSystemEvent(data SystemEventData) {
	switch data.Level {
	case "error":
		h.logger.ErrorTag("EVENTS", "%s", data.Message)
	case "warn":
		h.logger.WarnTag("EVENTS", "%s", data.Message)
	default:
		h.logger.InfoTag("EVENTS", "%s", data.Message)
	}
}

// record appends the event to the audit trail. Runs on a bus worker, so a
// storage failure only costs a warning, never the publisher.
func (h *AuditHandler) record(eventType string, data interface{}) {
	event := repository.Event{
		Topic:     eventType,
		Data:      data,
		CreatedAt: time.Now(),
	}

	switch d := data.(type) {
	case ItemEventData:
		event.ItemID = d.ItemID
		event.AccountID = d.OwnerID
		if !d.OccurredAt.IsZero() {
			event.CreatedAt = d.OccurredAt
		}
	case SessionEventData:
		event.AccountID = d.AccountID
	}

	if err := h.repo.Store(context.Background(), event); err != nil {
		h.logger.WarnTag("EVENTS", "failed to record %s event: %v", eventType, err)
	}
}

// SetupEventHandlers subscribes the audit handler to every domain topic.
func SetupEventHandlers(logger *logging.Logger, repo repository.EventRepository) error {
	handler := NewAuditHandler(logger, repo)

	topics := []string{
		EventItemCreated,
		EventItemUpdated,
		EventItemDeleted,
		EventSessionStarted,
		EventSessionRevoked,
		EventSystemError,
		EventSystemInfo,
	}
	for _, topic := range topics {
		topic := topic
		err := SubscribeAsync(topic, func(args ...interface{}) {
			if len(args) > 0 {
				handler.Handle(topic, args[0])
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
