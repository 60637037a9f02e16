package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// HistoryRecorder consumes lifecycle events and appends one immutable trail
// entry per event. Append failures are logged by the dispatcher and never
// block the originating operation.
type HistoryRecorder struct {
	history repository.HistoryRepository
	logger  *zap.Logger
}

// NewHistoryRecorder creates the recorder.
func NewHistoryRecorder(history repository.HistoryRepository, logger *zap.Logger) *HistoryRecorder {
	return &HistoryRecorder{history: history, logger: logger}
}

// RegisterHandlers subscribes the recorder to all lifecycle events.
func (h *HistoryRecorder) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventIncidentCreated, h.handleCreated)
	dispatcher.Subscribe(events.EventIncidentAssigned, h.handleAssigned)
	dispatcher.Subscribe(events.EventIncidentStatusChanged, h.handleStatusChanged)
	dispatcher.Subscribe(events.EventIncidentDeleted, h.handleDeleted)
}

// History returns the ordered trail for an incident.
func (h *HistoryRecorder) History(ctx context.Context, incidentID string) ([]domain.HistoryEntry, error) {
	entries, err := h.history.ListByIncident(ctx, incidentID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

func (h *HistoryRecorder) handleCreated(ctx context.Context, event events.Event) error {
	return h.append(ctx, domain.HistoryEntry{
		IncidentID: event.IncidentID,
		ChangedAt:  event.Timestamp,
		NewStatus:  domain.IncidentStatusReported,
		Reason:     domain.HistoryReasonCreated,
		ActorID:    actorID(event),
	})
}

func (h *HistoryRecorder) handleAssigned(ctx context.Context, event events.Event) error {
	reported := domain.IncidentStatusReported
	return h.append(ctx, domain.HistoryEntry{
		IncidentID: event.IncidentID,
		ChangedAt:  event.Timestamp,
		OldStatus:  &reported,
		NewStatus:  domain.IncidentStatusAssigned,
		Reason:     domain.HistoryReasonAssigned,
		ActorID:    actorID(event),
	})
}

func (h *HistoryRecorder) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.IncidentStatusChangedPayload)
	if !ok {
		h.logger.Warn("unexpected status change payload", zap.String("incident_id", event.IncidentID))
		return nil
	}
	old := payload.OldStatus
	return h.append(ctx, domain.HistoryEntry{
		IncidentID: event.IncidentID,
		ChangedAt:  event.Timestamp,
		OldStatus:  &old,
		NewStatus:  payload.NewStatus,
		Reason:     domain.HistoryReasonStatusChange,
		ActorID:    actorID(event),
	})
}

func (h *HistoryRecorder) handleDeleted(ctx context.Context, event events.Event) error {
	entry := domain.HistoryEntry{
		IncidentID: event.IncidentID,
		ChangedAt:  event.Timestamp,
		Reason:     domain.HistoryReasonDeleted,
		ActorID:    actorID(event),
	}
	if payload, ok := event.Payload.(events.IncidentDeletedPayload); ok {
		last := payload.LastStatus
		entry.OldStatus = &last
		entry.NewStatus = last
	}
	return h.append(ctx, entry)
}

func (h *HistoryRecorder) append(ctx context.Context, entry domain.HistoryEntry) error {
	if err := h.history.Append(ctx, &entry); err != nil {
		h.logger.Warn("history append failed",
			zap.String("incident_id", entry.IncidentID),
			zap.String("reason", string(entry.Reason)),
			zap.Error(err))
		return err
	}
	return nil
}

func actorID(event events.Event) *string {
	if event.Actor.ID == "" {
		return nil
	}
	id := event.Actor.ID
	return &id
}
