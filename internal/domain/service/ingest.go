package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orgcore/notification-service/internal/domain/common/errorz"
	"github.com/orgcore/notification-service/internal/domain/dto"
	"github.com/orgcore/notification-service/internal/domain/entity"
	"github.com/orgcore/notification-service/internal/domain/utils/validator"
	"github.com/orgcore/notification-service/pkg/logger/types"
)

const unknownValue = "unknown"

type notificationEventStorage interface {
	FindByEventID(ctx context.Context, eventID string) (*entity.NotificationEvent, error)
	Create(ctx context.Context, event *entity.NotificationEvent) (*entity.NotificationEvent, error)
}

type inboxFanoutStorage interface {
	CreateIfAbsent(ctx context.Context, entry *entity.InboxEntry) (bool, error)
}

type recipientResolver interface {
	Resolve(msg dto.NotificationMessage) ResolvedRecipients
}

type unreadCountCache interface {
	Get(ctx context.Context, employeeID uuid.UUID) (int64, error)
	Set(ctx context.Context, employeeID uuid.UUID, count int64)
	Invalidate(ctx context.Context, employeeID uuid.UUID)
}

// IngestService turns at-least-once message delivery into exactly-once
// inbox state: one stored event per business event id and one inbox entry
// per resolved recipient, no matter how often a message is redelivered.
type IngestService struct {
	eventStorage notificationEventStorage
	inboxStorage inboxFanoutStorage
	resolver     recipientResolver
	counts       unreadCountCache
	logger       *types.Logger
}

func NewIngestService(
	eventStorage notificationEventStorage,
	inboxStorage inboxFanoutStorage,
	resolver recipientResolver,
	counts unreadCountCache,
	logger *types.Logger,
) *IngestService {
	return &IngestService{
		eventStorage: eventStorage,
		inboxStorage: inboxStorage,
		resolver:     resolver,
		counts:       counts,
		logger:       logger,
	}
}

// Ingest stores the event (insert-or-read) and fans it out to every
// resolved recipient. Safe to call concurrently and to retry: both race
// points rely on storage unique constraints, a lost race is converged, not
// failed. Returns ErrInvalidArgument for a blank event id; any other error
// is transient and the message may be redelivered.
func (s *IngestService) Ingest(ctx context.Context, msg dto.NotificationMessage) error {
	if !validator.EventID(msg.EventID) {
		return errorz.ErrInvalidArgument
	}
	msg.EventID = strings.TrimSpace(msg.EventID)

	now := time.Now()
	event, err := s.storedEvent(ctx, msg, now)
	if err != nil {
		return err
	}

	recipients := s.resolver.Resolve(msg)
	if recipients.Empty() {
		s.logger.Debugf("no recipients resolved for event (event_id=%s, event_type=%s)", event.EventID, event.EventType)
		return nil
	}

	return s.fanOut(ctx, event, recipients, now)
}

// storedEvent returns the one NotificationEvent row for the message's event
// id, creating it when absent. Losing the insert race to a concurrent
// ingestion is converged by re-reading the winning row.
func (s *IngestService) storedEvent(ctx context.Context, msg dto.NotificationMessage, now time.Time) (*entity.NotificationEvent, error) {
	event, err := s.eventStorage.FindByEventID(ctx, msg.EventID)
	if err == nil {
		return event, nil
	}
	if !errors.Is(err, errorz.ErrNotFound) {
		return nil, err
	}

	created, err := s.eventStorage.Create(ctx, newEventFromMessage(msg, now))
	if errors.Is(err, errorz.ErrDuplicateKey) {
		return s.eventStorage.FindByEventID(ctx, msg.EventID)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// fanOut writes one entry per recipient. Duplicate inserts are skipped by
// the storage; a transient failure for one recipient never blocks the
// remaining ones, the first such error is returned so the transport can
// retry the whole message.
func (s *IngestService) fanOut(ctx context.Context, event *entity.NotificationEvent, recipients ResolvedRecipients, now time.Time) error {
	var firstErr error

	for _, employeeID := range recipients.EmployeeIDs {
		created, err := s.inboxStorage.CreateIfAbsent(ctx, entity.NewEmployeeInboxEntry(event.ID, employeeID, now))
		if err != nil {
			s.logger.Errorf("failed to deliver to employee (event_id=%s, employee_id=%s): %v", event.EventID, employeeID, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if created && s.counts != nil {
			s.counts.Invalidate(ctx, employeeID)
		}
	}

	for _, role := range recipients.Roles {
		if _, err := s.inboxStorage.CreateIfAbsent(ctx, entity.NewRoleInboxEntry(event.ID, role, now)); err != nil {
			s.logger.Errorf("failed to deliver to role (event_id=%s, role=%s): %v", event.EventID, role, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func newEventFromMessage(msg dto.NotificationMessage, now time.Time) *entity.NotificationEvent {
	occurredAt := now
	if msg.OccurredAt != nil {
		occurredAt = *msg.OccurredAt
	}
	source := msg.Source
	if source == "" {
		source = unknownValue
	}
	eventType := msg.EventType
	if eventType == "" {
		eventType = unknownValue
	}
	return &entity.NotificationEvent{
		EventID:   msg.EventID,
		CreatedAt: occurredAt,
		Source:    source,
		EventType: eventType,
		EntityID:  msg.EntityID,
		Payload:   string(msg.Payload),
	}
}
