package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/orgcore/notification-service/internal/domain/common/errorz"
	"github.com/orgcore/notification-service/internal/domain/entity"
)

type NotificationEventStorage struct {
	db *gorm.DB
}

func NewNotificationEventStorage(db *gorm.DB) *NotificationEventStorage {
	return &NotificationEventStorage{
		db: db,
	}
}

// FindByEventID gets an event by its producer-supplied business id.
// Returns errorz.ErrNotFound when no such event is stored.
func (s *NotificationEventStorage) FindByEventID(ctx context.Context, eventID string) (*entity.NotificationEvent, error) {
	var event entity.NotificationEvent
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errorz.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event. A concurrent insert of the same event id
// surfaces as errorz.ErrDuplicateKey; the caller re-reads the winning row.
func (s *NotificationEventStorage) Create(ctx context.Context, event *entity.NotificationEvent) (*entity.NotificationEvent, error) {
	err := s.db.WithContext(ctx).Create(event).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, errorz.ErrDuplicateKey
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}
