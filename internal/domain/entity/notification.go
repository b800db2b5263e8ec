package entity

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent is the canonical record of a domain occurrence. Rows are
// created once per business event id and never modified afterwards.
type NotificationEvent struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID   string    `gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	Source    string    `gorm:"not null"`
	EventType string    `gorm:"not null"`
	EntityID  string
	Payload   string `gorm:"type:text"`
}

func (NotificationEvent) TableName() string {
	return "notification_events"
}

// InboxEntry is one delivery obligation to one recipient. Exactly one of
// RecipientEmployeeID / RecipientRole is set; use NewEmployeeInboxEntry or
// NewRoleInboxEntry instead of filling the struct by hand.
//
// The two composite unique indexes make fan-out idempotent: postgres treats
// NULL as distinct, so each index only constrains rows where its recipient
// column is set.
type InboxEntry struct {
	ID                  string            `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID             string            `gorm:"not null;type:uuid;uniqueIndex:idx_inbox_event_employee;uniqueIndex:idx_inbox_event_role"`
	Event               NotificationEvent `gorm:"foreignKey:EventID"`
	RecipientEmployeeID *string           `gorm:"type:uuid;uniqueIndex:idx_inbox_event_employee"`
	RecipientRole       *string           `gorm:"uniqueIndex:idx_inbox_event_role"`
	DeliveredAt         time.Time         `gorm:"not null"`
	ReadAt              *time.Time
	DeletedAt           *time.Time
}

func (InboxEntry) TableName() string {
	return "notification_inbox"
}

// NewEmployeeInboxEntry creates an identity-addressed entry.
func NewEmployeeInboxEntry(eventID string, employeeID uuid.UUID, deliveredAt time.Time) *InboxEntry {
	id := employeeID.String()
	return &InboxEntry{
		EventID:             eventID,
		RecipientEmployeeID: &id,
		DeliveredAt:         deliveredAt,
	}
}

// NewRoleInboxEntry creates a role-addressed entry.
func NewRoleInboxEntry(eventID string, role string, deliveredAt time.Time) *InboxEntry {
	return &InboxEntry{
		EventID:       eventID,
		RecipientRole: &role,
		DeliveredAt:   deliveredAt,
	}
}

// Unread reports whether the entry has not been marked read yet.
func (e *InboxEntry) Unread() bool {
	return e.ReadAt == nil
}
