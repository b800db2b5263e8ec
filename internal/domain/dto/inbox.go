package dto

import (
	"time"

	"github.com/orgcore/notification-service/internal/domain/entity"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// sortColumns whitelists requestable sort keys against storage columns.
var sortColumns = map[string]string{
	"deliveredAt": "delivered_at",
	"readAt":      "read_at",
}

// Pageable describes the requested page of a list operation. Use Normalized
// before handing it to a storage.
type Pageable struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// Normalized floors the page at 0, defaults the size to DefaultPageSize when
// non-positive, caps it at MaxPageSize and falls back to deliveredAt
// descending when no sort is requested.
func (p Pageable) Normalized() Pageable {
	norm := p
	if norm.Page < 0 {
		norm.Page = 0
	}
	if norm.Size <= 0 {
		norm.Size = DefaultPageSize
	}
	if norm.Size > MaxPageSize {
		norm.Size = MaxPageSize
	}
	if _, ok := sortColumns[norm.Sort]; !ok {
		norm.Sort = "deliveredAt"
		norm.Desc = true
	}
	return norm
}

// Order returns the SQL order clause for a normalized Pageable.
func (p Pageable) Order() string {
	column, ok := sortColumns[p.Sort]
	if !ok {
		column = "delivered_at"
	}
	if p.Desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// Offset returns the row offset of the requested page.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// InboxFilter narrows inbox list operations. The time range is inclusive on
// both ends and each bound is independently optional.
type InboxFilter struct {
	UnreadOnly bool
	Source     string
	EventType  string
	From       *time.Time
	To         *time.Time
}

// InboxItem is one inbox row with the owning event's fields flattened in.
type InboxItem struct {
	InboxID             string     `json:"inboxId"`
	EventID             string     `json:"eventId"`
	Source              string     `json:"source"`
	EventType           string     `json:"eventType"`
	EntityID            string     `json:"entityId,omitempty"`
	Payload             string     `json:"payload,omitempty"`
	RecipientEmployeeID *string    `json:"recipientEmployeeId,omitempty"`
	RecipientRole       *string    `json:"recipientRole,omitempty"`
	DeliveredAt         time.Time  `json:"deliveredAt"`
	ReadAt              *time.Time `json:"readAt,omitempty"`
	Unread              bool       `json:"unread"`
}

func NewInboxItemFromEntity(entry entity.InboxEntry) InboxItem {
	return InboxItem{
		InboxID:             entry.ID,
		EventID:             entry.Event.EventID,
		Source:              entry.Event.Source,
		EventType:           entry.Event.EventType,
		EntityID:            entry.Event.EntityID,
		Payload:             entry.Event.Payload,
		RecipientEmployeeID: entry.RecipientEmployeeID,
		RecipientRole:       entry.RecipientRole,
		DeliveredAt:         entry.DeliveredAt,
		ReadAt:              entry.ReadAt,
		Unread:              entry.Unread(),
	}
}

// InboxPage is one page of inbox items plus the total match count.
type InboxPage struct {
	Items []InboxItem `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
}

func NewInboxPage(entries []entity.InboxEntry, total int64, pageable Pageable) *InboxPage {
	items := make([]InboxItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, NewInboxItemFromEntity(entry))
	}
	return &InboxPage{
		Items: items,
		Total: total,
		Page:  pageable.Page,
		Size:  pageable.Size,
	}
}
