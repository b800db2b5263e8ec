package dto

import (
	"encoding/json"
	"time"
)

// NotificationMessage is the inbound event shape delivered by producers.
// Only EventID is required; everything else has a documented default.
type NotificationMessage struct {
	EventID    string          `json:"eventId"`
	Source     string          `json:"source"`
	EventType  string          `json:"eventType"`
	EntityID   string          `json:"entityId"`
	OccurredAt *time.Time      `json:"occurredAt"`
	Recipients *Recipients     `json:"recipients"`
	Payload    json.RawMessage `json:"payload"`
}

// Recipients is the optional explicit addressing block of a message. When
// present and non-empty it overrides fallback resolution entirely.
type Recipients struct {
	EmployeeIDs []string `json:"employeeIds"`
	Roles       []string `json:"roles"`
}

// Empty reports whether the block carries no recipients at all.
func (r *Recipients) Empty() bool {
	return r == nil || (len(r.EmployeeIDs) == 0 && len(r.Roles) == 0)
}
