package service

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/orgcore/notification-service/internal/domain/dto"
	"github.com/orgcore/notification-service/internal/domain/utils/validator"
)

const (
	RoleHR       = "HR"
	RoleOrgAdmin = "ORG_ADMIN"
	RoleDeptHead = "DEPT_HEAD"
)

// ResolvedRecipients is the deduplicated output of recipient resolution.
// Both sets empty means the event is stored but delivered to no one.
type ResolvedRecipients struct {
	EmployeeIDs []uuid.UUID
	Roles       []string
}

func (r ResolvedRecipients) Empty() bool {
	return len(r.EmployeeIDs) == 0 && len(r.Roles) == 0
}

// fallbackRule describes how to address a message whose producer supplied no
// explicit recipients: a fixed role set plus payload fields that may carry
// an employee identity.
type fallbackRule struct {
	roles         []string
	payloadFields []string
}

// fallbackRules is keyed by event type. Built once, never mutated.
var fallbackRules = map[string]fallbackRule{
	"EMPLOYEE_CREATED": {roles: []string{RoleHR, RoleOrgAdmin}},
	"LEAVE_CREATED":    {roles: []string{RoleHR, RoleDeptHead}, payloadFields: []string{"employeeId"}},
	"LEAVE_APPROVED":   {payloadFields: []string{"employeeId", "approverId"}},
}

// RecipientResolver maps an inbound message to the set of identities and
// roles it should be delivered to. Payload sniffing is confined to this type
// so the rest of the pipeline never touches the opaque payload.
type RecipientResolver struct{}

func NewRecipientResolver() *RecipientResolver {
	return &RecipientResolver{}
}

// Resolve applies the explicit recipients block verbatim when present and
// non-empty, otherwise falls back to the event-type rule table. Malformed
// identities and payload fields contribute no recipient; resolution never
// fails.
func (r *RecipientResolver) Resolve(msg dto.NotificationMessage) ResolvedRecipients {
	if !msg.Recipients.Empty() {
		return ResolvedRecipients{
			EmployeeIDs: dedupEmployeeIDs(msg.Recipients.EmployeeIDs),
			Roles:       dedupRoles(msg.Recipients.Roles),
		}
	}

	rule, ok := fallbackRules[msg.EventType]
	if !ok {
		return ResolvedRecipients{}
	}

	resolved := ResolvedRecipients{Roles: dedupRoles(rule.roles)}
	seen := make(map[uuid.UUID]struct{})
	for _, field := range rule.payloadFields {
		employeeID, ok := payloadEmployeeID(msg.Payload, field)
		if !ok {
			continue
		}
		if _, dup := seen[employeeID]; dup {
			continue
		}
		seen[employeeID] = struct{}{}
		resolved.EmployeeIDs = append(resolved.EmployeeIDs, employeeID)
	}
	return resolved
}

// payloadEmployeeID reads a single string field out of the opaque payload
// and parses it as an employee identity.
func payloadEmployeeID(payload json.RawMessage, field string) (uuid.UUID, bool) {
	if len(payload) == 0 {
		return uuid.Nil, false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return uuid.Nil, false
	}
	value, ok := fields[field].(string)
	if !ok {
		return uuid.Nil, false
	}
	employeeID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false
	}
	return employeeID, true
}

func dedupEmployeeIDs(raw []string) []uuid.UUID {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, value := range raw {
		if !validator.EmployeeID(value) {
			continue
		}
		id := uuid.MustParse(value)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func dedupRoles(raw []string) []string {
	var roles []string
	seen := make(map[string]struct{})
	for _, role := range raw {
		if !validator.Role(role) {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		roles = append(roles, role)
	}
	return roles
}
