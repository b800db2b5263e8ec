package validator

import (
	"strings"

	"github.com/google/uuid"
)

// EventID reports whether a producer-supplied business event id is usable.
func EventID(eventID string) bool {
	return strings.TrimSpace(eventID) != ""
}

// EmployeeID reports whether a value parses as an employee identity.
func EmployeeID(employeeID string) bool {
	_, err := uuid.Parse(employeeID)
	return err == nil
}

// Role reports whether a role name is usable as a recipient address.
func Role(role string) bool {
	return strings.TrimSpace(role) != ""
}
