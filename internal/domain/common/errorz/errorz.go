package errorz

import "errors"

var (
	// ErrInvalidArgument marks malformed required input (blank event id,
	// missing employee id on the query side).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateKey signals a storage uniqueness violation. It never
	// leaves the ingestion path: both the event store and the fan-out
	// writer convert it into idempotent success.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrForbidden marks unmet identity preconditions.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound marks a row that does not exist, is soft-deleted, or is
	// not owned by a non-admin caller. The three cases are deliberately
	// indistinguishable.
	ErrNotFound = errors.New("not found")
)
