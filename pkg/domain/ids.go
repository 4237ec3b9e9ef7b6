package domain

import (
	"github.com/google/uuid"

	dErrors "itrust/pkg/domain-errors"
)

// AccountID identifies a platform account.
// Invariant: a non-zero AccountID always wraps a valid UUID.
//
// Usage: construct via ParseAccountID at trust boundaries; direct casting
// bypasses validation.
type AccountID uuid.UUID

// NilAccountID is the zero value, useful for comparisons.
var NilAccountID = AccountID(uuid.Nil)

// ParseAccountID validates and returns an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return NilAccountID, dErrors.New(dErrors.CodeInvalidInput, "account id cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return NilAccountID, dErrors.New(dErrors.CodeInvalidInput, "account id must be a valid UUID")
	}
	return AccountID(parsed), nil
}

// NewAccountID generates a fresh random AccountID.
func NewAccountID() AccountID {
	return AccountID(uuid.New())
}

// String returns the canonical UUID string form.
func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the id is the zero value.
func (id AccountID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText renders the id as a canonical UUID string. Named types do
// not inherit uuid.UUID's marshalers, so without this ids would encode as
// raw byte arrays.
func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a canonical UUID string.
func (id *AccountID) UnmarshalText(data []byte) error {
	parsed, err := ParseAccountID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Less imposes the global lock-acquisition order over accounts.
// Every code path that locks two accounts must take the Less one first.
func (id AccountID) Less(other AccountID) bool {
	return id.String() < other.String()
}

// EventID identifies a committed vouch event.
type EventID uuid.UUID

// NewEventID generates a fresh random EventID.
func NewEventID() EventID {
	return EventID(uuid.New())
}

// ParseEventID validates and returns an EventID.
func ParseEventID(s string) (EventID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return EventID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "event id must be a valid UUID")
	}
	return EventID(parsed), nil
}

// String returns the canonical UUID string form.
func (id EventID) String() string {
	return uuid.UUID(id).String()
}

// MarshalText renders the id as a canonical UUID string.
func (id EventID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a canonical UUID string.
func (id *EventID) UnmarshalText(data []byte) error {
	parsed, err := ParseEventID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
