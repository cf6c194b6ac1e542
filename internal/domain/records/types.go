package records

import "civil-registry/internal/domain/users"

// EventType define los cuatro eventos vitales registrables.
type EventType string

const (
	EventTypeBirth    EventType = "BIRTH"
	EventTypeDeath    EventType = "DEATH"
	EventTypeMarriage EventType = "MARRIAGE"
	EventTypeDivorce  EventType = "DIVORCE"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventTypeBirth, EventTypeDeath, EventTypeMarriage, EventTypeDivorce:
		return true
	}
	return false
}

// Status define el ciclo de vida de un registro.
type Status string

const (
	StatusPending     Status = "PENDING"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reporta si el status no admite más transiciones.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Actor es quien ejecuta una operación del workflow.
type Actor struct {
	ID   string
	Name string
	Role users.Role
}
