package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events so sinks can apply different
// retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers changes to personal data held in the directory.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// ContactID is the directory entry the action applied to.
	ContactID string
	Action    string
	// Fields names the contact fields touched by an update.
	Fields    []string
	RequestID string // Correlation ID from HTTP request context
}

type AuditEvent string

const (
	EventContactAdded   AuditEvent = "contact_added"
	EventContactUpdated AuditEvent = "contact_updated"
	EventContactDeleted AuditEvent = "contact_deleted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventContactAdded:   CategoryCompliance,
	EventContactUpdated: CategoryCompliance,
	EventContactDeleted: CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
