package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketUpdateAdded   EventType = "ticket_update_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event with a fresh id and timestamp.
func New(eventType EventType, ticketID string, actorID *string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Reference    string            `json:"reference"`
	DepartmentID string            `json:"department_id"`
	Type         domain.TicketType `json:"ticket_type"`
	Priority     int               `json:"priority"`
	Title        string            `json:"title"`
	AssignedToID *string           `json:"assigned_to_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID       string  `json:"assignee_id"`
	PreviousAssignee *string `json:"previous_assignee,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketUpdateAddedPayload payload.
type TicketUpdateAddedPayload struct {
	UpdateID  string               `json:"update_id"`
	Title     string               `json:"title"`
	IsPublic  bool                 `json:"is_public"`
	NewStatus *domain.TicketStatus `json:"new_status,omitempty"`
}
