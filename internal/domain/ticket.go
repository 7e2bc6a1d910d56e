package domain

import (
	"fmt"
	"time"
)

// TicketType enumerates the ITIL record types.
type TicketType string

const (
	TicketTypeIncident TicketType = "incident"
	TicketTypeProblem  TicketType = "problem"
	TicketTypeChange   TicketType = "change"
)

// ValidTicketType reports whether t is one of the known ticket types.
func ValidTicketType(t TicketType) bool {
	switch t {
	case TicketTypeIncident, TicketTypeProblem, TicketTypeChange:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusCancelled  TicketStatus = "cancelled"
)

// OpenStatuses are the states in which a ticket still counts against its SLA.
var OpenStatuses = []TicketStatus{TicketStatusNew, TicketStatusInProgress, TicketStatusWaiting}

// ValidTicketStatus reports whether s belongs to the closed status set.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusNew, TicketStatusInProgress, TicketStatusWaiting,
		TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled:
		return true
	}
	return false
}

// IsOpen reports whether the status counts as open.
func (s TicketStatus) IsOpen() bool {
	return s == TicketStatusNew || s == TicketStatusInProgress || s == TicketStatusWaiting
}

// Label returns the human-readable status name.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusNew:
		return "New"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusWaiting:
		return "Waiting for Information"
	case TicketStatusResolved:
		return "Resolved"
	case TicketStatusClosed:
		return "Closed"
	case TicketStatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

// Priority levels follow the ITIL 1..4 ordinal scale.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// slaHours maps priority level to the allowed resolution window.
var slaHours = map[int]int{
	PriorityCritical: 4,
	PriorityHigh:     8,
	PriorityMedium:   24,
	PriorityLow:      72,
}

// SLAFor returns the SLA window for a priority level, defaulting to 24h
// for unrecognized values.
func SLAFor(priority int) time.Duration {
	hours, ok := slaHours[priority]
	if !ok {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

// PriorityLabel returns the display name for a priority level.
func PriorityLabel(priority int) string {
	switch priority {
	case PriorityCritical:
		return "Critical - Service Down"
	case PriorityHigh:
		return "High - Major Impact"
	case PriorityMedium:
		return "Medium - Minor Impact"
	case PriorityLow:
		return "Low - Minimal Impact"
	}
	return fmt.Sprintf("Priority %d", priority)
}

// Ticket is the central aggregate: an incident, problem, or change request.
type Ticket struct {
	ID              string
	Reference       string
	Type            TicketType
	Title           string
	Description     string
	DepartmentID    string
	Priority        int
	Impact          int
	Urgency         int
	ReporterName    string
	ReporterEmail   string
	ReporterPhone   string
	AffectedService string
	AssignedToID    *string
	Status          TicketStatus
	Resolution      string
	ParentProblemID *string
	RelatedIDs      []string
	Created         time.Time
	Modified        time.Time
	ResolvedDate    *time.Time
	ClosedDate      *time.Time
}

// IsOverdue reports whether the ticket has exceeded its SLA window at the
// given instant. Resolved, closed and cancelled tickets are never overdue.
// Derived on every access, never persisted.
func (t *Ticket) IsOverdue(now time.Time) bool {
	if !t.Status.IsOpen() {
		return false
	}
	return now.After(t.Created.Add(SLAFor(t.Priority)))
}

// SLADeadline returns the instant at which the ticket becomes overdue.
func (t *Ticket) SLADeadline() time.Time {
	return t.Created.Add(SLAFor(t.Priority))
}

// HoursSinceCreated returns whole hours elapsed since creation.
func (t *Ticket) HoursSinceCreated(now time.Time) int {
	return int(now.Sub(t.Created).Hours())
}

// ApplyStatus writes a new status and reacts to the value: resolved_date and
// closed_date are stamped exactly once on first entry into their states, and
// leaving closed clears closed_date (reopen). Transitions themselves are
// deliberately unguarded; operators may override any state.
func (t *Ticket) ApplyStatus(status TicketStatus, now time.Time) {
	if t.Status == TicketStatusClosed && status != TicketStatusClosed {
		t.ClosedDate = nil
	}
	t.Status = status
	if status == TicketStatusResolved && t.ResolvedDate == nil {
		stamp := now
		t.ResolvedDate = &stamp
	}
	if status == TicketStatusClosed && t.ClosedDate == nil {
		stamp := now
		t.ClosedDate = &stamp
	}
}

// DisplayID is the human-readable identifier, e.g. "[it-support-3f9a2c1d]".
func (t *Ticket) DisplayID() string {
	return "[" + t.Reference + "]"
}

// TypeLabel returns the display name of the ticket type.
func (t *Ticket) TypeLabel() string {
	switch t.Type {
	case TicketTypeIncident:
		return "Incident"
	case TicketTypeProblem:
		return "Problem"
	case TicketTypeChange:
		return "Change Request"
	}
	return string(t.Type)
}

// PriorityCSSClass maps priority to the bootstrap badge class used by pages.
func (t *Ticket) PriorityCSSClass() string {
	switch t.Priority {
	case PriorityCritical:
		return "danger"
	case PriorityHigh:
		return "warning"
	case PriorityMedium:
		return "info"
	default:
		return "secondary"
	}
}

// StatusCSSClass maps status to a bootstrap badge class.
func (t *Ticket) StatusCSSClass() string {
	switch t.Status {
	case TicketStatusNew:
		return "primary"
	case TicketStatusInProgress:
		return "info"
	case TicketStatusWaiting:
		return "warning"
	case TicketStatusResolved:
		return "success"
	case TicketStatusClosed:
		return "secondary"
	case TicketStatusCancelled:
		return "danger"
	}
	return "secondary"
}

// TypeCSSClass maps ticket type to a bootstrap badge class.
func (t *Ticket) TypeCSSClass() string {
	switch t.Type {
	case TicketTypeIncident:
		return "danger"
	case TicketTypeProblem:
		return "warning"
	case TicketTypeChange:
		return "success"
	}
	return "secondary"
}

// StatusDisplay returns the status label, flagging overdue open tickets.
func (t *Ticket) StatusDisplay(now time.Time) string {
	label := t.Status.Label()
	if t.IsOverdue(now) {
		label += " - OVERDUE"
	}
	return label
}

// TicketStats aggregates counts for the statistics endpoints.
type TicketStats struct {
	Total             int64
	ByStatus          map[TicketStatus]int64
	ByType            map[TicketType]int64
	Overdue           int64
	ResolvedLast7Days int64
	MyAssigned        int64
}
