package dto

import (
	"time"

	"github.com/nxzen/ticketdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Type            domain.TicketType `json:"ticket_type"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	DepartmentID    string            `json:"department_id"`
	Priority        int               `json:"priority"`
	Impact          int               `json:"impact"`
	Urgency         int               `json:"urgency"`
	ReporterName    string            `json:"reporter_name"`
	ReporterEmail   string            `json:"reporter_email"`
	ReporterPhone   string            `json:"reporter_phone"`
	AffectedService string            `json:"affected_service"`
	ParentProblemID *string           `json:"parent_problem_id"`
	RelatedIDs      []string          `json:"related_ids"`
}

// UpdateTicketRequest payload. Absent fields keep their current value.
type UpdateTicketRequest struct {
	Title           *string              `json:"title"`
	Description     *string              `json:"description"`
	DepartmentID    *string              `json:"department_id"`
	Priority        *int                 `json:"priority"`
	Impact          *int                 `json:"impact"`
	Urgency         *int                 `json:"urgency"`
	ReporterName    *string              `json:"reporter_name"`
	ReporterEmail   *string              `json:"reporter_email"`
	ReporterPhone   *string              `json:"reporter_phone"`
	AffectedService *string              `json:"affected_service"`
	Status          *domain.TicketStatus `json:"status"`
	Resolution      *string              `json:"resolution"`
	ParentProblemID *string              `json:"parent_problem_id"`
	ClearParent     bool                 `json:"clear_parent"`
	RelatedIDs      []string             `json:"related_ids"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// CloseTicketRequest payload.
type CloseTicketRequest struct {
	Resolution string `json:"resolution"`
}

// ReopenTicketRequest payload.
type ReopenTicketRequest struct {
	Reason string `json:"reason"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string              `json:"id"`
	Reference       string              `json:"reference"`
	DisplayID       string              `json:"display_id"`
	Type            domain.TicketType   `json:"ticket_type"`
	Title           string              `json:"title"`
	DepartmentID    string              `json:"department_id"`
	Priority        int                 `json:"priority"`
	PriorityLabel   string              `json:"priority_label"`
	Status          domain.TicketStatus `json:"status"`
	StatusDisplay   string              `json:"status_display"`
	AssignedToID    *string             `json:"assigned_to_id"`
	AffectedService string              `json:"affected_service"`
	IsOverdue       bool                `json:"is_overdue"`
	SLADeadline     time.Time           `json:"sla_deadline"`
	Created         time.Time           `json:"created"`
	Modified        time.Time           `json:"modified"`
}

// TicketDetail response.
type TicketDetail struct {
	TicketSummary
	Description     string     `json:"description"`
	Impact          int        `json:"impact"`
	Urgency         int        `json:"urgency"`
	ReporterName    string     `json:"reporter_name"`
	ReporterEmail   string     `json:"reporter_email"`
	ReporterPhone   string     `json:"reporter_phone"`
	Resolution      string     `json:"resolution"`
	ParentProblemID *string    `json:"parent_problem_id"`
	RelatedIDs      []string   `json:"related_ids"`
	HoursOpen       int        `json:"hours_open"`
	ResolvedDate    *time.Time `json:"resolved_date"`
	ClosedDate      *time.Time `json:"closed_date"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Items  []TicketSummary `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// SLAResponse reports the SLA state of one ticket.
type SLAResponse struct {
	TicketID    string    `json:"ticket_id"`
	Priority    int       `json:"priority"`
	SLAHours    int       `json:"sla_hours"`
	Deadline    time.Time `json:"deadline"`
	IsOverdue   bool      `json:"is_overdue"`
	HoursOpen   int       `json:"hours_open"`
	StatusLabel string    `json:"status_label"`
}

// StatsResponse reports dashboard counters.
type StatsResponse struct {
	Total             int64                          `json:"total"`
	ByStatus          map[domain.TicketStatus]int64  `json:"by_status"`
	ByType            map[domain.TicketType]int64    `json:"by_type"`
	Overdue           int64                          `json:"overdue"`
	ResolvedLast7Days int64                          `json:"resolved_last_7_days"`
	MyAssigned        int64                          `json:"my_assigned"`
}

// CreateUpdateRequest payload for a new thread entry. TicketID is only
// read on the top-level collection; nested routes take it from the path.
type CreateUpdateRequest struct {
	TicketID         string               `json:"ticket_id"`
	Title            string               `json:"title"`
	Comment          string               `json:"comment"`
	IsPublic         *bool                `json:"is_public"`
	NewStatus        *domain.TicketStatus `json:"new_status"`
	TimeSpentMinutes *int                 `json:"time_spent_minutes"`
}

// EditUpdateRequest payload. Absent fields keep their current value.
type EditUpdateRequest struct {
	Title    *string `json:"title"`
	Comment  *string `json:"comment"`
	IsPublic *bool   `json:"is_public"`
}

// UpdateResponse represents one thread entry.
type UpdateResponse struct {
	ID          string               `json:"id"`
	TicketID    string               `json:"ticket_id"`
	Date        time.Time            `json:"date"`
	Title       string               `json:"title"`
	Comment     string               `json:"comment"`
	UserID      *string              `json:"user_id"`
	IsPublic    bool                 `json:"is_public"`
	NewStatus   *domain.TicketStatus `json:"new_status"`
	TimeSpent   *string              `json:"time_spent,omitempty"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	MimeType string    `json:"mime_type"`
	Size     int64     `json:"size"`
	Uploaded time.Time `json:"uploaded"`
	URL      string    `json:"url,omitempty"`
}
