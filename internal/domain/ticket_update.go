package domain

import "time"

// TicketUpdate is an append-only progress entry on a ticket thread. Updates
// are ordered ascending by date. Saving one always touches the parent
// ticket's modified timestamp.
type TicketUpdate struct {
	ID          string
	TicketID    string
	Date        time.Time
	Title       string
	Comment     string
	UserID      *string
	IsPublic    bool
	NewStatus   *TicketStatus
	TimeSpent   *time.Duration
	Attachments []Attachment
}

// Attachment is a stored file belonging to one update. Filename, size and
// mime type are derived from the uploaded file when not supplied.
type Attachment struct {
	ID         string
	UpdateID   string
	StorageKey string
	Filename   string
	MimeType   string
	Size       int64
	Uploaded   time.Time
}
