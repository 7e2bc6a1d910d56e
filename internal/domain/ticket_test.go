package domain

import (
	"testing"
	"time"
)

func TestSLAFor(t *testing.T) {
	tests := []struct {
		priority int
		want     time.Duration
	}{
		{PriorityCritical, 4 * time.Hour},
		{PriorityHigh, 8 * time.Hour},
		{PriorityMedium, 24 * time.Hour},
		{PriorityLow, 72 * time.Hour},
		{0, 24 * time.Hour},
		{99, 24 * time.Hour},
		{-1, 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := SLAFor(tt.priority); got != tt.want {
			t.Errorf("SLAFor(%d) = %v, want %v", tt.priority, got, tt.want)
		}
	}
}

func TestTicket_IsOverdue(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   TicketStatus
		priority int
		now      time.Time
		want     bool
	}{
		{"critical past window", TicketStatusNew, PriorityCritical, created.Add(5 * time.Hour), true},
		{"critical inside window", TicketStatusNew, PriorityCritical, created.Add(3 * time.Hour), false},
		{"exactly at deadline", TicketStatusNew, PriorityCritical, created.Add(4 * time.Hour), false},
		{"low priority inside window", TicketStatusInProgress, PriorityLow, created.Add(48 * time.Hour), false},
		{"waiting counts as open", TicketStatusWaiting, PriorityHigh, created.Add(9 * time.Hour), true},
		{"resolved never overdue", TicketStatusResolved, PriorityCritical, created.Add(100 * time.Hour), false},
		{"closed never overdue", TicketStatusClosed, PriorityCritical, created.Add(100 * time.Hour), false},
		{"cancelled never overdue", TicketStatusCancelled, PriorityCritical, created.Add(100 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticket := &Ticket{Status: tt.status, Priority: tt.priority, Created: created}
			if got := ticket.IsOverdue(tt.now); got != tt.want {
				t.Errorf("IsOverdue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTicket_SLADeadline(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{Priority: PriorityHigh, Created: created}

	want := created.Add(8 * time.Hour)
	if got := ticket.SLADeadline(); !got.Equal(want) {
		t.Errorf("SLADeadline = %v, want %v", got, want)
	}
}

func TestTicket_ApplyStatus_StampsResolvedOnce(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusInProgress}
	first := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(2 * time.Hour)

	ticket.ApplyStatus(TicketStatusResolved, first)
	if ticket.ResolvedDate == nil || !ticket.ResolvedDate.Equal(first) {
		t.Fatalf("resolved date not stamped: %v", ticket.ResolvedDate)
	}

	// Bouncing through another state and back must not move the stamp.
	ticket.ApplyStatus(TicketStatusInProgress, second)
	ticket.ApplyStatus(TicketStatusResolved, second)
	if !ticket.ResolvedDate.Equal(first) {
		t.Errorf("resolved date moved to %v, want %v", ticket.ResolvedDate, first)
	}
}

func TestTicket_ApplyStatus_StampsClosedOnce(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusResolved}
	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	ticket.ApplyStatus(TicketStatusClosed, at)
	if ticket.ClosedDate == nil || !ticket.ClosedDate.Equal(at) {
		t.Fatalf("closed date not stamped: %v", ticket.ClosedDate)
	}

	// Re-applying closed keeps the original stamp.
	ticket.ApplyStatus(TicketStatusClosed, at.Add(time.Hour))
	if !ticket.ClosedDate.Equal(at) {
		t.Errorf("closed date moved to %v, want %v", ticket.ClosedDate, at)
	}
}

func TestTicket_ApplyStatus_ReopenClearsClosedDate(t *testing.T) {
	at := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusInProgress}

	ticket.ApplyStatus(TicketStatusResolved, at)
	ticket.ApplyStatus(TicketStatusClosed, at.Add(time.Hour))
	ticket.ApplyStatus(TicketStatusInProgress, at.Add(2*time.Hour))

	if ticket.ClosedDate != nil {
		t.Errorf("closed date not cleared on reopen: %v", ticket.ClosedDate)
	}
	// The resolved date is history and survives a reopen.
	if ticket.ResolvedDate == nil || !ticket.ResolvedDate.Equal(at) {
		t.Errorf("resolved date lost on reopen: %v", ticket.ResolvedDate)
	}

	// Closing again stamps a fresh closed date.
	ticket.ApplyStatus(TicketStatusClosed, at.Add(3*time.Hour))
	if ticket.ClosedDate == nil || !ticket.ClosedDate.Equal(at.Add(3*time.Hour)) {
		t.Errorf("second close not stamped: %v", ticket.ClosedDate)
	}
}

func TestTicket_ApplyStatus_Unguarded(t *testing.T) {
	// Any transition is allowed, including closed straight from new.
	ticket := &Ticket{Status: TicketStatusNew}
	at := time.Now().UTC()

	ticket.ApplyStatus(TicketStatusClosed, at)
	if ticket.Status != TicketStatusClosed {
		t.Errorf("status = %v, want closed", ticket.Status)
	}
	if ticket.ResolvedDate != nil {
		t.Errorf("resolved date stamped on direct close: %v", ticket.ResolvedDate)
	}
}

func TestTicket_StatusDisplay(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	ticket := &Ticket{Status: TicketStatusInProgress, Priority: PriorityCritical, Created: created}

	if got := ticket.StatusDisplay(created.Add(time.Hour)); got != "In Progress" {
		t.Errorf("StatusDisplay = %q", got)
	}
	if got := ticket.StatusDisplay(created.Add(10 * time.Hour)); got != "In Progress - OVERDUE" {
		t.Errorf("StatusDisplay = %q", got)
	}
}

func TestTicket_DisplayID(t *testing.T) {
	ticket := &Ticket{Reference: "it-support-3f9a2c1d"}
	if got := ticket.DisplayID(); got != "[it-support-3f9a2c1d]" {
		t.Errorf("DisplayID = %q", got)
	}
}

func TestTicketStatus_IsOpen(t *testing.T) {
	open := []TicketStatus{TicketStatusNew, TicketStatusInProgress, TicketStatusWaiting}
	closed := []TicketStatus{TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled}

	for _, s := range open {
		if !s.IsOpen() {
			t.Errorf("%s should be open", s)
		}
	}
	for _, s := range closed {
		if s.IsOpen() {
			t.Errorf("%s should not be open", s)
		}
	}
}

func TestTicket_CSSClasses(t *testing.T) {
	ticket := &Ticket{Priority: PriorityCritical, Status: TicketStatusNew, Type: TicketTypeIncident}
	if got := ticket.PriorityCSSClass(); got != "danger" {
		t.Errorf("PriorityCSSClass = %q", got)
	}
	if got := ticket.StatusCSSClass(); got != "primary" {
		t.Errorf("StatusCSSClass = %q", got)
	}
	if got := ticket.TypeCSSClass(); got != "danger" {
		t.Errorf("TypeCSSClass = %q", got)
	}

	ticket.Priority = 7
	if got := ticket.PriorityCSSClass(); got != "secondary" {
		t.Errorf("PriorityCSSClass for unknown priority = %q", got)
	}
}
