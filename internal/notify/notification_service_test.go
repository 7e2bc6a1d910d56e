package notify

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/events"
	"github.com/nxzen/ticketdesk/internal/repository"
)

type stubTicketRepo struct {
	ticket *domain.Ticket
}

func (r *stubTicketRepo) Create(context.Context, *domain.Ticket) error  { return nil }
func (r *stubTicketRepo) Update(context.Context, *domain.Ticket) error  { return nil }
func (r *stubTicketRepo) Delete(context.Context, string) error          { return nil }
func (r *stubTicketRepo) TouchModified(context.Context, string, time.Time) error {
	return nil
}
func (r *stubTicketRepo) ReplaceRelated(context.Context, string, []string) error { return nil }
func (r *stubTicketRepo) ListRelatedIDs(context.Context, string) ([]string, error) {
	return nil, nil
}
func (r *stubTicketRepo) List(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}
func (r *stubTicketRepo) Count(context.Context, repository.TicketFilter) (int64, error) {
	return 0, nil
}
func (r *stubTicketRepo) Stats(context.Context, string) (*domain.TicketStats, error) {
	return nil, nil
}
func (r *stubTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	if r.ticket != nil && r.ticket.ID == id {
		return r.ticket, nil
	}
	return nil, pgx.ErrNoRows
}
func (r *stubTicketRepo) GetByReference(context.Context, string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}

type stubDepartmentRepo struct {
	dept *domain.Department
}

func (r *stubDepartmentRepo) Create(context.Context, *domain.Department) error { return nil }
func (r *stubDepartmentRepo) Update(context.Context, *domain.Department) error { return nil }
func (r *stubDepartmentRepo) Delete(context.Context, string) error             { return nil }
func (r *stubDepartmentRepo) GetByID(context.Context, string) (*domain.Department, error) {
	return r.dept, nil
}
func (r *stubDepartmentRepo) GetBySlug(context.Context, string) (*domain.Department, error) {
	return r.dept, nil
}
func (r *stubDepartmentRepo) List(context.Context, bool) ([]domain.Department, error) {
	return nil, nil
}
func (r *stubDepartmentRepo) ListManagedBy(context.Context, string) ([]domain.Department, error) {
	return nil, nil
}

type stubUserRepo struct {
	user *domain.User
}

func (r *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (r *stubUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return r.user, nil
}
func (r *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return r.user, nil
}
func (r *stubUserRepo) ListStaff(context.Context) ([]domain.User, error) { return nil, nil }

type stubSettingsRepo struct {
	settings *domain.OnboardingSettings
}

func (r *stubSettingsRepo) Create(context.Context, *domain.OnboardingSettings) error { return nil }
func (r *stubSettingsRepo) Update(context.Context, *domain.OnboardingSettings) error { return nil }
func (r *stubSettingsRepo) GetByUser(context.Context, string) (*domain.OnboardingSettings, error) {
	return r.settings, nil
}
func (r *stubSettingsRepo) GetOrCreate(context.Context, string) (*domain.OnboardingSettings, error) {
	return r.settings, nil
}

type captureQueue struct {
	mu   sync.Mutex
	sent []Message
}

func (q *captureQueue) Enqueue(msg Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, msg)
}

func testService(ticket *domain.Ticket, settings *domain.OnboardingSettings, queue *captureQueue) *NotificationService {
	assignee := &domain.User{ID: "staff-1", Name: "Ada", Email: "ada@example.com", IsStaff: true, IsActive: true}
	dept := &domain.Department{ID: "d-it", Title: "IT Support", EmailAddress: "it@example.com"}

	return NewNotificationService(
		&stubTicketRepo{ticket: ticket},
		&stubDepartmentRepo{dept: dept},
		&stubUserRepo{user: assignee},
		&stubSettingsRepo{settings: settings},
		queue,
		"helpdesk@example.com",
		zap.NewNop(),
	)
}

func testTicket() *domain.Ticket {
	assignee := "staff-1"
	return &domain.Ticket{
		ID:            "t-1",
		Reference:     "it-support-abc123",
		Type:          domain.TicketTypeIncident,
		Title:         "Printer on fire",
		DepartmentID:  "d-it",
		Priority:      domain.PriorityHigh,
		Status:        domain.TicketStatusNew,
		ReporterEmail: "carol@example.com",
		AssignedToID:  &assignee,
	}
}

func TestNotification_AssignRespectsPreference(t *testing.T) {
	tests := []struct {
		name      string
		emailOn   bool
		wantMails int
	}{
		{"enabled", true, 1},
		{"disabled", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &captureQueue{}
			settings := domain.NewDefaultSettings("staff-1")
			settings.EmailOnAssign = tt.emailOn
			svc := testService(testTicket(), settings, queue)

			event := events.New(events.EventTicketAssigned, "t-1", nil, events.TicketAssignedPayload{AssigneeID: "staff-1"})
			if err := svc.onTicketAssigned(context.Background(), event); err != nil {
				t.Fatalf("onTicketAssigned: %v", err)
			}
			if len(queue.sent) != tt.wantMails {
				t.Errorf("mails sent = %d, want %d", len(queue.sent), tt.wantMails)
			}
		})
	}
}

func TestNotification_AssignUsesDepartmentSender(t *testing.T) {
	queue := &captureQueue{}
	svc := testService(testTicket(), domain.NewDefaultSettings("staff-1"), queue)

	event := events.New(events.EventTicketAssigned, "t-1", nil, events.TicketAssignedPayload{AssigneeID: "staff-1"})
	if err := svc.onTicketAssigned(context.Background(), event); err != nil {
		t.Fatalf("onTicketAssigned: %v", err)
	}
	if len(queue.sent) != 1 {
		t.Fatalf("mails sent = %d", len(queue.sent))
	}
	if queue.sent[0].From != "IT Support <it@example.com>" {
		t.Errorf("from = %q", queue.sent[0].From)
	}
	if !strings.Contains(queue.sent[0].Subject, "[it-support-abc123]") {
		t.Errorf("subject %q missing ticket reference", queue.sent[0].Subject)
	}
}

func TestNotification_StatusChangeMailsReporterOnTerminalOnly(t *testing.T) {
	tests := []struct {
		status    domain.TicketStatus
		wantMails int
	}{
		{domain.TicketStatusResolved, 1},
		{domain.TicketStatusClosed, 1},
		{domain.TicketStatusInProgress, 0},
		{domain.TicketStatusWaiting, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			queue := &captureQueue{}
			svc := testService(testTicket(), domain.NewDefaultSettings("staff-1"), queue)

			event := events.New(events.EventTicketStatusChanged, "t-1", nil, events.TicketStatusChangedPayload{
				OldStatus: domain.TicketStatusNew,
				NewStatus: tt.status,
			})
			if err := svc.onStatusChanged(context.Background(), event); err != nil {
				t.Fatalf("onStatusChanged: %v", err)
			}
			if len(queue.sent) != tt.wantMails {
				t.Errorf("mails sent = %d, want %d", len(queue.sent), tt.wantMails)
			}
			if tt.wantMails == 1 && queue.sent[0].To[0] != "carol@example.com" {
				t.Errorf("recipient = %q", queue.sent[0].To[0])
			}
		})
	}
}

func TestNotification_UpdateSkipsSelfAuthoredAndUnassigned(t *testing.T) {
	queue := &captureQueue{}
	svc := testService(testTicket(), domain.NewDefaultSettings("staff-1"), queue)

	// The assignee authored the update; no mail.
	actor := "staff-1"
	event := events.New(events.EventTicketUpdateAdded, "t-1", &actor, events.TicketUpdateAddedPayload{UpdateID: "u-1", Title: "Note"})
	if err := svc.onUpdateAdded(context.Background(), event); err != nil {
		t.Fatalf("onUpdateAdded: %v", err)
	}
	if len(queue.sent) != 0 {
		t.Errorf("mails sent = %d, want 0 for self-authored update", len(queue.sent))
	}

	// An unassigned ticket has nobody to notify.
	unassigned := testTicket()
	unassigned.AssignedToID = nil
	svc = testService(unassigned, domain.NewDefaultSettings("staff-1"), queue)
	other := "staff-2"
	event = events.New(events.EventTicketUpdateAdded, "t-1", &other, events.TicketUpdateAddedPayload{UpdateID: "u-2", Title: "Note"})
	if err := svc.onUpdateAdded(context.Background(), event); err != nil {
		t.Fatalf("onUpdateAdded: %v", err)
	}
	if len(queue.sent) != 0 {
		t.Errorf("mails sent = %d, want 0 for unassigned ticket", len(queue.sent))
	}
}
