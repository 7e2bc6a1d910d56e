package service

import (
	"context"
	"fmt"
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

// ---- in-memory fakes ----

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
	related map[string][]string
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, related: map[string][]string{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("t-%d", r.seq)
	ticket.Created = time.Now().UTC()
	ticket.Modified = ticket.Created
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.Modified = time.Now().UTC()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) GetByReference(_ context.Context, ref string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.Reference == ref {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) List(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) Count(_ context.Context, _ repository.TicketFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.tickets)), nil
}

func (r *fakeTicketRepo) TouchModified(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket, ok := r.tickets[id]; ok {
		ticket.Modified = at
	}
	return nil
}

func (r *fakeTicketRepo) ReplaceRelated(_ context.Context, id string, relatedIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.related[id] = relatedIDs
	return nil
}

func (r *fakeTicketRepo) ListRelatedIDs(_ context.Context, id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.related[id], nil
}

func (r *fakeTicketRepo) Stats(_ context.Context, _ string) (*domain.TicketStats, error) {
	return &domain.TicketStats{
		ByStatus: map[domain.TicketStatus]int64{},
		ByType:   map[domain.TicketType]int64{},
	}, nil
}

type fakeUpdateRepo struct {
	mu      sync.Mutex
	seq     int
	updates []*domain.TicketUpdate
}

func (r *fakeUpdateRepo) Create(_ context.Context, update *domain.TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	update.ID = fmt.Sprintf("u-%d", r.seq)
	update.Date = time.Now().UTC()
	clone := *update
	r.updates = append(r.updates, &clone)
	return nil
}

func (r *fakeUpdateRepo) GetByID(_ context.Context, id string) (*domain.TicketUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, update := range r.updates {
		if update.ID == id {
			clone := *update
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUpdateRepo) Update(_ context.Context, update *domain.TicketUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.updates {
		if existing.ID == update.ID {
			clone := *update
			r.updates[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeUpdateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.updates {
		if existing.ID == id {
			r.updates = append(r.updates[:i], r.updates[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeUpdateRepo) List(_ context.Context, filter repository.UpdateFilter) ([]domain.TicketUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketUpdate
	for _, update := range r.updates {
		if filter.TicketID != nil && update.TicketID != *filter.TicketID {
			continue
		}
		if filter.PublicOnly && !update.IsPublic {
			continue
		}
		result = append(result, *update)
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	mu    sync.Mutex
	seq   int
	items []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	attachment.ID = fmt.Sprintf("a-%d", r.seq)
	attachment.Uploaded = time.Now().UTC()
	r.items = append(r.items, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) GetByID(_ context.Context, id string) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			clone := r.items[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAttachmentRepo) ListByUpdate(_ context.Context, updateID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Attachment
	for _, item := range r.items {
		if item.UpdateID == updateID {
			result = append(result, item)
		}
	}
	return result, nil
}

type fakeDepartmentRepo struct {
	departments map[string]*domain.Department
}

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	dept.ID = "d-" + dept.Slug
	r.departments[dept.ID] = dept
	return nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.departments[dept.ID] = dept
	return nil
}

func (r *fakeDepartmentRepo) Delete(_ context.Context, id string) error {
	delete(r.departments, id)
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := r.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return dept, nil
}

func (r *fakeDepartmentRepo) GetBySlug(_ context.Context, slug string) (*domain.Department, error) {
	for _, dept := range r.departments {
		if dept.Slug == slug {
			return dept, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDepartmentRepo) List(_ context.Context, _ bool) ([]domain.Department, error) {
	var result []domain.Department
	for _, dept := range r.departments {
		result = append(result, *dept)
	}
	return result, nil
}

func (r *fakeDepartmentRepo) ListManagedBy(_ context.Context, userID string) ([]domain.Department, error) {
	var result []domain.Department
	for _, dept := range r.departments {
		if dept.ManagerID != nil && *dept.ManagerID == userID {
			result = append(result, *dept)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListStaff(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.IsStaff && user.IsActive {
			result = append(result, *user)
		}
	}
	return result, nil
}

// ---- fixture ----

type fixture struct {
	service   *TicketService
	tickets   *fakeTicketRepo
	updates   *fakeUpdateRepo
	events    *eventRecorder
	managerID string
}

type eventRecorder struct {
	mu     sync.Mutex
	record []events.Event
}

func (r *eventRecorder) handler(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record = append(r.record, event)
	return nil
}

func (r *eventRecorder) ofType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []events.Event
	for _, event := range r.record {
		if event.Type == t {
			result = append(result, event)
		}
	}
	return result
}

func newFixture(t *testing.T, autoAssign bool) *fixture {
	t.Helper()

	managerID := "staff-1"
	deptRepo := &fakeDepartmentRepo{departments: map[string]*domain.Department{
		"d-it": {
			ID:                  "d-it",
			Title:               "IT Support",
			Slug:                "it-support",
			ManagerID:           &managerID,
			IsActive:            true,
			AutoAssignToManager: autoAssign,
		},
	}}
	userRepo := &fakeUserRepo{users: map[string]*domain.User{
		"staff-1":  {ID: "staff-1", Name: "Ada", Email: "ada@example.com", IsStaff: true, IsActive: true},
		"staff-2":  {ID: "staff-2", Name: "Brad", Email: "brad@example.com", IsStaff: true, IsActive: true},
		"former-1": {ID: "former-1", Name: "Gone", Email: "gone@example.com", IsStaff: true, IsActive: false},
		"user-1":   {ID: "user-1", Name: "Carol", Email: "carol@example.com", IsStaff: false, IsActive: true},
	}}

	ticketRepo := newFakeTicketRepo()
	updateRepo := &fakeUpdateRepo{}
	recorder := &eventRecorder{}

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	for _, eventType := range []events.EventType{
		events.EventTicketCreated, events.EventTicketAssigned,
		events.EventTicketStatusChanged, events.EventTicketUpdateAdded,
	} {
		dispatcher.Subscribe(eventType, recorder.handler)
	}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:     ticketRepo,
		UpdateRepo:     updateRepo,
		AttachmentRepo: &fakeAttachmentRepo{},
		DepartmentRepo: deptRepo,
		UserRepo:       userRepo,
	}, dispatcher)

	return &fixture{service: svc, tickets: ticketRepo, updates: updateRepo, events: recorder, managerID: managerID}
}

func validInput() CreateTicketInput {
	return CreateTicketInput{
		Type:          domain.TicketTypeIncident,
		Title:         "Mail server down",
		Description:   "No inbound mail since 09:00",
		DepartmentID:  "d-it",
		Priority:      domain.PriorityCritical,
		ReporterName:  "Carol",
		ReporterEmail: "carol@example.com",
	}
}

// ---- tests ----

func TestTicketService_Create_AutoAssignsToManager(t *testing.T) {
	f := newFixture(t, true)

	ticket, err := f.service.Create(context.Background(), nil, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.AssignedToID == nil || *ticket.AssignedToID != f.managerID {
		t.Errorf("ticket not auto-assigned to manager: %v", ticket.AssignedToID)
	}
	if ticket.Status != domain.TicketStatusNew {
		t.Errorf("status = %v, want new", ticket.Status)
	}
	if !strings.HasPrefix(ticket.Reference, "it-support-") {
		t.Errorf("reference %q should start with department slug", ticket.Reference)
	}
	if got := f.events.ofType(events.EventTicketCreated); len(got) != 1 {
		t.Errorf("expected 1 created event, got %d", len(got))
	}
}

func TestTicketService_Create_NoAutoAssignWhenDisabled(t *testing.T) {
	f := newFixture(t, false)

	ticket, err := f.service.Create(context.Background(), nil, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.AssignedToID != nil {
		t.Errorf("ticket should be unassigned, got %v", *ticket.AssignedToID)
	}
}

func TestTicketService_Create_Validation(t *testing.T) {
	f := newFixture(t, true)

	tests := []struct {
		name   string
		mutate func(*CreateTicketInput)
	}{
		{"bad type", func(in *CreateTicketInput) { in.Type = "outage" }},
		{"empty title", func(in *CreateTicketInput) { in.Title = "  " }},
		{"priority too low", func(in *CreateTicketInput) { in.Priority = 0 }},
		{"priority too high", func(in *CreateTicketInput) { in.Priority = 5 }},
		{"unknown department", func(in *CreateTicketInput) { in.DepartmentID = "d-nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			if _, err := f.service.Create(context.Background(), nil, input); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTicketService_Update_DoesNotReassign(t *testing.T) {
	// Auto-assignment runs at creation only; later edits leave the
	// assignee alone even when the department auto-assigns.
	f := newFixture(t, true)

	ticket, err := f.service.Create(context.Background(), nil, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.service.Assign(context.Background(), nil, ticket.ID, "staff-2"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	title := "Mail server still down"
	updated, err := f.service.Update(context.Background(), nil, ticket.ID, UpdateTicketInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AssignedToID == nil || *updated.AssignedToID != "staff-2" {
		t.Errorf("assignee changed by edit: %v", updated.AssignedToID)
	}
}

func TestTicketService_Assign_RejectsNonStaff(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	if _, err := f.service.Assign(context.Background(), nil, ticket.ID, "user-1"); err == nil {
		t.Error("expected error assigning to non-staff user")
	}
	if _, err := f.service.Assign(context.Background(), nil, ticket.ID, "former-1"); err == nil {
		t.Error("expected error assigning to inactive user")
	}
}

func TestTicketService_Assign_RecordsInternalNote(t *testing.T) {
	f := newFixture(t, false)
	actor := "staff-1"
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	if _, err := f.service.Assign(context.Background(), &actor, ticket.ID, "staff-2"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	notes, _ := f.updates.List(context.Background(), repository.UpdateFilter{TicketID: &ticket.ID})
	if len(notes) != 1 {
		t.Fatalf("expected 1 thread entry, got %d", len(notes))
	}
	if notes[0].Title != "Ticket Reassigned" {
		t.Errorf("note title = %q", notes[0].Title)
	}
	if notes[0].IsPublic {
		t.Error("reassignment note must be internal")
	}
	if got := f.events.ofType(events.EventTicketAssigned); len(got) != 1 {
		t.Errorf("expected 1 assigned event, got %d", len(got))
	}
}

func TestTicketService_AddUpdate_AppliesStatusAndTouchesModified(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	before, _ := f.tickets.GetByID(context.Background(), ticket.ID)

	time.Sleep(time.Millisecond)
	status := domain.TicketStatusResolved
	update, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{
		Title:     "Fixed",
		Comment:   "Restarted the MTA.",
		IsPublic:  true,
		NewStatus: &status,
	})
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}
	if update.ID == "" {
		t.Error("update not persisted")
	}

	after, _ := f.tickets.GetByID(context.Background(), ticket.ID)
	if after.Status != domain.TicketStatusResolved {
		t.Errorf("status = %v, want resolved", after.Status)
	}
	if after.ResolvedDate == nil {
		t.Error("resolved date not stamped")
	}
	if !after.Modified.After(before.Modified) {
		t.Error("parent modified timestamp not touched")
	}
	if got := f.events.ofType(events.EventTicketUpdateAdded); len(got) != 1 {
		t.Errorf("expected 1 update event, got %d", len(got))
	}
	if got := f.events.ofType(events.EventTicketStatusChanged); len(got) != 1 {
		t.Errorf("expected 1 status event, got %d", len(got))
	}
}

func TestTicketService_AddUpdate_CommentOnlyDerivesTitle(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	update, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{
		Comment:  "Rebooted the switch, waiting for link lights.",
		IsPublic: true,
	})
	if err != nil {
		t.Fatalf("AddUpdate without title: %v", err)
	}
	if update.Title != "Rebooted the switch, waiting for link lights." {
		t.Errorf("title = %q, want comment text", update.Title)
	}

	long := strings.Repeat("status unchanged ", 10)
	update, err = f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{Comment: long, IsPublic: true})
	if err != nil {
		t.Fatalf("AddUpdate long comment: %v", err)
	}
	if got := len([]rune(update.Title)); got != 50 {
		t.Errorf("derived title length = %d, want 50", got)
	}
}

func TestTicketService_AddUpdate_RequiresComment(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	if _, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{Title: "Heads up", Comment: "  "}); err == nil {
		t.Error("expected error for update without comment")
	}

	update, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{
		Title:   "Heads up",
		Comment: "Vendor ETA is tomorrow.",
	})
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}
	if update.Title != "Heads up" {
		t.Errorf("explicit title overridden: %q", update.Title)
	}
}

func TestTicketService_EditUpdate(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	update, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{
		Title:    "Draft",
		Comment:  "Typo-riddled note.",
		IsPublic: false,
	})
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}

	comment := "Corrected note."
	public := true
	edited, err := f.service.EditUpdate(context.Background(), update.ID, EditUpdateInput{
		Comment:  &comment,
		IsPublic: &public,
	})
	if err != nil {
		t.Fatalf("EditUpdate: %v", err)
	}
	if edited.Comment != comment || !edited.IsPublic {
		t.Errorf("edit not applied: %+v", edited)
	}
	if edited.Title != "Draft" {
		t.Errorf("title changed without being set: %q", edited.Title)
	}

	empty := " "
	if _, err := f.service.EditUpdate(context.Background(), update.ID, EditUpdateInput{Comment: &empty}); err == nil {
		t.Error("expected error blanking the comment")
	}
	if _, err := f.service.EditUpdate(context.Background(), "u-missing", EditUpdateInput{Comment: &comment}); err == nil {
		t.Error("expected not-found for unknown update")
	}
}

func TestTicketService_DeleteUpdate_ReturnsAttachments(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	update, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{
		Comment:  "Config dump attached.",
		IsPublic: false,
		Attachments: []domain.Attachment{
			{StorageKey: "attachments/2026/08/abc.txt", Filename: "dump.txt", MimeType: "text/plain", Size: 12},
		},
	})
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}

	removed, err := f.service.DeleteUpdate(context.Background(), update.ID)
	if err != nil {
		t.Fatalf("DeleteUpdate: %v", err)
	}
	if len(removed) != 1 || removed[0].StorageKey != "attachments/2026/08/abc.txt" {
		t.Errorf("attachments not reported for cleanup: %+v", removed)
	}

	if _, err := f.service.GetUpdate(context.Background(), update.ID, false); err == nil {
		t.Error("update still readable after delete")
	}
	left, _ := f.service.ListUpdates(context.Background(), ticket.ID, false)
	if len(left) != 0 {
		t.Errorf("thread not empty after delete: %d entries", len(left))
	}
}

func TestTicketService_GetUpdate_HidesInternalFromPublic(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	update, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{
		Comment:  "Escalated to the vendor.",
		IsPublic: false,
	})
	if err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}

	if _, err := f.service.GetUpdate(context.Background(), update.ID, true); err == nil {
		t.Error("internal entry visible to public caller")
	}
	if _, err := f.service.GetUpdate(context.Background(), update.ID, false); err != nil {
		t.Errorf("staff read failed: %v", err)
	}
}

func TestTicketService_CloseAndReopen(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	closed, err := f.service.Close(context.Background(), nil, ticket.ID, "Replaced the disk.")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != domain.TicketStatusClosed {
		t.Errorf("status = %v, want closed", closed.Status)
	}
	if closed.ClosedDate == nil {
		t.Error("closed date not stamped")
	}
	if closed.Resolution != "Replaced the disk." {
		t.Errorf("resolution = %q", closed.Resolution)
	}

	reopened, err := f.service.Reopen(context.Background(), nil, ticket.ID, "Disk failed again")
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %v, want in_progress", reopened.Status)
	}
	if reopened.ClosedDate != nil {
		t.Errorf("closed date survived reopen: %v", reopened.ClosedDate)
	}
}

func TestTicketService_Reopen_RejectsOpenTicket(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	if _, err := f.service.Reopen(context.Background(), nil, ticket.ID, ""); err == nil {
		t.Error("expected error reopening an open ticket")
	}
}

func TestTicketService_ListUpdates_PublicOnly(t *testing.T) {
	f := newFixture(t, false)
	ticket, _ := f.service.Create(context.Background(), nil, validInput())

	if _, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{Title: "Public note", Comment: "Visible to the reporter.", IsPublic: true}); err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}
	if _, err := f.service.AddUpdate(context.Background(), nil, ticket.ID, AddUpdateInput{Title: "Internal note", Comment: "Staff only.", IsPublic: false}); err != nil {
		t.Fatalf("AddUpdate: %v", err)
	}

	all, err := f.service.ListUpdates(context.Background(), ticket.ID, false)
	if err != nil {
		t.Fatalf("ListUpdates: %v", err)
	}
	public, err := f.service.ListUpdates(context.Background(), ticket.ID, true)
	if err != nil {
		t.Fatalf("ListUpdates: %v", err)
	}

	if len(all) != 2 || len(public) != 1 {
		t.Errorf("len(all) = %d, len(public) = %d", len(all), len(public))
	}
	if len(public) == 1 && public[0].Title != "Public note" {
		t.Errorf("public entry = %q", public[0].Title)
	}
}
