package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/events"
	"github.com/nxzen/ticketdesk/internal/repository"
	apperrors "github.com/nxzen/ticketdesk/pkg/util"
)

// CreateTicketInput carries the fields accepted at ticket creation.
type CreateTicketInput struct {
	Type            domain.TicketType
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
	ParentProblemID *string
	RelatedIDs      []string
}

// UpdateTicketInput carries mutable ticket fields. Nil pointers leave the
// current value untouched.
type UpdateTicketInput struct {
	Title           *string
	Description     *string
	DepartmentID    *string
	Priority        *int
	Impact          *int
	Urgency         *int
	ReporterName    *string
	ReporterEmail   *string
	ReporterPhone   *string
	AffectedService *string
	Status          *domain.TicketStatus
	Resolution      *string
	ParentProblemID *string
	ClearParent     bool
	RelatedIDs      []string
}

// AddUpdateInput carries a new progress-thread entry. The comment is
// mandatory; a blank title is derived from the comment's leading characters.
type AddUpdateInput struct {
	Title       string
	Comment     string
	IsPublic    bool
	NewStatus   *domain.TicketStatus
	TimeSpent   *time.Duration
	Attachments []domain.Attachment
}

// TicketPage is one page of a ticket listing.
type TicketPage struct {
	Items  []domain.Ticket
	Total  int64
	Limit  int
	Offset int
}

// TicketService implements ticket lifecycle operations.
type TicketService struct {
	tickets     repository.TicketRepository
	updates     repository.TicketUpdateRepository
	attachments repository.AttachmentRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies encapsulates repo requirements for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	UpdateRepo     repository.TicketUpdateRepository
	AttachmentRepo repository.AttachmentRepository
	DepartmentRepo repository.DepartmentRepository
	UserRepo       repository.UserRepository
}

// NewTicketService builds the service.
func NewTicketService(deps TicketDependencies, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		updates:     deps.UpdateRepo,
		attachments: deps.AttachmentRepo,
		departments: deps.DepartmentRepo,
		users:       deps.UserRepo,
		dispatcher:  dispatcher,
	}
}

// Create logs a new ticket. The reference is derived from the department
// slug, and when the department opts in the ticket is assigned to its
// manager at creation. Creation is the only moment auto-assignment runs.
func (s *TicketService) Create(ctx context.Context, actorID *string, input CreateTicketInput) (*domain.Ticket, error) {
	if !domain.ValidTicketType(input.Type) {
		return nil, apperrors.NewValidationError("invalid ticket type", map[string]any{"ticket_type": input.Type})
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if input.Priority < domain.PriorityCritical || input.Priority > domain.PriorityLow {
		return nil, apperrors.NewValidationError("priority must be between 1 and 4", map[string]any{"priority": input.Priority})
	}

	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": input.DepartmentID})
		}
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Reference:       newReference(dept.Slug),
		Type:            input.Type,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		DepartmentID:    dept.ID,
		Priority:        input.Priority,
		Impact:          input.Impact,
		Urgency:         input.Urgency,
		ReporterName:    input.ReporterName,
		ReporterEmail:   input.ReporterEmail,
		ReporterPhone:   input.ReporterPhone,
		AffectedService: input.AffectedService,
		Status:          domain.TicketStatusNew,
		ParentProblemID: input.ParentProblemID,
	}

	if dept.AutoAssignToManager && dept.ManagerID != nil {
		ticket.AssignedToID = dept.ManagerID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(input.RelatedIDs) > 0 {
		if err := s.tickets.ReplaceRelated(ctx, ticket.ID, input.RelatedIDs); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.RelatedIDs = input.RelatedIDs
	}

	_ = s.dispatcher.Publish(ctx, events.New(events.EventTicketCreated, ticket.ID, actorID, events.TicketCreatedPayload{
		Reference:    ticket.Reference,
		DepartmentID: ticket.DepartmentID,
		Type:         ticket.Type,
		Priority:     ticket.Priority,
		Title:        ticket.Title,
		AssignedToID: ticket.AssignedToID,
	}))

	return ticket, nil
}

// Get fetches a ticket with its related incident ids loaded.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return s.withRelated(ctx, ticket)
}

// GetByReference fetches a ticket by its human-readable reference.
func (s *TicketService) GetByReference(ctx context.Context, ref string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByReference(ctx, strings.Trim(ref, "[]"))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"reference": ref})
		}
		return nil, apperrors.MapError(err)
	}
	return s.withRelated(ctx, ticket)
}

func (s *TicketService) withRelated(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	related, err := s.tickets.ListRelatedIDs(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.RelatedIDs = related
	return ticket, nil
}

// List returns one page of tickets plus the unpaged total.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) (*TicketPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = domain.DefaultPageSize
	}
	items, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.tickets.Count(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

// Update applies field changes. Status changes run through the stamping
// rules: resolved/closed dates are written once, and leaving closed clears
// the closed date.
func (s *TicketService) Update(ctx context.Context, actorID *string, id string, input UpdateTicketInput) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", nil)
		}
		ticket.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, apperrors.NewNotFound("department", map[string]any{"department_id": *input.DepartmentID})
			}
			return nil, apperrors.MapError(err)
		}
		ticket.DepartmentID = *input.DepartmentID
	}
	if input.Priority != nil {
		if *input.Priority < domain.PriorityCritical || *input.Priority > domain.PriorityLow {
			return nil, apperrors.NewValidationError("priority must be between 1 and 4", nil)
		}
		ticket.Priority = *input.Priority
	}
	if input.Impact != nil {
		ticket.Impact = *input.Impact
	}
	if input.Urgency != nil {
		ticket.Urgency = *input.Urgency
	}
	if input.ReporterName != nil {
		ticket.ReporterName = *input.ReporterName
	}
	if input.ReporterEmail != nil {
		ticket.ReporterEmail = *input.ReporterEmail
	}
	if input.ReporterPhone != nil {
		ticket.ReporterPhone = *input.ReporterPhone
	}
	if input.AffectedService != nil {
		ticket.AffectedService = *input.AffectedService
	}
	if input.Resolution != nil {
		ticket.Resolution = *input.Resolution
	}
	if input.ClearParent {
		ticket.ParentProblemID = nil
	} else if input.ParentProblemID != nil {
		ticket.ParentProblemID = input.ParentProblemID
	}
	if input.Status != nil {
		if !domain.ValidTicketStatus(*input.Status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		ticket.ApplyStatus(*input.Status, time.Now().UTC())
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if input.RelatedIDs != nil {
		if err := s.tickets.ReplaceRelated(ctx, ticket.ID, input.RelatedIDs); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.RelatedIDs = input.RelatedIDs
	}

	if input.Status != nil && oldStatus != ticket.Status {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventTicketStatusChanged, ticket.ID, actorID, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		}))
	}

	return ticket, nil
}

// Assign hands the ticket to an active staff user and records the change as
// an internal thread entry.
func (s *TicketService) Assign(ctx context.Context, actorID *string, id, assigneeID string) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsStaff || !assignee.IsActive {
		return nil, apperrors.NewValidationError("assignee must be an active staff user", map[string]any{"user_id": assigneeID})
	}

	previous := ticket.AssignedToID
	if previous != nil && *previous == assigneeID {
		return ticket, nil
	}

	ticket.AssignedToID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	note := &domain.TicketUpdate{
		TicketID: ticket.ID,
		Title:    "Ticket Reassigned",
		Comment:  fmt.Sprintf("Assigned to %s.", assignee.Name),
		UserID:   actorID,
		IsPublic: false,
	}
	if err := s.updates.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.TouchModified(ctx, ticket.ID, time.Now().UTC()); err != nil {
		return nil, apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.New(events.EventTicketAssigned, ticket.ID, actorID, events.TicketAssignedPayload{
		AssigneeID:       assignee.ID,
		PreviousAssignee: previous,
	}))

	return ticket, nil
}

// AddUpdate appends a progress entry. When the entry carries a new status it
// is applied to the ticket first, then the entry and its attachments are
// stored and the parent's modified timestamp is touched.
func (s *TicketService) AddUpdate(ctx context.Context, actorID *string, ticketID string, input AddUpdateInput) (*domain.TicketUpdate, error) {
	if strings.TrimSpace(input.Comment) == "" {
		return nil, apperrors.NewValidationError("update comment is required", nil)
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = titleFromComment(input.Comment)
	}

	ticket, err := s.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if input.NewStatus != nil {
		if !domain.ValidTicketStatus(*input.NewStatus) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.NewStatus})
		}
		ticket.ApplyStatus(*input.NewStatus, time.Now().UTC())
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	update := &domain.TicketUpdate{
		TicketID:  ticket.ID,
		Title:     title,
		Comment:   input.Comment,
		UserID:    actorID,
		IsPublic:  input.IsPublic,
		NewStatus: input.NewStatus,
		TimeSpent: input.TimeSpent,
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return nil, apperrors.MapError(err)
	}

	for i := range input.Attachments {
		input.Attachments[i].UpdateID = update.ID
		if err := s.attachments.Create(ctx, &input.Attachments[i]); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	update.Attachments = input.Attachments

	if err := s.tickets.TouchModified(ctx, ticket.ID, time.Now().UTC()); err != nil {
		return nil, apperrors.MapError(err)
	}

	_ = s.dispatcher.Publish(ctx, events.New(events.EventTicketUpdateAdded, ticket.ID, actorID, events.TicketUpdateAddedPayload{
		UpdateID:  update.ID,
		Title:     update.Title,
		IsPublic:  update.IsPublic,
		NewStatus: update.NewStatus,
	}))

	if input.NewStatus != nil && oldStatus != ticket.Status {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventTicketStatusChanged, ticket.ID, actorID, events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   update.Comment,
		}))
	}

	return update, nil
}

// ListUpdates returns the thread for a ticket. Non-staff callers see public
// entries only.
func (s *TicketService) ListUpdates(ctx context.Context, ticketID string, publicOnly bool) ([]domain.TicketUpdate, error) {
	if _, err := s.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.SearchUpdates(ctx, repository.UpdateFilter{TicketID: &ticketID, PublicOnly: publicOnly})
}

// SearchUpdates lists thread entries across tickets, attachments included.
func (s *TicketService) SearchUpdates(ctx context.Context, filter repository.UpdateFilter) ([]domain.TicketUpdate, error) {
	items, err := s.updates.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range items {
		attachments, err := s.attachments.ListByUpdate(ctx, items[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		items[i].Attachments = attachments
	}
	return items, nil
}

// GetUpdate fetches one thread entry. Internal entries are hidden from
// non-staff callers as if they did not exist.
func (s *TicketService) GetUpdate(ctx context.Context, id string, publicOnly bool) (*domain.TicketUpdate, error) {
	update, err := s.updates.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("update", map[string]any{"update_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if publicOnly && !update.IsPublic {
		return nil, apperrors.NewNotFound("update", map[string]any{"update_id": id})
	}
	attachments, err := s.attachments.ListByUpdate(ctx, update.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	update.Attachments = attachments
	return update, nil
}

// EditUpdateInput carries the mutable fields of a thread entry. Nil pointers
// leave the current value untouched.
type EditUpdateInput struct {
	Title    *string
	Comment  *string
	IsPublic *bool
}

// EditUpdate rewords a thread entry or flips its visibility. The entry's
// recorded status change and time spent are history and stay fixed.
func (s *TicketService) EditUpdate(ctx context.Context, id string, input EditUpdateInput) (*domain.TicketUpdate, error) {
	update, err := s.GetUpdate(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if input.Comment != nil {
		if strings.TrimSpace(*input.Comment) == "" {
			return nil, apperrors.NewValidationError("update comment is required", nil)
		}
		update.Comment = *input.Comment
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			title = titleFromComment(update.Comment)
		}
		update.Title = title
	}
	if input.IsPublic != nil {
		update.IsPublic = *input.IsPublic
	}

	if err := s.updates.Update(ctx, update); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.TouchModified(ctx, update.TicketID, time.Now().UTC()); err != nil {
		return nil, apperrors.MapError(err)
	}
	return update, nil
}

// DeleteUpdate removes a thread entry. Its attachment rows go with it
// (schema cascade); the stored files are returned so the caller can delete
// them from disk.
func (s *TicketService) DeleteUpdate(ctx context.Context, id string) ([]domain.Attachment, error) {
	update, err := s.GetUpdate(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := s.updates.Delete(ctx, id); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.TouchModified(ctx, update.TicketID, time.Now().UTC()); err != nil {
		return nil, apperrors.MapError(err)
	}
	return update.Attachments, nil
}

// Close resolves and closes a ticket in one step, recording the resolution
// as a public thread entry.
func (s *TicketService) Close(ctx context.Context, actorID *string, id, resolution string) (*domain.Ticket, error) {
	if strings.TrimSpace(resolution) != "" {
		status := domain.TicketStatusClosed
		if _, err := s.Update(ctx, actorID, id, UpdateTicketInput{Resolution: &resolution, Status: &status}); err != nil {
			return nil, err
		}
		if _, err := s.AddUpdate(ctx, actorID, id, AddUpdateInput{
			Title:    "Ticket Closed",
			Comment:  resolution,
			IsPublic: true,
		}); err != nil {
			return nil, err
		}
		return s.Get(ctx, id)
	}

	status := domain.TicketStatusClosed
	if _, err := s.Update(ctx, actorID, id, UpdateTicketInput{Status: &status}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Reopen puts a closed or resolved ticket back in progress. The closed date
// is cleared; the resolved date is history and stays.
func (s *TicketService) Reopen(ctx context.Context, actorID *string, id, reason string) (*domain.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsOpen() {
		return nil, apperrors.NewConflict("ticket is already open", map[string]any{"status": ticket.Status})
	}

	status := domain.TicketStatusInProgress
	if _, err := s.Update(ctx, actorID, id, UpdateTicketInput{Status: &status}); err != nil {
		return nil, err
	}

	comment := reason
	if comment == "" {
		comment = "Ticket reopened."
	}
	if _, err := s.AddUpdate(ctx, actorID, id, AddUpdateInput{
		Title:    "Ticket Reopened",
		Comment:  comment,
		IsPublic: true,
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a ticket and its thread.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Statistics aggregates dashboard counters, computed fresh on every call.
func (s *TicketService) Statistics(ctx context.Context, userID string) (*domain.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

// newReference builds a department-scoped reference such as
// "it-support-3f9a2c1d".
func newReference(slug string) string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return slug + "-" + fragment
}

// titleFromComment takes the comment's first 50 characters as the title.
func titleFromComment(comment string) string {
	runes := []rune(strings.TrimSpace(comment))
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}
