package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nxzen/ticketdesk/internal/domain"
	"github.com/nxzen/ticketdesk/internal/events"
	"github.com/nxzen/ticketdesk/internal/repository"
)

// Enqueuer accepts messages for asynchronous delivery.
type Enqueuer interface {
	Enqueue(msg Message)
}

// NotificationService turns ticket events into outbound mail. Every lookup
// failure is swallowed: notification problems must never affect the ticket
// operation that triggered them.
type NotificationService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	settings    repository.SettingsRepository
	queue       Enqueuer
	defaultFrom string
	logger      *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(
	tickets repository.TicketRepository,
	departments repository.DepartmentRepository,
	users repository.UserRepository,
	settings repository.SettingsRepository,
	queue Enqueuer,
	defaultFrom string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		tickets:     tickets,
		departments: departments,
		users:       users,
		settings:    settings,
		queue:       queue,
		defaultFrom: defaultFrom,
		logger:      logger,
	}
}

// Register wires the service onto the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, s.onTicketAssigned)
	dispatcher.Subscribe(events.EventTicketStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventTicketUpdateAdded, s.onUpdateAdded)
}

func (s *NotificationService) onTicketCreated(ctx context.Context, event events.Event) error {
	ticket, from, err := s.ticketContext(ctx, event.TicketID)
	if err != nil {
		return err
	}

	if ticket.ReporterEmail != "" {
		s.queue.Enqueue(Message{
			From:    from,
			To:      []string{ticket.ReporterEmail},
			Subject: fmt.Sprintf("Ticket Received %s: %s", ticket.DisplayID(), ticket.Title),
			Body: fmt.Sprintf("Your %s has been logged as %s.\n\n%s\n\n"+
				"You will be notified when its status changes.",
				ticket.TypeLabel(), ticket.DisplayID(), ticket.Title),
		})
	}

	if ticket.AssignedToID != nil {
		s.notifyAssignee(ctx, ticket, from, *ticket.AssignedToID,
			fmt.Sprintf("Ticket Assigned %s: %s", ticket.DisplayID(), ticket.Title),
			fmt.Sprintf("A new %s has been assigned to you.\n\nTitle: %s\nPriority: %s\nReporter: %s <%s>",
				ticket.TypeLabel(), ticket.Title, domain.PriorityLabel(ticket.Priority),
				ticket.ReporterName, ticket.ReporterEmail))
	}
	return nil
}

func (s *NotificationService) onTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		return nil
	}
	ticket, from, err := s.ticketContext(ctx, event.TicketID)
	if err != nil {
		return err
	}
	s.notifyAssignee(ctx, ticket, from, payload.AssigneeID,
		fmt.Sprintf("Ticket Assigned %s: %s", ticket.DisplayID(), ticket.Title),
		fmt.Sprintf("Ticket %s has been assigned to you.\n\nTitle: %s\nStatus: %s\nPriority: %s",
			ticket.DisplayID(), ticket.Title, ticket.Status.Label(), domain.PriorityLabel(ticket.Priority)))
	return nil
}

func (s *NotificationService) onStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	// Reporters hear about terminal outcomes only.
	if payload.NewStatus != domain.TicketStatusResolved && payload.NewStatus != domain.TicketStatusClosed {
		return nil
	}
	ticket, from, err := s.ticketContext(ctx, event.TicketID)
	if err != nil {
		return err
	}
	if ticket.ReporterEmail == "" {
		return nil
	}
	body := fmt.Sprintf("Ticket %s is now %s.", ticket.DisplayID(), payload.NewStatus.Label())
	if ticket.Resolution != "" {
		body += "\n\nResolution:\n" + ticket.Resolution
	}
	s.queue.Enqueue(Message{
		From:    from,
		To:      []string{ticket.ReporterEmail},
		Subject: fmt.Sprintf("Ticket %s %s: %s", payload.NewStatus.Label(), ticket.DisplayID(), ticket.Title),
		Body:    body,
	})
	return nil
}

func (s *NotificationService) onUpdateAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdateAddedPayload)
	if !ok {
		return nil
	}
	ticket, from, err := s.ticketContext(ctx, event.TicketID)
	if err != nil {
		return err
	}
	if ticket.AssignedToID == nil {
		return nil
	}
	// The author of an update does not need a mail about it.
	if event.ActorID != nil && *event.ActorID == *ticket.AssignedToID {
		return nil
	}
	assignee, err := s.users.GetByID(ctx, *ticket.AssignedToID)
	if err != nil {
		return err
	}
	prefs, err := s.settings.GetOrCreate(ctx, assignee.ID)
	if err != nil {
		return err
	}
	if !prefs.EmailOnUpdate {
		return nil
	}
	s.queue.Enqueue(Message{
		From:    from,
		To:      []string{assignee.Email},
		Subject: fmt.Sprintf("Ticket Updated %s: %s", ticket.DisplayID(), ticket.Title),
		Body:    fmt.Sprintf("An update was added to ticket %s.\n\n%s", ticket.DisplayID(), payload.Title),
	})
	return nil
}

// notifyAssignee mails an assignee if their preferences allow it.
func (s *NotificationService) notifyAssignee(ctx context.Context, ticket *domain.Ticket, from, assigneeID, subject, body string) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		s.logger.Warn("assignee lookup failed for notification",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return
	}
	prefs, err := s.settings.GetOrCreate(ctx, assignee.ID)
	if err != nil {
		s.logger.Warn("settings lookup failed for notification",
			zap.String("user_id", assignee.ID), zap.Error(err))
		return
	}
	if !prefs.EmailOnAssign {
		return
	}
	s.queue.Enqueue(Message{From: from, To: []string{assignee.Email}, Subject: subject, Body: body})
}

// ticketContext loads the ticket and its department-derived sender address.
func (s *NotificationService) ticketContext(ctx context.Context, ticketID string) (*domain.Ticket, string, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, "", err
	}
	from := s.defaultFrom
	if dept, err := s.departments.GetByID(ctx, ticket.DepartmentID); err == nil {
		from = dept.FromAddress(s.defaultFrom)
	}
	return ticket, from, nil
}
