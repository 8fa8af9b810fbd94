package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/events"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
	apperrors "github.com/spec-kit/sla-engine/pkg/util"
)

// TicketService covers the SLA-relevant slice of the ticket lifecycle:
// creation with policy snapshot, first response, resolve, close. Full ticket
// CRUD lives in a neighboring system.
type TicketService struct {
	tickets    repository.TicketRepository
	resolver   *sla.PolicyResolver
	dispatcher events.Dispatcher
}

// TicketCreateInput describes the SLA-relevant creation payload.
type TicketCreateInput struct {
	Category    string
	Title       string
	Priority    domain.TicketPriority
	SLAPolicyID *string
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, resolver *sla.PolicyResolver, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, resolver: resolver, dispatcher: dispatcher}
}

// CreateTicket creates a ticket, snapshotting the resolved policy's
// commitment into the ticket so later policy edits never rewrite history.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := &domain.Ticket{
		ExternalKey: generateTicketKey(),
		Category:    strings.TrimSpace(input.Category),
		Title:       strings.TrimSpace(input.Title),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		SLAPolicyID: input.SLAPolicyID,
		CreatedAt:   time.Now().UTC(),
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	policy := s.resolver.Resolve(ctx, ticket)
	rule := sla.RulesForPriority(policy, ticket.Priority)
	ticket.SLA = domain.SLASnapshot{
		ResponseTimeHours:   rule.ResponseTimeHours,
		ResolutionTimeHours: rule.ResolutionTimeHours,
	}
	if policy.ID != "" {
		policyID := policy.ID
		ticket.SLA.PolicyID = &policyID
	}
	ticket.DueDate = ticket.CreatedAt.Add(time.Duration(rule.ResolutionTimeHours * float64(time.Hour)))

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Priority:            ticket.Priority,
			ResponseTimeHours:   ticket.SLA.ResponseTimeHours,
			ResolutionTimeHours: ticket.SLA.ResolutionTimeHours,
			DueDate:             ticket.DueDate,
		},
	})
	return ticket, nil
}

// MarkFirstResponse records the set-once first response timestamp and the
// measured response time.
func (s *TicketService) MarkFirstResponse(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.FirstResponseAt != nil {
		return ticket, nil
	}
	now := time.Now().UTC()
	ticket.FirstResponseAt = &now
	responseHours := now.Sub(ticket.CreatedAt).Hours()
	ticket.Metrics.ResponseTimeHours = &responseHours
	if ticket.Status == domain.TicketStatusOpen {
		ticket.Status = domain.TicketStatusInProgress
	}
	if err := s.tickets.UpdateLifecycle(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// ResolveTicket moves the ticket into the resolved terminal state.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.terminate(ctx, ticketID, domain.TicketStatusResolved)
}

// CloseTicket moves the ticket into the closed terminal state.
func (s *TicketService) CloseTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.terminate(ctx, ticketID, domain.TicketStatusClosed)
}

func (s *TicketService) terminate(ctx context.Context, ticketID string, status domain.TicketStatus) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return ticket, nil
	}
	now := time.Now().UTC()
	ticket.Status = status
	switch status {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
	}
	if ticket.Metrics.ResolutionTimeHours == nil {
		resolutionHours := now.Sub(ticket.CreatedAt).Hours()
		ticket.Metrics.ResolutionTimeHours = &resolutionHours
	}
	if err := s.tickets.UpdateLifecycle(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
