package service

import (
	"context"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
)

// SLAStatus is the on-demand view of a single ticket's SLA state. The
// percentage and breach classification are recomputed live on every call;
// the monitor remains the sole writer of the persisted breach fields.
type SLAStatus struct {
	TicketID           string
	PolicyName         string
	ResponseDeadline   time.Time
	ResolutionDeadline time.Time
	Percentage         int
	Breached           bool
	BreachType         *sla.BreachType
	BreachAt           *time.Time
	WarningsSent       []int
	EscalationHistory  []domain.EscalationRecord
	Metrics            domain.TicketMetrics
}

// SLAStatistics aggregates SLA outcomes over the queried ticket set.
type SLAStatistics struct {
	TotalTickets           int
	BreachedTickets        int
	WarnedTickets          int
	EscalatedTickets       int
	BreachRate             float64
	AvgResponseTimeHours   float64
	AvgResolutionTimeHours float64
}

// SLAService exposes the read-only SLA surface: per-ticket status, the
// breach list, and aggregate statistics.
type SLAService struct {
	tickets  repository.TicketRepository
	resolver *sla.PolicyResolver
	now      func() time.Time
}

// NewSLAService constructs the service.
func NewSLAService(tickets repository.TicketRepository, resolver *sla.PolicyResolver) *SLAService {
	return &SLAService{tickets: tickets, resolver: resolver, now: time.Now}
}

// GetStatus recomputes a ticket's SLA state from the snapshot and the clock.
func (s *SLAService) GetStatus(ctx context.Context, ticketID string) (*SLAStatus, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	status := s.statusOf(ctx, ticket)
	return &status, nil
}

// BreachList returns the currently breached open tickets.
func (s *SLAService) BreachList(ctx context.Context, limit int) ([]SLAStatus, error) {
	tickets, err := s.tickets.ListForMonitoring(ctx, limit)
	if err != nil {
		return nil, err
	}
	result := []SLAStatus{}
	for i := range tickets {
		status := s.statusOf(ctx, &tickets[i])
		if status.Breached {
			result = append(result, status)
		}
	}
	return result, nil
}

// Statistics re-runs the breach detector over a queried ticket set. The
// detector is the only primitive needed; this is a thin consumer.
func (s *SLAService) Statistics(ctx context.Context, filter repository.TicketFilter) (*SLAStatistics, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	stats := &SLAStatistics{TotalTickets: len(tickets)}
	now := s.now()
	var responseSum, resolutionSum float64
	var responseCount, resolutionCount int
	for i := range tickets {
		ticket := &tickets[i]
		if sla.CheckBreach(ticket, now).Breached || ticket.SLABreachAt != nil {
			stats.BreachedTickets++
		}
		if len(ticket.SLAWarningsSent) > 0 {
			stats.WarnedTickets++
		}
		if len(ticket.EscalationHistory) > 0 {
			stats.EscalatedTickets++
		}
		if ticket.Metrics.ResponseTimeHours != nil {
			responseSum += *ticket.Metrics.ResponseTimeHours
			responseCount++
		}
		if ticket.Metrics.ResolutionTimeHours != nil && ticket.Status.IsTerminal() {
			resolutionSum += *ticket.Metrics.ResolutionTimeHours
			resolutionCount++
		}
	}
	if stats.TotalTickets > 0 {
		stats.BreachRate = float64(stats.BreachedTickets) / float64(stats.TotalTickets)
	}
	if responseCount > 0 {
		stats.AvgResponseTimeHours = responseSum / float64(responseCount)
	}
	if resolutionCount > 0 {
		stats.AvgResolutionTimeHours = resolutionSum / float64(resolutionCount)
	}
	return stats, nil
}

func (s *SLAService) statusOf(ctx context.Context, ticket *domain.Ticket) SLAStatus {
	policy := s.resolver.Resolve(ctx, ticket)
	deadlines := sla.ComputeDeadlines(ticket)
	result := sla.CheckBreach(ticket, s.now())

	status := SLAStatus{
		TicketID:           ticket.ID,
		PolicyName:         policy.Name,
		ResponseDeadline:   deadlines.Response,
		ResolutionDeadline: deadlines.Resolution,
		Percentage:         result.Percentage,
		Breached:           result.Breached,
		BreachAt:           ticket.SLABreachAt,
		WarningsSent:       ticket.SLAWarningsSent,
		EscalationHistory:  ticket.EscalationHistory,
		Metrics:            ticket.Metrics,
	}
	if result.Breached {
		breachType := result.Type
		status.BreachType = &breachType
	}
	return status
}
