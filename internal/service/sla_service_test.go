package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/repository"
	"github.com/spec-kit/sla-engine/internal/sla"
)

var statusNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type stubTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newStubTicketRepo(tickets ...*domain.Ticket) *stubTicketRepo {
	repo := &stubTicketRepo{tickets: map[string]*domain.Ticket{}}
	for _, ticket := range tickets {
		repo.tickets[ticket.ID] = ticket
	}
	return repo
}

func (s *stubTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	ticket.ID = "tkt-created"
	s.tickets[ticket.ID] = ticket
	return nil
}

func (s *stubTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return ticket, nil
}

func (s *stubTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range s.tickets {
		result = append(result, *ticket)
	}
	return result, nil
}

func (s *stubTicketRepo) ListForMonitoring(ctx context.Context, limit int) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range s.tickets {
		if !ticket.Status.IsTerminal() && !ticket.IsDeleted {
			result = append(result, *ticket)
		}
	}
	return result, nil
}

func (s *stubTicketRepo) UpdateSLAState(ctx context.Context, ticket *domain.Ticket) error {
	s.tickets[ticket.ID] = ticket
	return nil
}

func (s *stubTicketRepo) UpdateLifecycle(ctx context.Context, ticket *domain.Ticket) error {
	s.tickets[ticket.ID] = ticket
	return nil
}

type nilPolicyFinder struct{}

func (nilPolicyFinder) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	return nil, nil
}

func (nilPolicyFinder) FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error) {
	return nil, nil
}

func (nilPolicyFinder) FindDefault(ctx context.Context) (*domain.SLAPolicy, error) { return nil, nil }

func (nilPolicyFinder) FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error) {
	return nil, nil
}

func slaTicket(id string, age time.Duration) *domain.Ticket {
	return &domain.Ticket{
		ID:        id,
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: statusNow.Add(-age),
		SLA:       domain.SLASnapshot{ResponseTimeHours: 24, ResolutionTimeHours: 72},
	}
}

func newTestSLAService(repo *stubTicketRepo) *SLAService {
	svc := NewSLAService(repo, sla.NewPolicyResolver(nilPolicyFinder{}, nil))
	svc.now = func() time.Time { return statusNow }
	return svc
}

func TestGetStatusRecomputesLive(t *testing.T) {
	ticket := slaTicket("tkt-1", 20*time.Hour)
	ticket.SLAWarningsSent = []int{20}
	svc := newTestSLAService(newStubTicketRepo(ticket))

	status, err := svc.GetStatus(context.Background(), "tkt-1")
	require.NoError(t, err)

	assert.Equal(t, 28, status.Percentage)
	assert.False(t, status.Breached)
	assert.Nil(t, status.BreachType)
	assert.Equal(t, ticket.CreatedAt.Add(24*time.Hour), status.ResponseDeadline)
	assert.Equal(t, ticket.CreatedAt.Add(72*time.Hour), status.ResolutionDeadline)
	assert.Equal(t, []int{20}, status.WarningsSent)
	assert.Equal(t, "builtin-fallback", status.PolicyName)
}

func TestGetStatusReportsResolutionBreach(t *testing.T) {
	svc := newTestSLAService(newStubTicketRepo(slaTicket("tkt-1", 80*time.Hour)))

	status, err := svc.GetStatus(context.Background(), "tkt-1")
	require.NoError(t, err)

	assert.True(t, status.Breached)
	require.NotNil(t, status.BreachType)
	assert.Equal(t, sla.BreachTypeResolution, *status.BreachType)
	assert.Equal(t, 100, status.Percentage)
}

func TestGetStatusNotFound(t *testing.T) {
	svc := newTestSLAService(newStubTicketRepo())
	_, err := svc.GetStatus(context.Background(), "missing")
	assert.Error(t, err)
}

func TestBreachListFiltersBreachedOnly(t *testing.T) {
	svc := newTestSLAService(newStubTicketRepo(
		slaTicket("tkt-ok", 10*time.Hour),
		slaTicket("tkt-late", 90*time.Hour),
	))

	breaches, err := svc.BreachList(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, breaches, 1)
	assert.Equal(t, "tkt-late", breaches[0].TicketID)
}

func TestStatisticsAggregates(t *testing.T) {
	responseHours := 2.0
	resolutionHours := 10.0

	closed := slaTicket("tkt-closed", 100*time.Hour)
	closed.Status = domain.TicketStatusClosed
	closed.Metrics.ResponseTimeHours = &responseHours
	closed.Metrics.ResolutionTimeHours = &resolutionHours

	warned := slaTicket("tkt-warned", 40*time.Hour)
	warned.SLAWarningsSent = []int{20, 50}

	escalated := slaTicket("tkt-escalated", 90*time.Hour)
	escalated.EscalationHistory = []domain.EscalationRecord{
		{Level: 1, Action: domain.EscalationActionNotify, Timestamp: statusNow},
	}

	svc := newTestSLAService(newStubTicketRepo(closed, warned, escalated))

	stats, err := svc.Statistics(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalTickets)
	assert.Equal(t, 1, stats.BreachedTickets)
	assert.Equal(t, 1, stats.WarnedTickets)
	assert.Equal(t, 1, stats.EscalatedTickets)
	assert.InDelta(t, 1.0/3.0, stats.BreachRate, 0.01)
	assert.InDelta(t, 2.0, stats.AvgResponseTimeHours, 0.01)
	assert.InDelta(t, 10.0, stats.AvgResolutionTimeHours, 0.01)
}
