package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/sla-engine/internal/domain"
	"github.com/spec-kit/sla-engine/internal/sla"
)

type fixedPolicyFinder struct {
	policy *domain.SLAPolicy
}

func (f fixedPolicyFinder) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	return f.policy, nil
}

func (f fixedPolicyFinder) FindActiveByCategory(ctx context.Context, category string) (*domain.SLAPolicy, error) {
	return nil, nil
}

func (f fixedPolicyFinder) FindDefault(ctx context.Context) (*domain.SLAPolicy, error) {
	return f.policy, nil
}

func (f fixedPolicyFinder) FindAnyActive(ctx context.Context) (*domain.SLAPolicy, error) {
	return nil, nil
}

func TestCreateTicketSnapshotsResolvedPolicy(t *testing.T) {
	policy := &domain.SLAPolicy{
		ID:   "pol-9",
		Name: "gold",
		PriorityRules: map[domain.TicketPriority]domain.PriorityRule{
			domain.TicketPriorityUrgent: {ResponseTimeHours: 1, ResolutionTimeHours: 8, Enabled: true},
		},
		IsActive: true,
	}
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, sla.NewPolicyResolver(fixedPolicyFinder{policy: policy}, nil), nil)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:    "database down",
		Priority: domain.TicketPriorityUrgent,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, ticket.SLA.ResponseTimeHours)
	assert.Equal(t, 8.0, ticket.SLA.ResolutionTimeHours)
	require.NotNil(t, ticket.SLA.PolicyID)
	assert.Equal(t, "pol-9", *ticket.SLA.PolicyID)
	assert.Equal(t, ticket.CreatedAt.Add(8*time.Hour), ticket.DueDate)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.NotEmpty(t, ticket.ExternalKey)
}

func TestCreateTicketDefaultsPriorityAndFallback(t *testing.T) {
	repo := newStubTicketRepo()
	svc := NewTicketService(repo, sla.NewPolicyResolver(nilPolicyFinder{}, nil), nil)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "printer jam"})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, 24.0, ticket.SLA.ResponseTimeHours)
	assert.Equal(t, 72.0, ticket.SLA.ResolutionTimeHours)
	assert.Nil(t, ticket.SLA.PolicyID)
}

func TestCreateTicketRequiresTitle(t *testing.T) {
	svc := NewTicketService(newStubTicketRepo(), sla.NewPolicyResolver(nilPolicyFinder{}, nil), nil)
	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "   "})
	assert.Error(t, err)
}

func TestMarkFirstResponseIsSetOnce(t *testing.T) {
	ticket := slaTicket("tkt-1", 5*time.Hour)
	repo := newStubTicketRepo(ticket)
	svc := NewTicketService(repo, sla.NewPolicyResolver(nilPolicyFinder{}, nil), nil)

	updated, err := svc.MarkFirstResponse(context.Background(), "tkt-1")
	require.NoError(t, err)
	require.NotNil(t, updated.FirstResponseAt)
	require.NotNil(t, updated.Metrics.ResponseTimeHours)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)

	firstResponseAt := *updated.FirstResponseAt
	again, err := svc.MarkFirstResponse(context.Background(), "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, firstResponseAt, *again.FirstResponseAt)
}

func TestResolveAndCloseAreTerminalAndIdempotent(t *testing.T) {
	repo := newStubTicketRepo(slaTicket("tkt-1", 5*time.Hour))
	svc := NewTicketService(repo, sla.NewPolicyResolver(nilPolicyFinder{}, nil), nil)

	resolved, err := svc.ResolveTicket(context.Background(), "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.Metrics.ResolutionTimeHours)

	// Already terminal: closing must not overwrite the resolved state.
	closed, err := svc.CloseTicket(context.Background(), "tkt-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, closed.Status)
	assert.Nil(t, closed.ClosedAt)
}
