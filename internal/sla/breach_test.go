package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sla-engine/internal/domain"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func mediumTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:        "tkt-1",
		Status:    domain.TicketStatusOpen,
		Priority:  domain.TicketPriorityMedium,
		CreatedAt: t0,
		SLA: domain.SLASnapshot{
			ResponseTimeHours:   24,
			ResolutionTimeHours: 72,
		},
	}
}

func TestCheckBreachWithinWindow(t *testing.T) {
	result := CheckBreach(mediumTicket(), t0.Add(20*time.Hour))

	assert.False(t, result.Breached)
	assert.Empty(t, result.Type)
	assert.Equal(t, 28, result.Percentage)
}

func TestCheckBreachResolutionWinsOverResponse(t *testing.T) {
	// No first response and resolution window blown: must classify as a
	// resolution breach, never response.
	result := CheckBreach(mediumTicket(), t0.Add(80*time.Hour))

	assert.True(t, result.Breached)
	assert.Equal(t, BreachTypeResolution, result.Type)
	assert.Equal(t, 100, result.Percentage)
}

func TestCheckBreachResponseOnlyWhenNoFirstResponse(t *testing.T) {
	ticket := mediumTicket()
	result := CheckBreach(ticket, t0.Add(30*time.Hour))
	assert.True(t, result.Breached)
	assert.Equal(t, BreachTypeResponse, result.Type)

	responded := t0.Add(2 * time.Hour)
	ticket.FirstResponseAt = &responded
	result = CheckBreach(ticket, t0.Add(30*time.Hour))
	assert.False(t, result.Breached)
}

func TestCheckBreachTerminalStatusNeverBreaches(t *testing.T) {
	for _, status := range domain.TerminalStatuses {
		ticket := mediumTicket()
		ticket.Status = status
		result := CheckBreach(ticket, t0.Add(1000*time.Hour))
		assert.False(t, result.Breached, "status %s", status)
	}
}

func TestElapsedPercentageClampedAndMonotonic(t *testing.T) {
	ticket := mediumTicket()

	assert.Equal(t, 0, ElapsedPercentage(ticket, t0.Add(-time.Hour)))
	assert.Equal(t, 100, ElapsedPercentage(ticket, t0.Add(10000*time.Hour)))

	previous := 0
	for h := 0; h <= 100; h += 5 {
		pct := ElapsedPercentage(ticket, t0.Add(time.Duration(h)*time.Hour))
		assert.GreaterOrEqual(t, pct, previous)
		assert.LessOrEqual(t, pct, 100)
		previous = pct
	}
}

func TestElapsedPercentageZeroResolutionWindow(t *testing.T) {
	ticket := mediumTicket()
	ticket.SLA.ResolutionTimeHours = 0
	assert.Equal(t, 0, ElapsedPercentage(ticket, t0.Add(50*time.Hour)))
}

func TestComputeDeadlinesFromSnapshot(t *testing.T) {
	deadlines := ComputeDeadlines(mediumTicket())

	assert.Equal(t, t0.Add(24*time.Hour), deadlines.Response)
	assert.Equal(t, t0.Add(72*time.Hour), deadlines.Resolution)
}

func TestRulesForPriorityFallsBackToMediumDefaults(t *testing.T) {
	policy := &domain.SLAPolicy{
		PriorityRules: map[domain.TicketPriority]domain.PriorityRule{
			domain.TicketPriorityUrgent: {ResponseTimeHours: 1, ResolutionTimeHours: 4, Enabled: true},
			domain.TicketPriorityHigh:   {ResponseTimeHours: 4, ResolutionTimeHours: 8, Enabled: false},
		},
	}

	urgent := RulesForPriority(policy, domain.TicketPriorityUrgent)
	assert.Equal(t, 1.0, urgent.ResponseTimeHours)

	// Disabled rule falls back to medium defaults; medium is absent here so
	// the built-in 24h/72h applies.
	high := RulesForPriority(policy, domain.TicketPriorityHigh)
	assert.Equal(t, 24.0, high.ResponseTimeHours)
	assert.Equal(t, 72.0, high.ResolutionTimeHours)

	none := RulesForPriority(nil, domain.TicketPriorityLow)
	assert.Equal(t, 24.0, none.ResponseTimeHours)
}
