// Package sla contains the pure evaluation core of the SLA engine: deadline
// arithmetic, breach classification, escalation resolution, and the policy
// fallback chain. Nothing in this package touches storage or the clock; the
// caller supplies "now" and owns persistence of any resulting state.
package sla

import (
	"math"
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// Deadlines holds the absolute response/resolution deadlines for a ticket.
type Deadlines struct {
	Response   time.Time
	Resolution time.Time
}

// RulesForPriority returns the policy's rule for the priority when enabled,
// falling back to the medium defaults (24h/72h) otherwise. Callers rely on
// this never returning a zero-duration rule.
func RulesForPriority(policy *domain.SLAPolicy, priority domain.TicketPriority) domain.PriorityRule {
	fallback := domain.PriorityRule{
		ResponseTimeHours:   domain.FallbackResponseHours,
		ResolutionTimeHours: domain.FallbackResolutionHours,
		Enabled:             true,
	}
	if policy == nil {
		return fallback
	}
	if rule, ok := policy.PriorityRules[priority]; ok && rule.Enabled {
		return rule
	}
	if rule, ok := policy.PriorityRules[domain.TicketPriorityMedium]; ok && rule.Enabled {
		return rule
	}
	return fallback
}

// ComputeDeadlines derives absolute deadlines from the ticket's snapshotted
// commitment. The snapshot is authoritative; the policy is never re-read.
func ComputeDeadlines(ticket *domain.Ticket) Deadlines {
	return Deadlines{
		Response:   ticket.CreatedAt.Add(hours(ticket.SLA.ResponseTimeHours)),
		Resolution: ticket.CreatedAt.Add(hours(ticket.SLA.ResolutionTimeHours)),
	}
}

// ElapsedPercentage returns how much of the resolution window has been
// consumed, clamped to [0,100].
func ElapsedPercentage(ticket *domain.Ticket, now time.Time) int {
	if ticket.SLA.ResolutionTimeHours <= 0 {
		return 0
	}
	elapsed := now.Sub(ticket.CreatedAt).Hours()
	pct := int(math.Round(elapsed / ticket.SLA.ResolutionTimeHours * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
