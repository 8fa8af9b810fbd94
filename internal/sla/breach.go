package sla

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// BreachType classifies which commitment was missed.
type BreachType string

const (
	BreachTypeResponse   BreachType = "RESPONSE"
	BreachTypeResolution BreachType = "RESOLUTION"
)

// BreachResult is the outcome of a breach check.
type BreachResult struct {
	Breached   bool
	Type       BreachType
	Percentage int
}

// CheckBreach classifies the ticket's SLA state at the given instant.
// Terminal-status tickets are never breached. A blown resolution window wins
// over a missed first response: total failure subsumes the softer breach.
func CheckBreach(ticket *domain.Ticket, now time.Time) BreachResult {
	result := BreachResult{Percentage: ElapsedPercentage(ticket, now)}
	if ticket.Status.IsTerminal() {
		return result
	}

	elapsed := now.Sub(ticket.CreatedAt).Hours()
	if ticket.SLA.ResolutionTimeHours > 0 && elapsed > ticket.SLA.ResolutionTimeHours {
		result.Breached = true
		result.Type = BreachTypeResolution
		return result
	}
	if ticket.FirstResponseAt == nil && ticket.SLA.ResponseTimeHours > 0 && elapsed > ticket.SLA.ResponseTimeHours {
		result.Breached = true
		result.Type = BreachTypeResponse
	}
	return result
}
