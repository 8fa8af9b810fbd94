package sla

import (
	"sort"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// ResolveEscalationLevel picks the highest percentage threshold already
// reached, or nil when none is. Levels sharing an identical threshold are
// resolved by ascending level number, so the lowest-numbered level wins the
// tie deterministically.
func ResolveEscalationLevel(policy *domain.SLAPolicy, percentage int) *domain.EscalationLevel {
	if policy == nil || len(policy.EscalationLevels) == 0 {
		return nil
	}

	levels := make([]domain.EscalationLevel, len(policy.EscalationLevels))
	copy(levels, policy.EscalationLevels)
	sort.Slice(levels, func(i, j int) bool {
		if levels[i].PercentageThreshold != levels[j].PercentageThreshold {
			return levels[i].PercentageThreshold > levels[j].PercentageThreshold
		}
		return levels[i].Level < levels[j].Level
	})

	for i := range levels {
		if levels[i].PercentageThreshold <= percentage {
			return &levels[i]
		}
	}
	return nil
}

// DueWarnings returns the warning levels whose threshold the ticket has
// crossed but not yet fired, ordered ascending by percentage. Several
// thresholds crossed since the last evaluation all fire in the same cycle.
func DueWarnings(policy *domain.SLAPolicy, ticket *domain.Ticket, percentage int) []domain.WarningLevel {
	if policy == nil || !policy.Warnings.Enabled || len(policy.Warnings.Levels) == 0 {
		return nil
	}

	levels := make([]domain.WarningLevel, len(policy.Warnings.Levels))
	copy(levels, policy.Warnings.Levels)
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].Percentage < levels[j].Percentage
	})

	var due []domain.WarningLevel
	for _, level := range levels {
		if level.Percentage <= percentage && !ticket.WarningAlreadySent(level.Percentage) {
			due = append(due, level)
		}
	}
	return due
}
