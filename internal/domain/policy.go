package domain

import "time"

// EscalationAction enumerates automated reactions to an escalation level.
type EscalationAction string

const (
	EscalationActionNotify   EscalationAction = "NOTIFY"
	EscalationActionEscalate EscalationAction = "ESCALATE"
	EscalationActionAssign   EscalationAction = "ASSIGN"
	EscalationActionAlert    EscalationAction = "ALERT"
)

// ValidEscalationAction reports whether the action is a known value.
func ValidEscalationAction(action EscalationAction) bool {
	switch action {
	case EscalationActionNotify, EscalationActionEscalate, EscalationActionAssign, EscalationActionAlert:
		return true
	}
	return false
}

// PriorityRule holds the response/resolution commitment for one priority.
type PriorityRule struct {
	ResponseTimeHours   float64 `json:"response_time_hours"`
	ResolutionTimeHours float64 `json:"resolution_time_hours"`
	Enabled             bool    `json:"enabled"`
}

// EscalationLevel is one percentage-triggered rung of a policy.
type EscalationLevel struct {
	Level               int              `json:"level"`
	Name                string           `json:"name"`
	PercentageThreshold int              `json:"percentage_threshold"`
	Action              EscalationAction `json:"action"`
	NotifyUsers         []string         `json:"notify_users"`
	AssignTo            *string          `json:"assign_to,omitempty"`
}

// WarningLevel configures a soft notification before a hard breach.
type WarningLevel struct {
	Percentage     int      `json:"percentage"`
	NotifyUsers    []string `json:"notify_users"`
	NotifyChannels []string `json:"notify_channels"`
}

// WarningConfig groups the warning thresholds of a policy.
type WarningConfig struct {
	Enabled bool           `json:"enabled"`
	Levels  []WarningLevel `json:"levels"`
}

// AutoEscalationConfig controls breach-driven automatic escalation.
type AutoEscalationConfig struct {
	Enabled            bool `json:"enabled"`
	OnResponseBreach   bool `json:"on_response_breach"`
	OnResolutionBreach bool `json:"on_resolution_breach"`
	EscalationLevel    int  `json:"escalation_level"`
}

// SLAPolicy defines per-priority deadlines plus warning and escalation rules.
type SLAPolicy struct {
	ID               string
	Name             string
	Description      string
	Category         *string
	PriorityRules    map[TicketPriority]PriorityRule
	EscalationLevels []EscalationLevel
	Warnings         WarningConfig
	AutoEscalation   AutoEscalationConfig
	IsActive         bool
	IsDefault        bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Built-in fallback applied when no policy resolves for a ticket.
const (
	FallbackResponseHours   = 24
	FallbackResolutionHours = 72
)

// FallbackPolicy returns the built-in last-resort policy. Resolution through
// the policy chain must never fail, so this is always available.
func FallbackPolicy() *SLAPolicy {
	rule := PriorityRule{
		ResponseTimeHours:   FallbackResponseHours,
		ResolutionTimeHours: FallbackResolutionHours,
		Enabled:             true,
	}
	return &SLAPolicy{
		Name:        "builtin-fallback",
		Description: "built-in fallback applied when no policy matches",
		PriorityRules: map[TicketPriority]PriorityRule{
			TicketPriorityLow:    rule,
			TicketPriorityMedium: rule,
			TicketPriorityHigh:   rule,
			TicketPriorityUrgent: rule,
		},
		IsActive: true,
	}
}
