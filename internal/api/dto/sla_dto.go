package dto

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Category    string                `json:"category"`
	Title       string                `json:"title"`
	Priority    domain.TicketPriority `json:"priority"`
	SLAPolicyID *string               `json:"sla_policy_id"`
}

// TicketResponse exposes the SLA-relevant ticket fields.
type TicketResponse struct {
	ID              string                    `json:"id"`
	ExternalKey     string                    `json:"external_key"`
	Category        string                    `json:"category"`
	Title           string                    `json:"title"`
	Status          domain.TicketStatus       `json:"status"`
	Priority        domain.TicketPriority     `json:"priority"`
	AssignedTo      *string                   `json:"assigned_to,omitempty"`
	SLA             domain.SLASnapshot        `json:"sla"`
	CreatedAt       time.Time                 `json:"created_at"`
	DueDate         time.Time                 `json:"due_date"`
	FirstResponseAt *time.Time                `json:"first_response_at,omitempty"`
	ResolvedAt      *time.Time                `json:"resolved_at,omitempty"`
	ClosedAt        *time.Time                `json:"closed_at,omitempty"`
	SLABreachAt     *time.Time                `json:"sla_breach_at,omitempty"`
	WarningsSent    []int                     `json:"sla_warnings_sent"`
	Escalations     []domain.EscalationRecord `json:"escalation_history"`
	Metrics         domain.TicketMetrics      `json:"metrics"`
}

// SLAStatusResponse is the live-recomputed SLA view of one ticket.
type SLAStatusResponse struct {
	TicketID           string                    `json:"ticket_id"`
	PolicyName         string                    `json:"policy_name"`
	ResponseDeadline   time.Time                 `json:"response_deadline"`
	ResolutionDeadline time.Time                 `json:"resolution_deadline"`
	Percentage         int                       `json:"percentage"`
	Breached           bool                      `json:"is_breached"`
	BreachType         *string                   `json:"breach_type,omitempty"`
	BreachAt           *time.Time                `json:"breach_at,omitempty"`
	WarningsSent       []int                     `json:"warnings_sent"`
	EscalationHistory  []domain.EscalationRecord `json:"escalation_history"`
	Metrics            domain.TicketMetrics      `json:"metrics"`
}

// SLAStatisticsResponse aggregates SLA outcomes.
type SLAStatisticsResponse struct {
	TotalTickets           int     `json:"total_tickets"`
	BreachedTickets        int     `json:"breached_tickets"`
	WarnedTickets          int     `json:"warned_tickets"`
	EscalatedTickets       int     `json:"escalated_tickets"`
	BreachRate             float64 `json:"breach_rate"`
	AvgResponseTimeHours   float64 `json:"avg_response_time_hours"`
	AvgResolutionTimeHours float64 `json:"avg_resolution_time_hours"`
}

// PolicyRequest is the admin create/update payload.
type PolicyRequest struct {
	Name             string                                        `json:"name"`
	Description      string                                        `json:"description"`
	Category         *string                                       `json:"category"`
	PriorityRules    map[domain.TicketPriority]domain.PriorityRule `json:"priority_rules"`
	EscalationLevels []domain.EscalationLevel                      `json:"escalation_levels"`
	Warnings         domain.WarningConfig                          `json:"warnings"`
	AutoEscalation   domain.AutoEscalationConfig                   `json:"auto_escalation"`
	IsActive         bool                                          `json:"is_active"`
	IsDefault        bool                                          `json:"is_default"`
}

// PolicyResponse is the admin policy view.
type PolicyResponse struct {
	ID               string                                        `json:"id"`
	Name             string                                        `json:"name"`
	Description      string                                        `json:"description"`
	Category         *string                                       `json:"category,omitempty"`
	PriorityRules    map[domain.TicketPriority]domain.PriorityRule `json:"priority_rules"`
	EscalationLevels []domain.EscalationLevel                      `json:"escalation_levels"`
	Warnings         domain.WarningConfig                          `json:"warnings"`
	AutoEscalation   domain.AutoEscalationConfig                   `json:"auto_escalation"`
	IsActive         bool                                          `json:"is_active"`
	IsDefault        bool                                          `json:"is_default"`
	CreatedAt        time.Time                                     `json:"created_at"`
	UpdatedAt        time.Time                                     `json:"updated_at"`
}
