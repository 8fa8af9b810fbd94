package events

import (
	"time"

	"github.com/spec-kit/sla-engine/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSLAWarning    EventType = "sla_warning"
	EventSLABreach     EventType = "sla_breach"
	EventSLAEscalation EventType = "sla_escalation"
	EventTicketCreated EventType = "ticket_created"
)

// Event represents a domain event emitted by the engine. Delivery is
// fire-and-forget; the engine never awaits confirmation.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SLAWarningPayload carries one fired warning threshold.
type SLAWarningPayload struct {
	Percentage     int      `json:"percentage"`
	NotifyUsers    []string `json:"notify_users,omitempty"`
	NotifyChannels []string `json:"notify_channels,omitempty"`
	PolicyName     string   `json:"policy_name"`
}

// SLABreachPayload marks the first detected breach of a ticket.
type SLABreachPayload struct {
	BreachType string    `json:"breach_type"`
	Percentage int       `json:"percentage"`
	BreachedAt time.Time `json:"breached_at"`
	PolicyName string    `json:"policy_name"`
}

// SLAEscalationPayload carries one executed escalation level.
type SLAEscalationPayload struct {
	Level       int                     `json:"level"`
	LevelName   string                  `json:"level_name"`
	Action      domain.EscalationAction `json:"action"`
	NotifyUsers []string                `json:"notify_users,omitempty"`
	AssignedTo  *string                 `json:"assigned_to,omitempty"`
	PolicyName  string                  `json:"policy_name"`
}

// TicketCreatedPayload reports the SLA snapshot taken at creation time.
type TicketCreatedPayload struct {
	Priority            domain.TicketPriority `json:"priority"`
	ResponseTimeHours   float64               `json:"response_time_hours"`
	ResolutionTimeHours float64               `json:"resolution_time_hours"`
	DueDate             time.Time             `json:"due_date"`
}
