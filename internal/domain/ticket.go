package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser TicketStatus = "PENDING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// TerminalStatuses are states after which SLA monitoring stops permanently.
var TerminalStatuses = []TicketStatus{
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusCancelled,
}

// IsTerminal reports whether the status ends SLA evaluation.
func (s TicketStatus) IsTerminal() bool {
	for _, terminal := range TerminalStatuses {
		if s == terminal {
			return true
		}
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// SLASnapshot captures the response/resolution commitment assigned to a
// ticket when its policy was resolved. It is never re-derived, so later
// policy edits do not rewrite history.
type SLASnapshot struct {
	PolicyID            *string `json:"policy_id,omitempty"`
	ResponseTimeHours   float64 `json:"response_time_hours"`
	ResolutionTimeHours float64 `json:"resolution_time_hours"`
}

// TicketMetrics holds measured SLA outcomes for a ticket.
type TicketMetrics struct {
	ResponseTimeHours   *float64 `json:"response_time_hours,omitempty"`
	ResolutionTimeHours *float64 `json:"resolution_time_hours,omitempty"`
	EscalationCount     int      `json:"escalation_count"`
}

// EscalationRecord is one append-only entry in a ticket's escalation log.
type EscalationRecord struct {
	Level     int              `json:"level"`
	Action    EscalationAction `json:"action"`
	Timestamp time.Time        `json:"timestamp"`
}

// Ticket is the aggregate for support requests, reduced to the fields the
// SLA engine reads and writes.
type Ticket struct {
	ID              string
	ExternalKey     string
	Category        string
	Title           string
	Status          TicketStatus
	Priority        TicketPriority
	AssignedTo      *string
	SLAPolicyID     *string
	SLA             SLASnapshot
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DueDate         time.Time
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time

	SLABreachAt       *time.Time
	SLAWarningsSent   []int
	EscalationHistory []EscalationRecord
	Metrics           TicketMetrics
	IsDeleted         bool
}

// WarningAlreadySent reports whether the percentage threshold has fired.
func (t *Ticket) WarningAlreadySent(percentage int) bool {
	for _, sent := range t.SLAWarningsSent {
		if sent == percentage {
			return true
		}
	}
	return false
}

// EscalatedToLevel reports whether the escalation level already fired.
func (t *Ticket) EscalatedToLevel(level int) bool {
	for _, record := range t.EscalationHistory {
		if record.Level == level {
			return true
		}
	}
	return false
}
