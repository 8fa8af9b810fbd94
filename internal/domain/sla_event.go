package domain

import "time"

// SLAEventKind distinguishes ledger entries.
type SLAEventKind string

const (
	SLAEventKindWarning    SLAEventKind = "WARNING"
	SLAEventKindEscalation SLAEventKind = "ESCALATION"
	SLAEventKindBreach     SLAEventKind = "BREACH"
)

// SLAEvent is one row of the append-only dedup ledger. Uniqueness over
// (TicketID, Kind, Identifier) guarantees at-most-once firing per threshold:
// warnings use the percentage as identifier, escalations the level number,
// breaches the breach type.
type SLAEvent struct {
	ID         string
	TicketID   string
	Kind       SLAEventKind
	Identifier string
	CreatedAt  time.Time
}
