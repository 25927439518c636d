package domain

import "time"

type BreakKind string

const (
	BreakCash  BreakKind = "CASH"
	BreakStock BreakKind = "STOCK"
)

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

type BreakStatus string

const (
	BreakOpen     BreakStatus = "OPEN"
	BreakAssigned BreakStatus = "ASSIGNED"
	BreakResolved BreakStatus = "RESOLVED"
)

// Break is a detected discrepancy between an expected trade and its actual
// settlement. The matching engine emits at most one per trade; it is never
// mutated after creation, only its workflow fields (status, assignee) change
// as operations staff work the break.
//
// Values are decimal strings, never floats. ActualValue and
// ActualSettlementID are nil/absent for a missing settlement.
type Break struct {
	ID                 string      `json:"id,omitempty"`
	Kind               BreakKind   `json:"breakType"`
	ExpectedTradeID    string      `json:"expectedTradeId"`
	ActualSettlementID string      `json:"actualSettlementId,omitempty"`
	ExpectedValue      string      `json:"expectedValue"`
	ActualValue        *string     `json:"actualValue"`
	Difference         string      `json:"difference"`
	Severity           Severity    `json:"severity"`
	Reason             string      `json:"reason"`
	Fingerprint        string      `json:"fingerprint"`
	Status             BreakStatus `json:"status,omitempty"`
	AssignedTo         string      `json:"assignedTo,omitempty"`
	CreatedAt          *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time  `json:"updatedAt,omitempty"`
}

type HistoryAction string

const (
	HistoryAutoCreated HistoryAction = "AUTO_CREATED"
	HistoryAssigned    HistoryAction = "ASSIGNED"
	HistoryResolved    HistoryAction = "RESOLVED"
	HistoryComment     HistoryAction = "COMMENT"
)

// BreakHistory is an audit entry recorded each time a break is created or
// worked.
type BreakHistory struct {
	ID        string        `json:"id"`
	BreakID   string        `json:"breakId"`
	Action    HistoryAction `json:"action"`
	User      string        `json:"user"`
	Comment   string        `json:"comment,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
