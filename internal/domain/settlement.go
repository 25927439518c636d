package domain

import "time"

// ActualSettlement is the custodian's record of what actually settled. Side
// is optional on this side only; an absent side participates in the
// settlement key as the empty string.
type ActualSettlement struct {
	ID             string     `json:"_id"`
	Account        string     `json:"account"`
	Instrument     string     `json:"instrument"`
	Quantity       *Amount    `json:"quantity"`
	CashAmount     *Amount    `json:"cashAmount,omitempty"`
	SettlementDate string     `json:"settlementDate"`
	Currency       string     `json:"currency,omitempty"`
	Side           Side       `json:"side,omitempty"`
	SourceFile     string     `json:"sourceFile,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}
