package domain

import "time"

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type TradeStatus string

const (
	TradeStatusSettled TradeStatus = "SETTLED"
	TradeStatusMatched TradeStatus = "MATCHED"
)

// ExpectedTrade is one side of a reconciliation run: what the front office
// believes was traded. Inputs are immutable for the lifetime of a run.
type ExpectedTrade struct {
	ID             string      `json:"_id"`
	Account        string      `json:"account"`
	Instrument     string      `json:"instrument"`
	ISIN           string      `json:"isin,omitempty"`
	Side           Side        `json:"side"`
	Quantity       *Amount     `json:"quantity"`
	Price          *Amount     `json:"price,omitempty"`
	Currency       string      `json:"currency,omitempty"`
	TradeDate      string      `json:"tradeDate,omitempty"`
	SettlementDate string      `json:"settlementDate"`
	CashAmount     *Amount     `json:"cashAmount,omitempty"`
	Fees           *Amount     `json:"fees,omitempty"`
	Status         TradeStatus `json:"status,omitempty"`
	SourceFile     string      `json:"sourceFile,omitempty"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`
}
