// Package matching implements the trade-break engine: it reconciles expected
// trades against actual settlement records and emits typed breaks. The engine
// is a pure function of its two input collections; persistence, transport and
// workflow live in the packages around it.
package matching

import (
	"github.com/shopspring/decimal"

	"github.com/clearstone/tradebreak/internal/domain"
)

// DefaultCashTolerance is the maximum absolute cash difference accepted on an
// exact-quantity match before a CASH break is raised.
var DefaultCashTolerance = domain.NewAmount(decimal.New(1, -2)) // 0.01

const (
	reasonCashMismatch     = "Cash mismatch"
	reasonQuantityMismatch = "Quantity mismatch"
	reasonMissing          = "Missing settlement"
)

// Run reconciles trades against actuals and returns the detected breaks, in
// trade order, at most one per trade. Any invalid record aborts the whole run
// with no partial results.
func Run(trades []domain.ExpectedTrade, actuals []domain.ActualSettlement, tolerance domain.Amount) ([]domain.Break, error) {
	for i := range actuals {
		if err := validateSettlement(&actuals[i]); err != nil {
			return nil, err
		}
	}
	idx := BuildIndex(actuals)

	breaks := make([]domain.Break, 0, len(trades))
	for i := range trades {
		t := &trades[i]
		if err := validateTrade(t); err != nil {
			return nil, err
		}
		if br := classify(t, resolve(t, idx), tolerance); br != nil {
			breaks = append(breaks, *br)
		}
	}
	return breaks, nil
}

type matchKind int

const (
	matchExactQuantity matchKind = iota
	matchQuantityMismatch
	matchMissing
)

type resolution struct {
	kind      matchKind
	candidate *domain.ActualSettlement
}

// resolve picks the candidate for one trade: the first candidate whose
// quantity decimal-equals the trade's (10 equals 10.00), else the first
// candidate in arrival order regardless of how far off its quantity is, else
// no candidate at all. Ties on exact quantity also go to the first arrival;
// that ambiguity is deliberate and kept as-is.
func resolve(t *domain.ExpectedTrade, idx CandidateIndex) resolution {
	candidates := idx[KeyForTrade(t)]
	for _, c := range candidates {
		if c.Quantity.Equal(*t.Quantity) {
			return resolution{kind: matchExactQuantity, candidate: c}
		}
	}
	if len(candidates) > 0 {
		return resolution{kind: matchQuantityMismatch, candidate: candidates[0]}
	}
	return resolution{kind: matchMissing}
}

// classify turns a resolution into a break, or nil when the trade is fully
// reconciled.
func classify(t *domain.ExpectedTrade, res resolution, tolerance domain.Amount) *domain.Break {
	expQty := *t.Quantity

	switch res.kind {
	case matchExactQuantity:
		expCash := amountOrZero(t.CashAmount)
		actCash := amountOrZero(res.candidate.CashAmount)
		diff := expCash.Sub(actCash)
		// A difference exactly equal to the tolerance is acceptable.
		if !diff.Abs().GreaterThan(tolerance) {
			return nil
		}
		actual := actCash.String()
		return &domain.Break{
			Kind:               domain.BreakCash,
			ExpectedTradeID:    t.ID,
			ActualSettlementID: res.candidate.ID,
			ExpectedValue:      expCash.String(),
			ActualValue:        &actual,
			Difference:         diff.String(),
			// Severity is a fixed function of break kind for now; richer
			// magnitude-based grading can slot in here later.
			Severity:    domain.SeverityLow,
			Reason:      reasonCashMismatch,
			Fingerprint: Fingerprint(t.ID, domain.BreakCash, expCash.String(), actual, reasonCashMismatch),
		}

	case matchQuantityMismatch:
		actQty := *res.candidate.Quantity
		actual := actQty.String()
		return &domain.Break{
			Kind:               domain.BreakStock,
			ExpectedTradeID:    t.ID,
			ActualSettlementID: res.candidate.ID,
			ExpectedValue:      expQty.String(),
			ActualValue:        &actual,
			Difference:         expQty.Sub(actQty).String(),
			Severity:           domain.SeverityHigh,
			Reason:             reasonQuantityMismatch,
			Fingerprint:        Fingerprint(t.ID, domain.BreakStock, expQty.String(), actual, reasonQuantityMismatch),
		}

	default: // missing settlement
		return &domain.Break{
			Kind:            domain.BreakStock,
			ExpectedTradeID: t.ID,
			ExpectedValue:   expQty.String(),
			ActualValue:     nil,
			Difference:      expQty.String(),
			Severity:        domain.SeverityHigh,
			Reason:          reasonMissing,
			Fingerprint:     Fingerprint(t.ID, domain.BreakStock, expQty.String(), AbsentValue, reasonMissing),
		}
	}
}

func amountOrZero(a *domain.Amount) domain.Amount {
	if a == nil {
		return domain.Amount{}
	}
	return *a
}

func validateTrade(t *domain.ExpectedTrade) error {
	switch {
	case t.ID == "":
		return &FieldMissingError{Record: "trade", Field: "_id"}
	case t.Account == "":
		return &FieldMissingError{Record: "trade", ID: t.ID, Field: "account"}
	case t.Instrument == "":
		return &FieldMissingError{Record: "trade", ID: t.ID, Field: "instrument"}
	case t.Side == "":
		return &FieldMissingError{Record: "trade", ID: t.ID, Field: "side"}
	case t.SettlementDate == "":
		return &FieldMissingError{Record: "trade", ID: t.ID, Field: "settlementDate"}
	case t.Quantity == nil:
		return &FieldMissingError{Record: "trade", ID: t.ID, Field: "quantity"}
	}
	return nil
}

func validateSettlement(a *domain.ActualSettlement) error {
	switch {
	case a.ID == "":
		return &FieldMissingError{Record: "actual", Field: "_id"}
	case a.Account == "":
		return &FieldMissingError{Record: "actual", ID: a.ID, Field: "account"}
	case a.Instrument == "":
		return &FieldMissingError{Record: "actual", ID: a.ID, Field: "instrument"}
	case a.SettlementDate == "":
		return &FieldMissingError{Record: "actual", ID: a.ID, Field: "settlementDate"}
	case a.Quantity == nil:
		return &FieldMissingError{Record: "actual", ID: a.ID, Field: "quantity"}
	}
	return nil
}
