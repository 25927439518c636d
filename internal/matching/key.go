package matching

import "github.com/clearstone/tradebreak/internal/domain"

// SettlementKey is the composite business key used to locate candidate
// settlements for a trade. Being a comparable struct rather than a delimited
// string, field values containing separator characters cannot collide.
type SettlementKey struct {
	Account        string
	Instrument     string
	SettlementDate string
	Side           domain.Side
}

// KeyForTrade derives the settlement key for an expected trade, where side is
// always present.
func KeyForTrade(t *domain.ExpectedTrade) SettlementKey {
	return SettlementKey{
		Account:        t.Account,
		Instrument:     t.Instrument,
		SettlementDate: t.SettlementDate,
		Side:           t.Side,
	}
}

// KeyForSettlement derives the settlement key for an actual settlement. Side
// is optional on the actual side; an absent side keys as the empty string.
func KeyForSettlement(a *domain.ActualSettlement) SettlementKey {
	return SettlementKey{
		Account:        a.Account,
		Instrument:     a.Instrument,
		SettlementDate: a.SettlementDate,
		Side:           a.Side,
	}
}

// CandidateIndex maps a settlement key to the actual settlements sharing it,
// in arrival order. Built once per run and read-only afterwards; the order
// matters because the resolver falls back to the first candidate.
type CandidateIndex map[SettlementKey][]*domain.ActualSettlement

// BuildIndex indexes the actual settlements by their composite key. No entry
// exists for a key with zero settlements.
func BuildIndex(actuals []domain.ActualSettlement) CandidateIndex {
	idx := make(CandidateIndex, len(actuals))
	for i := range actuals {
		a := &actuals[i]
		k := KeyForSettlement(a)
		idx[k] = append(idx[k], a)
	}
	return idx
}
