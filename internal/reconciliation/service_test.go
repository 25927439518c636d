package reconciliation

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearstone/tradebreak/internal/domain"
	"github.com/clearstone/tradebreak/internal/repository"
)

type fixture struct {
	db       *sql.DB
	trades   *repository.TradeRepo
	setts    *repository.SettlementRepo
	breaks   *repository.BreakRepo
	settings *repository.SettingsRepo
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:       db,
		trades:   repository.NewTradeRepo(db),
		setts:    repository.NewSettlementRepo(db),
		breaks:   repository.NewBreakRepo(db),
		settings: repository.NewSettingsRepo(db),
	}
	f.svc = NewService(f.trades, f.setts, f.breaks, f.settings)
	return f
}

func amt(t *testing.T, s string) *domain.Amount {
	t.Helper()
	a, err := domain.ParseAmount(s)
	require.NoError(t, err)
	return &a
}

func (f *fixture) seedTrade(t *testing.T, id, qty, cash string) {
	t.Helper()
	_, err := f.trades.BulkInsert([]domain.ExpectedTrade{{
		ID:             id,
		Account:        "ACC001",
		Instrument:     "AAPL",
		Side:           domain.SideBuy,
		Quantity:       amt(t, qty),
		CashAmount:     amt(t, cash),
		SettlementDate: "2024-01-05",
	}})
	require.NoError(t, err)
}

func (f *fixture) seedSettlement(t *testing.T, id, qty, cash string) {
	t.Helper()
	_, err := f.setts.BulkInsert([]domain.ActualSettlement{{
		ID:             id,
		Account:        "ACC001",
		Instrument:     "AAPL",
		Side:           domain.SideBuy,
		Quantity:       amt(t, qty),
		CashAmount:     amt(t, cash),
		SettlementDate: "2024-01-05",
	}})
	require.NoError(t, err)
}

func TestRunCreatesBreaksAndMarksCleanTrades(t *testing.T) {
	f := newFixture(t)
	f.seedTrade(t, "T1", "100", "10000.00") // cash mismatch
	f.seedTrade(t, "T2", "50", "5000.00")   // clean
	f.seedTrade(t, "T3", "75", "7500.00")   // missing settlement
	f.seedSettlement(t, "S1", "100", "10000.02")
	f.seedSettlement(t, "S2", "50", "5000.00")

	result, err := f.svc.Run()
	require.NoError(t, err)

	assert.Equal(t, 3, result.TradesExamined)
	assert.Equal(t, 2, result.BreaksDetected)
	assert.Equal(t, 2, result.BreaksCreated)
	assert.Equal(t, 0, result.DuplicatesSkipped)
	assert.Equal(t, 1, result.TradesMatched)

	breaks, total, err := f.breaks.List(repository.BreakFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, b := range breaks {
		assert.Equal(t, domain.BreakOpen, b.Status)
		assert.NotEmpty(t, b.ID)
		history, err := f.breaks.HistoryForBreak(b.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.HistoryAutoCreated, history[0].Action)
	}

	// The clean trade is no longer examined.
	unreconciled, err := f.trades.GetUnreconciled()
	require.NoError(t, err)
	require.Len(t, unreconciled, 2)
}

func TestRunDeduplicatesByFingerprint(t *testing.T) {
	f := newFixture(t)
	f.seedTrade(t, "T1", "100", "10000.00")
	f.seedSettlement(t, "S1", "100", "10000.02")

	first, err := f.svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, first.BreaksCreated)

	// Identical data on a second run: the same break is detected but not
	// persisted twice.
	second, err := f.svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, second.BreaksDetected)
	assert.Equal(t, 0, second.BreaksCreated)
	assert.Equal(t, 1, second.DuplicatesSkipped)

	_, total, err := f.breaks.List(repository.BreakFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestRunResolvedBreakReopensOnRedetection(t *testing.T) {
	f := newFixture(t)
	f.seedTrade(t, "T1", "100", "10000.00")
	f.seedSettlement(t, "S1", "100", "10000.02")

	first, err := f.svc.Run()
	require.NoError(t, err)
	require.Equal(t, 1, first.BreaksCreated)

	breaks, _, err := f.breaks.List(repository.BreakFilter{})
	require.NoError(t, err)
	_, err = f.breaks.Resolve(breaks[0].ID)
	require.NoError(t, err)

	// Dedup only considers OPEN breaks, so a still-broken trade produces a
	// fresh break after the old one is resolved.
	again, err := f.svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, again.BreaksCreated)
}

func TestRunUsesConfiguredTolerance(t *testing.T) {
	f := newFixture(t)
	f.seedTrade(t, "T1", "100", "10000.00")
	f.seedSettlement(t, "S1", "100", "10003.00")

	require.NoError(t, f.settings.Save(&domain.Settings{CashTolerance: amt(t, "5.00")}))

	result, err := f.svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, result.BreaksDetected, "3.00 difference is inside the 5.00 tolerance")
	assert.Equal(t, 1, result.TradesMatched)
}

func TestRunNothingToMatch(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.Run()
	require.NoError(t, err)
	assert.Equal(t, &Result{}, result)
}
