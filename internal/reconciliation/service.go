package reconciliation

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clearstone/tradebreak/internal/domain"
	"github.com/clearstone/tradebreak/internal/matching"
	"github.com/clearstone/tradebreak/internal/repository"
)

// Result summarises a full reconciliation run.
type Result struct {
	TradesExamined    int `json:"trades_examined"`
	BreaksDetected    int `json:"breaks_detected"`
	BreaksCreated     int `json:"breaks_created"`
	DuplicatesSkipped int `json:"duplicates_skipped"`
	TradesMatched     int `json:"trades_matched"`
}

// Service runs the matching engine over the stored trades and settlements
// and persists the resulting breaks. The engine itself is pure; everything
// stateful about a run lives here.
type Service struct {
	tradeRepo    *repository.TradeRepo
	settRepo     *repository.SettlementRepo
	breakRepo    *repository.BreakRepo
	settingsRepo *repository.SettingsRepo
}

// NewService creates a new reconciliation service.
func NewService(
	tradeRepo *repository.TradeRepo,
	settRepo *repository.SettlementRepo,
	breakRepo *repository.BreakRepo,
	settingsRepo *repository.SettingsRepo,
) *Service {
	return &Service{
		tradeRepo:    tradeRepo,
		settRepo:     settRepo,
		breakRepo:    breakRepo,
		settingsRepo: settingsRepo,
	}
}

// Run reconciles all unreconciled trades against the full settlement set.
// Breaks whose fingerprint already has an OPEN break are skipped, so
// re-running over the same data is a no-op; trades that reconcile cleanly are
// marked MATCHED and not examined again.
func (s *Service) Run() (*Result, error) {
	trades, err := s.tradeRepo.GetUnreconciled()
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	if len(trades) == 0 {
		log.Printf("[reconciliation] No trades to match")
		return &Result{}, nil
	}

	actuals, err := s.settRepo.GetAll()
	if err != nil {
		return nil, fmt.Errorf("load settlements: %w", err)
	}

	tolerance, err := s.cashTolerance()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	breaks, err := matching.Run(trades, actuals, tolerance)
	if err != nil {
		return nil, fmt.Errorf("match: %w", err)
	}

	created := 0
	skipped := 0
	broken := make(map[string]bool, len(breaks))
	for i := range breaks {
		br := &breaks[i]
		broken[br.ExpectedTradeID] = true

		exists, err := s.breakRepo.HasOpenFingerprint(br.Fingerprint)
		if err != nil {
			return nil, fmt.Errorf("check fingerprint: %w", err)
		}
		if exists {
			skipped++
			continue
		}

		now := time.Now()
		br.ID = uuid.NewString()
		br.Status = domain.BreakOpen
		br.CreatedAt = &now
		br.UpdatedAt = &now

		if err := s.breakRepo.Insert(br); err != nil {
			return nil, fmt.Errorf("insert break for trade %s: %w", br.ExpectedTradeID, err)
		}
		if err := s.breakRepo.InsertHistory(&domain.BreakHistory{
			ID:        uuid.NewString(),
			BreakID:   br.ID,
			Action:    domain.HistoryAutoCreated,
			User:      "system",
			Comment:   fmt.Sprintf("Break created: %s", br.Reason),
			Timestamp: now,
		}); err != nil {
			return nil, fmt.Errorf("insert history for break %s: %w", br.ID, err)
		}
		created++
	}

	// Trades that produced no break settled cleanly; stop re-examining them.
	var matchedIDs []string
	for i := range trades {
		if !broken[trades[i].ID] {
			matchedIDs = append(matchedIDs, trades[i].ID)
		}
	}
	if len(matchedIDs) > 0 {
		if err := s.tradeRepo.MarkMatched(matchedIDs); err != nil {
			return nil, fmt.Errorf("mark matched: %w", err)
		}
	}

	result := &Result{
		TradesExamined:    len(trades),
		BreaksDetected:    len(breaks),
		BreaksCreated:     created,
		DuplicatesSkipped: skipped,
		TradesMatched:     len(matchedIDs),
	}

	log.Printf("[reconciliation] Examined %d trades: %d breaks (%d new, %d duplicates), %d matched clean",
		result.TradesExamined, result.BreaksDetected, result.BreaksCreated,
		result.DuplicatesSkipped, result.TradesMatched)

	return result, nil
}

// cashTolerance resolves the configured tolerance, falling back to the engine
// default when no setting has been saved.
func (s *Service) cashTolerance() (domain.Amount, error) {
	settings, err := s.settingsRepo.Latest()
	if err != nil {
		return domain.Amount{}, err
	}
	if settings.CashTolerance != nil {
		return *settings.CashTolerance, nil
	}
	return matching.DefaultCashTolerance, nil
}
