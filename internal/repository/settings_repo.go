package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Latest returns the most recently saved settings, or zero-value defaults
// when none have been saved yet. A nil CashTolerance means "use the matcher
// default".
func (r *SettingsRepo) Latest() (*domain.Settings, error) {
	row := r.db.QueryRow(
		`SELECT cash_tolerance, date_tolerance_days, updated_at
		FROM settings ORDER BY updated_at DESC, id DESC LIMIT 1`,
	)

	var s domain.Settings
	var tolerance sql.NullString
	var updatedAt string
	err := row.Scan(&tolerance, &s.DateToleranceDays, &updatedAt)
	if err == sql.ErrNoRows {
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}

	if s.CashTolerance, err = amountFromNull(tolerance); err != nil {
		return nil, fmt.Errorf("cash_tolerance: %w", err)
	}
	s.UpdatedAt = timeFromString(updatedAt)
	return &s, nil
}

// Save appends a new settings row; Latest always wins, so history is kept for
// free.
func (r *SettingsRepo) Save(s *domain.Settings) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO settings (cash_tolerance, date_tolerance_days, updated_at)
		VALUES (?,?,?)`,
		nullAmount(s.CashTolerance), s.DateToleranceDays,
		s.UpdatedAt.Format(time.RFC3339),
	)
	return err
}
