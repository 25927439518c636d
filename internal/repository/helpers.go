package repository

import (
	"database/sql"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

// Amounts are stored as exact decimal TEXT; empty/NULL means absent.

func nullAmount(a *domain.Amount) any {
	if a == nil {
		return nil
	}
	return a.String()
}

func amountFromNull(ns sql.NullString) (*domain.Amount, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	a, err := domain.ParseAmount(ns.String)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timeFromString(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
