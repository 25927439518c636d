package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

type TradeRepo struct {
	db *sql.DB
}

func NewTradeRepo(db *sql.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

const tradeColumns = `id, account, instrument, isin, side, quantity, price,
	currency, trade_date, settlement_date, cash_amount, fees, status,
	source_file, created_at`

func (r *TradeRepo) BulkInsert(trades []domain.ExpectedTrade) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO trades (` + tradeColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range trades {
		t := &trades[i]
		createdAt := time.Now()
		if t.CreatedAt != nil {
			createdAt = *t.CreatedAt
		}
		status := t.Status
		if status == "" {
			status = domain.TradeStatusSettled
		}
		res, err := stmt.Exec(
			t.ID, t.Account, t.Instrument, nullString(t.ISIN), string(t.Side),
			t.Quantity.String(), nullAmount(t.Price), nullString(t.Currency),
			nullString(t.TradeDate), t.SettlementDate, nullAmount(t.CashAmount),
			nullAmount(t.Fees), string(status), nullString(t.SourceFile),
			createdAt.Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert trade %s: %w", t.ID, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *TradeRepo) GetByID(id string) (*domain.ExpectedTrade, error) {
	row := r.db.QueryRow(
		`SELECT `+tradeColumns+` FROM trades WHERE id = ?`, id,
	)
	t, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

// GetUnreconciled returns all trades that have not been fully matched yet, in
// insertion order. These are the trades each reconciliation run examines.
func (r *TradeRepo) GetUnreconciled() ([]domain.ExpectedTrade, error) {
	rows, err := r.db.Query(
		`SELECT ` + tradeColumns + ` FROM trades WHERE status != 'MATCHED' ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTrades(rows)
}

type TradeFilter struct {
	Account        string
	Instrument     string
	SettlementDate string
	Page           int
	Limit          int
}

func (r *TradeRepo) List(f TradeFilter) ([]domain.ExpectedTrade, int, error) {
	where := ""
	var args []any
	clauses := []string{}
	if f.Account != "" {
		clauses = append(clauses, "account = ?")
		args = append(args, f.Account)
	}
	if f.Instrument != "" {
		clauses = append(clauses, "instrument = ?")
		args = append(args, f.Instrument)
	}
	if f.SettlementDate != "" {
		clauses = append(clauses, "settlement_date = ?")
		args = append(args, f.SettlementDate)
	}
	for i, c := range clauses {
		if i == 0 {
			where = " WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM trades"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.Query(
		`SELECT `+tradeColumns+` FROM trades`+where+` ORDER BY rowid LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	trades, err := scanTrades(rows)
	return trades, total, err
}

func (r *TradeRepo) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM trades").Scan(&n)
	return n, err
}

// MarkMatched flags trades as fully reconciled so later runs skip them.
func (r *TradeRepo) MarkMatched(ids []string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE trades SET status = 'MATCHED' WHERE id = ?")
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("mark %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// --- scanning ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (*domain.ExpectedTrade, error) {
	var t domain.ExpectedTrade
	var isin, price, currency, tradeDate, cash, fees, status, sourceFile sql.NullString
	var qty, side, createdAt string

	err := row.Scan(
		&t.ID, &t.Account, &t.Instrument, &isin, &side, &qty, &price,
		&currency, &tradeDate, &t.SettlementDate, &cash, &fees, &status,
		&sourceFile, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	q, err := domain.ParseAmount(qty)
	if err != nil {
		return nil, fmt.Errorf("trade %s quantity: %w", t.ID, err)
	}
	t.Quantity = &q
	if t.Price, err = amountFromNull(price); err != nil {
		return nil, fmt.Errorf("trade %s price: %w", t.ID, err)
	}
	if t.CashAmount, err = amountFromNull(cash); err != nil {
		return nil, fmt.Errorf("trade %s cash_amount: %w", t.ID, err)
	}
	if t.Fees, err = amountFromNull(fees); err != nil {
		return nil, fmt.Errorf("trade %s fees: %w", t.ID, err)
	}

	t.Side = domain.Side(side)
	t.ISIN = isin.String
	t.Currency = currency.String
	t.TradeDate = tradeDate.String
	t.Status = domain.TradeStatus(status.String)
	t.SourceFile = sourceFile.String
	ca := timeFromString(createdAt)
	t.CreatedAt = &ca

	return &t, nil
}

func scanTrades(rows *sql.Rows) ([]domain.ExpectedTrade, error) {
	var trades []domain.ExpectedTrade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}
