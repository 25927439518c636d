package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

type SettlementRepo struct {
	db *sql.DB
}

func NewSettlementRepo(db *sql.DB) *SettlementRepo {
	return &SettlementRepo{db: db}
}

const settlementColumns = `id, account, instrument, quantity, cash_amount,
	settlement_date, currency, side, source_file, created_at`

func (r *SettlementRepo) BulkInsert(settlements []domain.ActualSettlement) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT OR IGNORE INTO settlements (` + settlementColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
	)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := range settlements {
		a := &settlements[i]
		createdAt := time.Now()
		if a.CreatedAt != nil {
			createdAt = *a.CreatedAt
		}
		res, err := stmt.Exec(
			a.ID, a.Account, a.Instrument, a.Quantity.String(),
			nullAmount(a.CashAmount), a.SettlementDate, nullString(a.Currency),
			nullString(string(a.Side)), nullString(a.SourceFile),
			createdAt.Format(time.RFC3339),
		)
		if err != nil {
			return inserted, fmt.Errorf("insert settlement %s: %w", a.ID, err)
		}
		ra, _ := res.RowsAffected()
		inserted += int(ra)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

func (r *SettlementRepo) GetByID(id string) (*domain.ActualSettlement, error) {
	row := r.db.QueryRow(
		`SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, id,
	)
	a, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

// GetAll returns every settlement record in insertion order. Insertion order
// is load-bearing: the matcher picks the first candidate under a key when no
// exact quantity match exists.
func (r *SettlementRepo) GetAll() ([]domain.ActualSettlement, error) {
	rows, err := r.db.Query(
		`SELECT ` + settlementColumns + ` FROM settlements ORDER BY rowid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSettlements(rows)
}

type SettlementFilter struct {
	Account        string
	Instrument     string
	SettlementDate string
	Page           int
	Limit          int
}

func (r *SettlementRepo) List(f SettlementFilter) ([]domain.ActualSettlement, int, error) {
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
	if err := r.db.QueryRow("SELECT COUNT(*) FROM settlements"+where, args...).Scan(&total); err != nil {
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
		`SELECT `+settlementColumns+` FROM settlements`+where+` ORDER BY rowid LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	settlements, err := scanSettlements(rows)
	return settlements, total, err
}

func (r *SettlementRepo) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM settlements").Scan(&n)
	return n, err
}

// --- scanning ---

func scanSettlement(row rowScanner) (*domain.ActualSettlement, error) {
	var a domain.ActualSettlement
	var cash, currency, side, sourceFile sql.NullString
	var qty, createdAt string

	err := row.Scan(
		&a.ID, &a.Account, &a.Instrument, &qty, &cash, &a.SettlementDate,
		&currency, &side, &sourceFile, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	q, err := domain.ParseAmount(qty)
	if err != nil {
		return nil, fmt.Errorf("settlement %s quantity: %w", a.ID, err)
	}
	a.Quantity = &q
	if a.CashAmount, err = amountFromNull(cash); err != nil {
		return nil, fmt.Errorf("settlement %s cash_amount: %w", a.ID, err)
	}

	a.Currency = currency.String
	a.Side = domain.Side(side.String)
	a.SourceFile = sourceFile.String
	ca := timeFromString(createdAt)
	a.CreatedAt = &ca

	return &a, nil
}

func scanSettlements(rows *sql.Rows) ([]domain.ActualSettlement, error) {
	var settlements []domain.ActualSettlement
	for rows.Next() {
		a, err := scanSettlement(rows)
		if err != nil {
			return nil, err
		}
		settlements = append(settlements, *a)
	}
	return settlements, rows.Err()
}
