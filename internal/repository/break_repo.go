package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

type BreakRepo struct {
	db *sql.DB
}

func NewBreakRepo(db *sql.DB) *BreakRepo {
	return &BreakRepo{db: db}
}

const breakColumns = `id, break_type, expected_trade_id, actual_settlement_id,
	expected_value, actual_value, difference, severity, reason, fingerprint,
	status, assigned_to, created_at, updated_at`

func (r *BreakRepo) Insert(b *domain.Break) error {
	createdAt := time.Now()
	if b.CreatedAt != nil {
		createdAt = *b.CreatedAt
	}
	updatedAt := createdAt
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	var actualValue any
	if b.ActualValue != nil {
		actualValue = *b.ActualValue
	}

	_, err := r.db.Exec(
		`INSERT INTO breaks (`+breakColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.ID, string(b.Kind), b.ExpectedTradeID, nullString(b.ActualSettlementID),
		b.ExpectedValue, actualValue, b.Difference, string(b.Severity),
		b.Reason, b.Fingerprint, string(b.Status), nullString(b.AssignedTo),
		createdAt.Format(time.RFC3339), updatedAt.Format(time.RFC3339),
	)
	return err
}

// HasOpenFingerprint reports whether an OPEN break with the given fingerprint
// already exists. This is the cross-run dedup the fingerprint exists for: the
// same discrepancy re-detected on a later run must not create a second break.
func (r *BreakRepo) HasOpenFingerprint(fingerprint string) (bool, error) {
	var n int
	err := r.db.QueryRow(
		"SELECT COUNT(*) FROM breaks WHERE fingerprint = ? AND status = 'OPEN'",
		fingerprint,
	).Scan(&n)
	return n > 0, err
}

func (r *BreakRepo) GetByID(id string) (*domain.Break, error) {
	row := r.db.QueryRow(
		`SELECT `+breakColumns+` FROM breaks WHERE id = ?`, id,
	)
	b, err := scanBreak(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

type BreakFilter struct {
	Kind     string
	Status   string
	Severity string
	Page     int
	Limit    int
}

func (r *BreakRepo) List(f BreakFilter) ([]domain.Break, int, error) {
	where, args := buildBreakWhere(f)

	var total int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM breaks"+where, args...).Scan(&total); err != nil {
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
		`SELECT `+breakColumns+` FROM breaks`+where+` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	breaks, err := scanBreaks(rows)
	return breaks, total, err
}

// ListAll returns every break matching the filter without paging, for export.
func (r *BreakRepo) ListAll(f BreakFilter) ([]domain.Break, error) {
	where, args := buildBreakWhere(f)
	rows, err := r.db.Query(
		`SELECT `+breakColumns+` FROM breaks`+where+` ORDER BY created_at DESC, rowid DESC`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBreaks(rows)
}

func (r *BreakRepo) Assign(id, assignee string) (*domain.Break, error) {
	res, err := r.db.Exec(
		"UPDATE breaks SET assigned_to = ?, status = 'ASSIGNED', updated_at = ? WHERE id = ?",
		assignee, time.Now().Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

func (r *BreakRepo) Resolve(id string) (*domain.Break, error) {
	res, err := r.db.Exec(
		"UPDATE breaks SET status = 'RESOLVED', updated_at = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), id,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return r.GetByID(id)
}

// --- history ---

func (r *BreakRepo) InsertHistory(h *domain.BreakHistory) error {
	_, err := r.db.Exec(
		`INSERT INTO break_history (id, break_id, action, user, comment, timestamp)
		VALUES (?,?,?,?,?,?)`,
		h.ID, h.BreakID, string(h.Action), h.User, nullString(h.Comment),
		h.Timestamp.Format(time.RFC3339),
	)
	return err
}

func (r *BreakRepo) HistoryForBreak(breakID string) ([]domain.BreakHistory, error) {
	rows, err := r.db.Query(
		`SELECT id, break_id, action, user, comment, timestamp
		FROM break_history WHERE break_id = ? ORDER BY timestamp, rowid`,
		breakID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.BreakHistory
	for rows.Next() {
		var h domain.BreakHistory
		var action, comment sql.NullString
		var ts string
		if err := rows.Scan(&h.ID, &h.BreakID, &action, &h.User, &comment, &ts); err != nil {
			return nil, err
		}
		h.Action = domain.HistoryAction(action.String)
		h.Comment = comment.String
		h.Timestamp = timeFromString(ts)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// --- stats ---

type BreakStats struct {
	ByStatus          map[string]int `json:"byStatus"`
	ByType            map[string]int `json:"byType"`
	BySeverity        map[string]int `json:"bySeverity"`
	TotalOpen         int            `json:"totalOpen"`
	TotalHighSeverity int            `json:"totalHighSeverity"`
	ResolvedToday     int            `json:"resolvedToday"`
}

func (r *BreakRepo) GetStats() (*BreakStats, error) {
	s := &BreakStats{
		ByStatus:   make(map[string]int),
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}

	if err := scanGroupCount(r.db, "status", s.ByStatus); err != nil {
		return nil, err
	}
	if err := scanGroupCount(r.db, "break_type", s.ByType); err != nil {
		return nil, err
	}
	if err := scanGroupCount(r.db, "severity", s.BySeverity); err != nil {
		return nil, err
	}

	s.TotalOpen = s.ByStatus[string(domain.BreakOpen)]
	s.TotalHighSeverity = s.BySeverity[string(domain.SeverityHigh)]

	startOfDay := time.Now().Truncate(24 * time.Hour).Format(time.RFC3339)
	if err := r.db.QueryRow(
		"SELECT COUNT(*) FROM breaks WHERE status != 'OPEN' AND updated_at >= ?",
		startOfDay,
	).Scan(&s.ResolvedToday); err != nil {
		return nil, err
	}

	return s, nil
}

type DailyReportEntry struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

// GetDailyReport aggregates breaks by creation day, counting how many of each
// day's breaks have since left the OPEN state.
func (r *BreakRepo) GetDailyReport() ([]DailyReportEntry, error) {
	rows, err := r.db.Query(`
		SELECT substr(created_at, 1, 10) AS day,
		       COUNT(*),
		       SUM(CASE WHEN status != 'OPEN' THEN 1 ELSE 0 END)
		FROM breaks GROUP BY day ORDER BY day
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var report []DailyReportEntry
	for rows.Next() {
		var e DailyReportEntry
		if err := rows.Scan(&e.Date, &e.Created, &e.Resolved); err != nil {
			return nil, err
		}
		report = append(report, e)
	}
	return report, rows.Err()
}

// --- helpers ---

func buildBreakWhere(f BreakFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.Kind != "" {
		clauses = append(clauses, "break_type = ?")
		args = append(args, f.Kind)
	}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, f.Severity)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanGroupCount(db *sql.DB, col string, m map[string]int) error {
	rows, err := db.Query(
		"SELECT " + col + ", COUNT(*) FROM breaks GROUP BY " + col,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var k string
		var v int
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		m[k] = v
	}
	return rows.Err()
}

func scanBreak(row rowScanner) (*domain.Break, error) {
	var b domain.Break
	var settID, actualValue, assignedTo sql.NullString
	var kind, severity, status, createdAt, updatedAt string

	err := row.Scan(
		&b.ID, &kind, &b.ExpectedTradeID, &settID, &b.ExpectedValue,
		&actualValue, &b.Difference, &severity, &b.Reason, &b.Fingerprint,
		&status, &assignedTo, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Kind = domain.BreakKind(kind)
	b.Severity = domain.Severity(severity)
	b.Status = domain.BreakStatus(status)
	b.ActualSettlementID = settID.String
	b.AssignedTo = assignedTo.String
	if actualValue.Valid {
		v := actualValue.String
		b.ActualValue = &v
	}
	ca := timeFromString(createdAt)
	ua := timeFromString(updatedAt)
	b.CreatedAt = &ca
	b.UpdatedAt = &ua

	return &b, nil
}

func scanBreaks(rows *sql.Rows) ([]domain.Break, error) {
	var breaks []domain.Break
	for rows.Next() {
		b, err := scanBreak(rows)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, *b)
	}
	return breaks, rows.Err()
}
