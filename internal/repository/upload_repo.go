package repository

import (
	"database/sql"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

type UploadRepo struct {
	db *sql.DB
}

func NewUploadRepo(db *sql.DB) *UploadRepo {
	return &UploadRepo{db: db}
}

func (r *UploadRepo) Insert(u *domain.Upload) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO uploads (id, filename, uploader, type, rows_processed, hash, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.Filename, u.Uploader, string(u.Type), u.RowsProcessed,
		nullString(u.Hash), u.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// ExistsByHash reports whether a file with the same content hash was already
// ingested.
func (r *UploadRepo) ExistsByHash(hash string) (bool, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM uploads WHERE hash = ?", hash).Scan(&n)
	return n > 0, err
}

func (r *UploadRepo) List() ([]domain.Upload, error) {
	rows, err := r.db.Query(
		`SELECT id, filename, uploader, type, rows_processed, hash, created_at
		FROM uploads ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []domain.Upload
	for rows.Next() {
		var u domain.Upload
		var typ, createdAt string
		var hash sql.NullString
		if err := rows.Scan(&u.ID, &u.Filename, &u.Uploader, &typ, &u.RowsProcessed, &hash, &createdAt); err != nil {
			return nil, err
		}
		u.Type = domain.UploadType(typ)
		u.Hash = hash.String
		u.CreatedAt = timeFromString(createdAt)
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}
