package domain

import "time"

type UploadType string

const (
	UploadExpected UploadType = "EXPECTED"
	UploadActual   UploadType = "ACTUAL"
)

// Upload records one file ingested into the system, keyed by content hash so
// re-uploads of the same file can be detected.
type Upload struct {
	ID            string     `json:"id"`
	Filename      string     `json:"filename"`
	Uploader      string     `json:"uploader"`
	Type          UploadType `json:"type"`
	RowsProcessed int        `json:"rowsProcessed"`
	Hash          string     `json:"hash"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Settings holds the operator-tunable reconciliation parameters. A single
// latest row wins. DateToleranceDays is stored for the settings screen but is
// not yet consumed by the matcher.
type Settings struct {
	CashTolerance     *Amount   `json:"cashTolerance,omitempty"`
	DateToleranceDays int       `json:"dateToleranceDays"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
