package ingestion

import (
	"crypto/sha256"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/clearstone/tradebreak/internal/domain"
	"github.com/clearstone/tradebreak/internal/reconciliation"
	"github.com/clearstone/tradebreak/internal/repository"
)

// IngestResult is returned from a successful upload.
type IngestResult struct {
	UploadID          string                 `json:"upload_id"`
	RowsProcessed     int                    `json:"rows_processed"`
	DuplicatesSkipped int                    `json:"duplicates_skipped"`
	Reconciliation    *reconciliation.Result `json:"reconciliation,omitempty"`
}

// Service handles uploads of expected-trade and actual-settlement files.
type Service struct {
	tradeRepo  *repository.TradeRepo
	settRepo   *repository.SettlementRepo
	uploadRepo *repository.UploadRepo
	reconSvc   *reconciliation.Service
}

// NewService creates a new ingestion service.
func NewService(
	tradeRepo *repository.TradeRepo,
	settRepo *repository.SettlementRepo,
	uploadRepo *repository.UploadRepo,
	reconSvc *reconciliation.Service,
) *Service {
	return &Service{
		tradeRepo:  tradeRepo,
		settRepo:   settRepo,
		uploadRepo: uploadRepo,
		reconSvc:   reconSvc,
	}
}

// IngestFile parses an uploaded CSV, stores its records and triggers a
// reconciliation run. Re-uploading a byte-identical file is a no-op.
func (s *Service) IngestFile(data []byte, filename string, typ domain.UploadType, uploader string) (*IngestResult, error) {
	// Idempotency check via file hash.
	hash := fmt.Sprintf("%x", sha256.Sum256(data))
	exists, err := s.uploadRepo.ExistsByHash(hash)
	if err != nil {
		return nil, fmt.Errorf("check hash: %w", err)
	}
	if exists {
		log.Printf("[ingestion] Skipping %s: identical file already ingested", filename)
		return &IngestResult{UploadID: "already-ingested"}, nil
	}

	var parsed, inserted int
	switch typ {
	case domain.UploadExpected:
		trades, err := ParseExpectedCSV(data, filename)
		if err != nil {
			return nil, fmt.Errorf("parse expected: %w", err)
		}
		parsed = len(trades)
		if inserted, err = s.tradeRepo.BulkInsert(trades); err != nil {
			return nil, fmt.Errorf("insert trades: %w", err)
		}
	case domain.UploadActual:
		settlements, err := ParseActualCSV(data, filename)
		if err != nil {
			return nil, fmt.Errorf("parse actual: %w", err)
		}
		parsed = len(settlements)
		if inserted, err = s.settRepo.BulkInsert(settlements); err != nil {
			return nil, fmt.Errorf("insert settlements: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported upload type: %s", typ)
	}

	upload := &domain.Upload{
		ID:            uuid.NewString(),
		Filename:      filename,
		Uploader:      uploader,
		Type:          typ,
		RowsProcessed: inserted,
		Hash:          hash,
	}
	if err := s.uploadRepo.Insert(upload); err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	log.Printf("[ingestion] Ingested %s (%s): %d rows (%d new)",
		filename, typ, parsed, inserted)

	// Run reconciliation. An upload still succeeds if matching has issues.
	reconResult, err := s.reconSvc.Run()
	if err != nil {
		log.Printf("[ingestion] WARNING: reconciliation failed: %v", err)
	}

	return &IngestResult{
		UploadID:          upload.ID,
		RowsProcessed:     inserted,
		DuplicatesSkipped: parsed - inserted,
		Reconciliation:    reconResult,
	}, nil
}
