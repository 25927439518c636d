package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clearstone/tradebreak/internal/ingestion"
	"github.com/clearstone/tradebreak/internal/reconciliation"
	"github.com/clearstone/tradebreak/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	tradeRepo *repository.TradeRepo,
	settRepo *repository.SettlementRepo,
	breakRepo *repository.BreakRepo,
	settingsRepo *repository.SettingsRepo,
	uploadRepo *repository.UploadRepo,
	ingestionSvc *ingestion.Service,
	reconSvc *reconciliation.Service,
) http.Handler {
	h := &Handlers{
		tradeRepo:    tradeRepo,
		settRepo:     settRepo,
		breakRepo:    breakRepo,
		settingsRepo: settingsRepo,
		uploadRepo:   uploadRepo,
		ingestionSvc: ingestionSvc,
		reconSvc:     reconSvc,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		// Uploads.
		r.Post("/uploads", h.Upload)
		r.Get("/uploads", h.ListUploads)

		// Reconciliation.
		r.Post("/reconcile", h.Reconcile)

		// Breaks.
		r.Get("/breaks", h.ListBreaks)
		r.Get("/breaks/export", h.ExportBreaks)
		r.Get("/breaks/{id}", h.GetBreak)
		r.Post("/breaks/{id}/assign", h.AssignBreak)
		r.Post("/breaks/{id}/resolve", h.ResolveBreak)

		// Input data.
		r.Get("/trades", h.ListTrades)
		r.Get("/settlements", h.ListSettlements)

		// Dashboard.
		r.Get("/stats", h.GetStats)
		r.Get("/reports/daily", h.GetDailyReport)

		// Settings.
		r.Get("/settings", h.GetSettings)
		r.Post("/settings", h.UpdateSettings)
	})

	return r
}
