package main

import (
	"log"
	"net/http"
	"os"

	"github.com/clearstone/tradebreak/internal/api"
	"github.com/clearstone/tradebreak/internal/ingestion"
	"github.com/clearstone/tradebreak/internal/reconciliation"
	"github.com/clearstone/tradebreak/internal/repository"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "tradebreak.db"
	}

	log.Printf("Initializing database at %s", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}
	defer db.Close()

	// Create repositories.
	tradeRepo := repository.NewTradeRepo(db)
	settRepo := repository.NewSettlementRepo(db)
	breakRepo := repository.NewBreakRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	uploadRepo := repository.NewUploadRepo(db)

	// Create services.
	reconSvc := reconciliation.NewService(tradeRepo, settRepo, breakRepo, settingsRepo)
	ingestionSvc := ingestion.NewService(tradeRepo, settRepo, uploadRepo, reconSvc)

	// Create router.
	router := api.NewRouter(tradeRepo, settRepo, breakRepo, settingsRepo, uploadRepo, ingestionSvc, reconSvc)

	log.Printf("Trade-Break Reconciliation Service")
	log.Printf("Listening on http://localhost:%s", port)
	log.Printf("API base: http://localhost:%s/api/v1", port)
	log.Printf("")
	log.Printf("Endpoints:")
	log.Printf("  POST   /api/v1/uploads")
	log.Printf("  POST   /api/v1/reconcile")
	log.Printf("  GET    /api/v1/breaks")
	log.Printf("  GET    /api/v1/breaks/export")
	log.Printf("  GET    /api/v1/breaks/{id}")
	log.Printf("  POST   /api/v1/breaks/{id}/assign")
	log.Printf("  POST   /api/v1/breaks/{id}/resolve")
	log.Printf("  GET    /api/v1/trades")
	log.Printf("  GET    /api/v1/settlements")
	log.Printf("  GET    /api/v1/stats")
	log.Printf("  GET    /api/v1/reports/daily")
	log.Printf("  GET    /api/v1/settings")

	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
