package api

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clearstone/tradebreak/internal/domain"
	"github.com/clearstone/tradebreak/internal/ingestion"
	"github.com/clearstone/tradebreak/internal/reconciliation"
	"github.com/clearstone/tradebreak/internal/repository"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	tradeRepo    *repository.TradeRepo
	settRepo     *repository.SettlementRepo
	breakRepo    *repository.BreakRepo
	settingsRepo *repository.SettingsRepo
	uploadRepo   *repository.UploadRepo
	ingestionSvc *ingestion.Service
	reconSvc     *reconciliation.Service
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// --- Upload ---

func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	typ := domain.UploadType(r.FormValue("type"))
	if typ != domain.UploadExpected && typ != domain.UploadActual {
		writeError(w, http.StatusBadRequest, "type must be EXPECTED or ACTUAL")
		return
	}

	uploader := r.FormValue("uploader")
	if uploader == "" {
		uploader = "system"
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	result, err := h.ingestionSvc.IngestFile(data, header.Filename, typ, uploader)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploadRepo.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}

// --- Reconcile ---

func (h *Handlers) Reconcile(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconSvc.Run()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- ListBreaks ---

func (h *Handlers) ListBreaks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.BreakFilter{
		Kind:     q.Get("type"),
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
		Page:     parseIntDefault(q.Get("page"), 1),
		Limit:    parseIntDefault(q.Get("limit"), 50),
	}

	breaks, total, err := h.breakRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pages := total / filter.Limit
	if total%filter.Limit != 0 {
		pages++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"breaks": breaks,
		"total":  total,
		"page":   filter.Page,
		"pages":  pages,
	})
}

// --- GetBreak ---

func (h *Handlers) GetBreak(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	brk, err := h.breakRepo.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if brk == nil {
		writeError(w, http.StatusNotFound, "break not found")
		return
	}

	history, err := h.breakRepo.HistoryForBreak(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	trade, err := h.tradeRepo.GetByID(brk.ExpectedTradeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var settlement *domain.ActualSettlement
	if brk.ActualSettlementID != "" {
		if settlement, err = h.settRepo.GetByID(brk.ActualSettlementID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"break":      brk,
		"history":    history,
		"trade":      trade,
		"settlement": settlement,
	})
}

// --- AssignBreak ---

func (h *Handlers) AssignBreak(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Assignee string `json:"assignee"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Assignee == "" {
		writeError(w, http.StatusBadRequest, "assignee is required")
		return
	}

	brk, err := h.breakRepo.Assign(id, body.Assignee)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if brk == nil {
		writeError(w, http.StatusNotFound, "break not found")
		return
	}

	if err := h.breakRepo.InsertHistory(&domain.BreakHistory{
		ID:        uuid.NewString(),
		BreakID:   id,
		Action:    domain.HistoryAssigned,
		User:      "system",
		Comment:   "Assigned to " + body.Assignee,
		Timestamp: time.Now(),
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, brk)
}

// --- ResolveBreak ---

func (h *Handlers) ResolveBreak(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Comment        string `json:"comment"`
		ResolutionCode string `json:"resolutionCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	brk, err := h.breakRepo.Resolve(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if brk == nil {
		writeError(w, http.StatusNotFound, "break not found")
		return
	}

	comment := body.Comment
	if body.ResolutionCode != "" {
		comment = "[" + body.ResolutionCode + "] " + comment
	}
	if err := h.breakRepo.InsertHistory(&domain.BreakHistory{
		ID:        uuid.NewString(),
		BreakID:   id,
		Action:    domain.HistoryResolved,
		User:      "system",
		Comment:   comment,
		Timestamp: time.Now(),
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, brk)
}

// --- ExportBreaks ---

func (h *Handlers) ExportBreaks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.BreakFilter{
		Kind:     q.Get("type"),
		Status:   q.Get("status"),
		Severity: q.Get("severity"),
	}

	breaks, err := h.breakRepo.ListAll(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="breaks_export.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"Break ID", "Type", "Status", "Severity", "Difference", "Reason",
		"Trade ID", "Account", "Instrument", "Expected Value", "Actual Value",
		"Created At",
	})

	for i := range breaks {
		b := &breaks[i]
		account, instrument := "N/A", "N/A"
		if trade, err := h.tradeRepo.GetByID(b.ExpectedTradeID); err == nil && trade != nil {
			account, instrument = trade.Account, trade.Instrument
		}
		actual := ""
		if b.ActualValue != nil {
			actual = *b.ActualValue
		}
		createdAt := ""
		if b.CreatedAt != nil {
			createdAt = b.CreatedAt.Format(time.RFC3339)
		}
		cw.Write([]string{
			b.ID, string(b.Kind), string(b.Status), string(b.Severity),
			b.Difference, b.Reason, b.ExpectedTradeID, account, instrument,
			b.ExpectedValue, actual, createdAt,
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("[api] export error: %v", err)
	}
}

// --- ListTrades ---

func (h *Handlers) ListTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.TradeFilter{
		Account:        q.Get("account"),
		Instrument:     q.Get("instrument"),
		SettlementDate: q.Get("settlementDate"),
		Page:           parseIntDefault(q.Get("page"), 1),
		Limit:          parseIntDefault(q.Get("limit"), 50),
	}

	trades, total, err := h.tradeRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"trades": trades,
		"total":  total,
		"page":   filter.Page,
		"limit":  filter.Limit,
	})
}

// --- ListSettlements ---

func (h *Handlers) ListSettlements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.SettlementFilter{
		Account:        q.Get("account"),
		Instrument:     q.Get("instrument"),
		SettlementDate: q.Get("settlementDate"),
		Page:           parseIntDefault(q.Get("page"), 1),
		Limit:          parseIntDefault(q.Get("limit"), 50),
	}

	settlements, total, err := h.settRepo.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"settlements": settlements,
		"total":       total,
		"page":        filter.Page,
		"limit":       filter.Limit,
	})
}

// --- GetStats ---

type nameValue struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.breakRepo.GetStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   toNameValues(stats.ByStatus),
		"type":     toNameValues(stats.ByType),
		"severity": toNameValues(stats.BySeverity),
		"summary": map[string]int{
			"totalOpen":         stats.TotalOpen,
			"totalHighSeverity": stats.TotalHighSeverity,
			"resolvedToday":     stats.ResolvedToday,
		},
	})
}

func toNameValues(m map[string]int) []nameValue {
	out := make([]nameValue, 0, len(m))
	for k, v := range m {
		out = append(out, nameValue{Name: k, Value: v})
	}
	return out
}

// --- GetDailyReport ---

func (h *Handlers) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.breakRepo.GetDailyReport()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		report = []repository.DailyReportEntry{}
	}
	writeJSON(w, http.StatusOK, report)
}

// --- Settings ---

func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsRepo.Latest()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
		return
	}

	settings.UpdatedAt = time.Now()
	if err := h.settingsRepo.Save(&settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, settings)
}
