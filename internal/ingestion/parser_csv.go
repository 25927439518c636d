package ingestion

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/clearstone/tradebreak/internal/domain"
)

// CSV uploads are header-mapped rather than positional: back-office extracts
// arrive with varying column casing, so fields are located by name with the
// common alternates accepted.

// ParseExpectedCSV parses an uploaded expected-trades file.
//
// Expected header (extra columns are ignored):
//
//	trade_id,account,instrument,isin,side,quantity,price,currency,trade_date,settlement_date,cash_amount,status,fees
func ParseExpectedCSV(data []byte, sourceFile string) ([]domain.ExpectedTrade, error) {
	rows, err := readCSV(data)
	if err != nil {
		return nil, err
	}

	var trades []domain.ExpectedTrade
	for _, row := range rows {
		t := domain.ExpectedTrade{
			ID:         row.get("trade_id", "tradeid", "_id"),
			Account:    row.get("account"),
			Instrument: row.get("instrument"),
			ISIN:       row.get("isin"),
			Side:       domain.Side(strings.ToUpper(row.get("side"))),
			Currency:   row.get("currency"),
			Status:     domain.TradeStatus(strings.ToUpper(row.get("status"))),
			SourceFile: sourceFile,
		}
		if t.ID == "" {
			return nil, fmt.Errorf("line %d: missing trade_id", row.line)
		}
		if t.Account == "" || t.Instrument == "" || t.Side == "" {
			return nil, fmt.Errorf("line %d: trade %s missing account, instrument or side", row.line, t.ID)
		}
		if t.Status == "" {
			t.Status = domain.TradeStatusSettled
		}

		if t.Quantity, err = row.amount("quantity"); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}
		if t.Quantity == nil {
			return nil, fmt.Errorf("line %d: trade %s missing quantity", row.line, t.ID)
		}
		if t.Price, err = row.amount("price"); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}
		if t.CashAmount, err = row.amount("cash_amount", "cashamount"); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}
		if t.Fees, err = row.amount("fees"); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}

		if t.SettlementDate, err = normalizeDate(row.get("settlement_date", "settlementdate")); err != nil {
			return nil, fmt.Errorf("line %d settlement_date: %w", row.line, err)
		}
		if raw := row.get("trade_date", "tradedate"); raw != "" {
			if t.TradeDate, err = normalizeDate(raw); err != nil {
				return nil, fmt.Errorf("line %d trade_date: %w", row.line, err)
			}
		}

		trades = append(trades, t)
	}
	return trades, nil
}

// ParseActualCSV parses an uploaded actual-settlements file.
//
// Expected header:
//
//	reference_id,account,instrument,quantity,cash_amount,settlement_date,currency,side
func ParseActualCSV(data []byte, sourceFile string) ([]domain.ActualSettlement, error) {
	rows, err := readCSV(data)
	if err != nil {
		return nil, err
	}

	var settlements []domain.ActualSettlement
	for _, row := range rows {
		a := domain.ActualSettlement{
			ID:         row.get("reference_id", "referenceid", "_id", "trade_id"),
			Account:    row.get("account"),
			Instrument: row.get("instrument"),
			Currency:   row.get("currency"),
			Side:       domain.Side(strings.ToUpper(row.get("side"))),
			SourceFile: sourceFile,
		}
		if a.ID == "" {
			return nil, fmt.Errorf("line %d: missing reference_id", row.line)
		}
		if a.Account == "" || a.Instrument == "" {
			return nil, fmt.Errorf("line %d: settlement %s missing account or instrument", row.line, a.ID)
		}

		if a.Quantity, err = row.amount("quantity"); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}
		if a.Quantity == nil {
			return nil, fmt.Errorf("line %d: settlement %s missing quantity", row.line, a.ID)
		}
		if a.CashAmount, err = row.amount("cash_amount", "cashamount"); err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}

		if a.SettlementDate, err = normalizeDate(row.get("settlement_date", "settlementdate")); err != nil {
			return nil, fmt.Errorf("line %d settlement_date: %w", row.line, err)
		}

		settlements = append(settlements, a)
	}
	return settlements, nil
}

// --- csv plumbing ---

type csvRow struct {
	line   int
	header map[string]int
	fields []string
}

func (r csvRow) get(names ...string) string {
	for _, name := range names {
		if i, ok := r.header[name]; ok && i < len(r.fields) {
			return strings.TrimSpace(r.fields[i])
		}
	}
	return ""
}

func (r csvRow) amount(names ...string) (*domain.Amount, error) {
	raw := r.get(names...)
	if raw == "" {
		return nil, nil
	}
	a, err := domain.ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func readCSV(data []byte) ([]csvRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headerFields, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(headerFields))
	for i, h := range headerFields {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows []csvRow
	line := 1
	for {
		line++
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(fields) == 0 {
			continue
		}
		rows = append(rows, csvRow{line: line, header: header, fields: fields})
	}
	return rows, nil
}

// normalizeDate renders a settlement/trade date as YYYY-MM-DD. Dates take
// part in the settlement key by string equality, so both sides of an upload
// must normalize identically.
func normalizeDate(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return "", fmt.Errorf("unrecognized date %q", s)
		}
	}
	return t.Format("2006-01-02"), nil
}
