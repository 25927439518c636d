// Generates deterministic mock expected-trade and actual-settlement CSVs for
// local development and demos. A fixed seed keeps the files reproducible; a
// slice of the actuals is deliberately perturbed so a reconciliation run over
// the pair produces each kind of break.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const tradeCount = 60

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	accounts := []string{"ACC001", "ACC002", "ACC003"}
	instruments := []string{"AAPL", "GOOGL", "MSFT", "TSLA"}
	sides := []string{"BUY", "SELL"}

	tradeDate := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	settleDate := tradeDate.AddDate(0, 0, 2)

	type tradeRow struct {
		id, account, instrument, isin, side string
		qty                                 int
		price, cash, fees                   float64
	}

	var trades []tradeRow
	for i := 0; i < tradeCount; i++ {
		qty := 10 + rng.Intn(991)
		price := 100 + rng.Float64()*2900
		price = float64(int(price*100)) / 100
		t := tradeRow{
			id:         fmt.Sprintf("T%d", 1000+i),
			account:    accounts[rng.Intn(len(accounts))],
			instrument: instruments[rng.Intn(len(instruments))],
			isin:       randomISIN(rng),
			side:       sides[rng.Intn(len(sides))],
			qty:        qty,
			price:      price,
			cash:       float64(int(float64(qty)*price*100)) / 100,
			fees:       float64(1+rng.Intn(900)) / 100,
		}
		trades = append(trades, t)
	}

	// Expected trades file.
	expected := [][]string{{
		"trade_id", "account", "instrument", "isin", "side", "quantity",
		"price", "currency", "trade_date", "settlement_date", "cash_amount",
		"status", "fees",
	}}
	for _, t := range trades {
		expected = append(expected, []string{
			t.id, t.account, t.instrument, t.isin, t.side,
			strconv.Itoa(t.qty), money(t.price), "USD",
			tradeDate.Format("2006-01-02"), settleDate.Format("2006-01-02"),
			money(t.cash), "SETTLED", money(t.fees),
		})
	}
	writeCSV(filepath.Join(baseDir, "expected_trades.csv"), expected)

	// Actual settlements: mostly clean, with injected discrepancies.
	actuals := [][]string{{
		"reference_id", "account", "instrument", "quantity", "cash_amount",
		"settlement_date", "currency", "side",
	}}
	var cashBreaks, qtyBreaks, missing int
	for i, t := range trades {
		qty := t.qty
		cash := t.cash
		switch {
		case i%10 == 3: // cash mismatch beyond the default 0.01 tolerance
			cash += 0.02 + float64(rng.Intn(500))/100
			cashBreaks++
		case i%10 == 6: // quantity mismatch
			qty += 1 + rng.Intn(50)
			qtyBreaks++
		case i%10 == 9: // missing settlement
			missing++
			continue
		}
		actuals = append(actuals, []string{
			"S" + t.id[1:], t.account, t.instrument, strconv.Itoa(qty),
			money(cash), settleDate.Format("2006-01-02"), "USD", t.side,
		})
	}
	writeCSV(filepath.Join(baseDir, "actual_settlements.csv"), actuals)

	log.Printf("Generated %d trades, %d settlements (%d cash mismatches, %d quantity mismatches, %d missing)",
		len(trades), len(actuals)-1, cashBreaks, qtyBreaks, missing)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func randomISIN(rng *rand.Rand) string {
	digits := make([]byte, 10)
	for i := range digits {
		digits[i] = byte('0' + rng.Intn(10))
	}
	return "US" + string(digits)
}

func writeCSV(path string, rows [][]string) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	log.Printf("Wrote %s (%d rows)", path, len(rows)-1)
}

func findTestdataDir() string {
	for _, dir := range []string{"testdata", ".", filepath.Join("..", "..")} {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			if _, err := os.Stat(filepath.Join(dir, "generate")); err == nil {
				return dir
			}
		}
	}
	return "."
}
