// Command matcher runs one reconciliation over a JSON document on stdin and
// writes the detected breaks as JSON on stdout. It is the process boundary
// the engine is embedded behind: callers pipe in
//
//	{"trades": [...], "actuals": [...], "settings": {"cashTolerance": 0.01}}
//
// and receive {"breaks": [...]} on success or {"error": "..."} plus a
// non-zero exit status on failure. All numeric output is decimal strings.
package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/clearstone/tradebreak/internal/domain"
	"github.com/clearstone/tradebreak/internal/matching"
)

type request struct {
	Trades   []domain.ExpectedTrade    `json:"trades"`
	Actuals  []domain.ActualSettlement `json:"actuals"`
	Settings struct {
		CashTolerance *domain.Amount `json:"cashTolerance"`
	} `json:"settings"`
}

type response struct {
	Breaks []domain.Break `json:"breaks"`
}

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		json.NewEncoder(os.Stdout).Encode(map[string]string{"error": err.Error()})
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return &matching.ParseError{Err: err}
	}
	// An empty invocation is a no-op, not an error.
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return &matching.ParseError{Err: err}
	}

	tolerance := matching.DefaultCashTolerance
	if req.Settings.CashTolerance != nil {
		tolerance = *req.Settings.CashTolerance
	}

	breaks, err := matching.Run(req.Trades, req.Actuals, tolerance)
	if err != nil {
		return err
	}

	return json.NewEncoder(out).Encode(response{Breaks: breaks})
}
