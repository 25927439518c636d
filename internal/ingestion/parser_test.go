package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearstone/tradebreak/internal/domain"
)

const expectedCSV = `trade_id,account,instrument,isin,side,quantity,price,currency,trade_date,settlement_date,cash_amount,status,fees
T1000,ACC001,AAPL,US0378331005,buy,100,105.30,USD,2024-01-03,2024-01-05,10530.00,SETTLED,4.20
T1001,ACC002,MSFT,US5949181045,SELL,50,310.00,USD,2024-01-03,2024-01-05,15500.00,,
`

func TestParseExpectedCSV(t *testing.T) {
	trades, err := ParseExpectedCSV([]byte(expectedCSV), "trades.csv")
	require.NoError(t, err)
	require.Len(t, trades, 2)

	tr := trades[0]
	assert.Equal(t, "T1000", tr.ID)
	assert.Equal(t, "ACC001", tr.Account)
	assert.Equal(t, "AAPL", tr.Instrument)
	assert.Equal(t, "US0378331005", tr.ISIN)
	assert.Equal(t, domain.SideBuy, tr.Side, "side is uppercased")
	assert.Equal(t, "100", tr.Quantity.String())
	assert.Equal(t, "105.30", tr.Price.String())
	assert.Equal(t, "10530.00", tr.CashAmount.String())
	assert.Equal(t, "4.20", tr.Fees.String())
	assert.Equal(t, "2024-01-05", tr.SettlementDate)
	assert.Equal(t, "trades.csv", tr.SourceFile)

	tr = trades[1]
	assert.Equal(t, domain.SideSell, tr.Side)
	assert.Equal(t, domain.TradeStatusSettled, tr.Status, "status defaults to SETTLED")
	assert.Nil(t, tr.Fees, "empty optional column is absent, not zero")
}

func TestParseExpectedCSVErrors(t *testing.T) {
	cases := map[string]string{
		"missing quantity": "trade_id,account,instrument,side,settlement_date\nT1,A,AAPL,BUY,2024-01-05\n",
		"bad quantity":     "trade_id,account,instrument,side,quantity,settlement_date\nT1,A,AAPL,BUY,ten,2024-01-05\n",
		"missing trade id": "trade_id,account,instrument,side,quantity,settlement_date\n,A,AAPL,BUY,100,2024-01-05\n",
		"bad date":         "trade_id,account,instrument,side,quantity,settlement_date\nT1,A,AAPL,BUY,100,05/01/2024\n",
	}

	for name, csvBody := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseExpectedCSV([]byte(csvBody), "bad.csv")
			assert.Error(t, err)
		})
	}
}

const actualCSV = `reference_id,account,instrument,quantity,cash_amount,settlement_date,currency,side
S1000,ACC001,AAPL,100,10530.02,2024-01-05,USD,BUY
S1001,ACC002,MSFT,50,,2024-01-05T00:00:00Z,USD,
`

func TestParseActualCSV(t *testing.T) {
	settlements, err := ParseActualCSV([]byte(actualCSV), "actuals.csv")
	require.NoError(t, err)
	require.Len(t, settlements, 2)

	a := settlements[0]
	assert.Equal(t, "S1000", a.ID)
	assert.Equal(t, "100", a.Quantity.String())
	assert.Equal(t, "10530.02", a.CashAmount.String())
	assert.Equal(t, domain.SideBuy, a.Side)

	a = settlements[1]
	assert.Nil(t, a.CashAmount)
	assert.Empty(t, a.Side, "side is optional on the actual side")
	assert.Equal(t, "2024-01-05", a.SettlementDate, "RFC3339 dates normalize to YYYY-MM-DD")
}

func TestParseActualCSVAlternateHeaderNames(t *testing.T) {
	body := "Trade_Id,Account,Instrument,Quantity,Settlement_Date\nS1,A,AAPL,100,2024-01-05\n"
	settlements, err := ParseActualCSV([]byte(body), "alt.csv")
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, "S1", settlements[0].ID)
}
