package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// DecimalFormatError reports a numeric field that could not be parsed as an
// exact decimal literal.
type DecimalFormatError struct {
	Value string
	Err   error
}

func (e *DecimalFormatError) Error() string {
	return fmt.Sprintf("invalid decimal %q: %v", e.Value, e.Err)
}

func (e *DecimalFormatError) Unwrap() error { return e.Err }

// Amount is an exact arbitrary-precision decimal. It unmarshals from a plain
// JSON number, a string, or a {"$numberDecimal": "..."} wrapper object
// (extended JSON exported from the previous break-tracking system), and always
// marshals back to a string so no value ever round-trips through binary
// floating point.
type Amount struct {
	dec decimal.Decimal
}

// NewAmount wraps a decimal value in an Amount.
func NewAmount(d decimal.Decimal) Amount { return Amount{dec: d} }

// ParseAmount parses a decimal literal. The scale of the literal is kept, so
// "10.00" renders back as "10.00".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, &DecimalFormatError{Value: s, Err: err}
	}
	return Amount{dec: d}, nil
}

// Decimal returns the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.dec }

// Equal reports scale-independent equality: 10 equals 10.00.
func (a Amount) Equal(b Amount) bool { return a.dec.Equal(b.dec) }

// Sub returns a minus b, preserving the wider scale of the operands.
func (a Amount) Sub(b Amount) Amount { return Amount{dec: a.dec.Sub(b.dec)} }

// Abs returns the absolute value.
func (a Amount) Abs() Amount { return Amount{dec: a.dec.Abs()} }

// GreaterThan reports a > b.
func (a Amount) GreaterThan(b Amount) bool { return a.dec.GreaterThan(b.dec) }

// String renders the canonical decimal form used in output documents and
// fingerprints. The scale of the value is kept ("10000.00" does not collapse
// to "10000"), matching the renderings the previous matcher produced.
func (a Amount) String() string {
	if a.dec.Exponent() < 0 {
		return a.dec.StringFixed(-a.dec.Exponent())
	}
	return a.dec.String()
}

type numberDecimal struct {
	NumberDecimal *string `json:"$numberDecimal"`
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapper numberDecimal
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return &DecimalFormatError{Value: raw, Err: err}
		}
		if wrapper.NumberDecimal == nil {
			return &DecimalFormatError{Value: raw, Err: fmt.Errorf("object is not a $numberDecimal wrapper")}
		}
		raw = *wrapper.NumberDecimal
	} else if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return &DecimalFormatError{Value: raw, Err: err}
		}
		raw = s
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return &DecimalFormatError{Value: raw, Err: err}
	}
	a.dec = d
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}
