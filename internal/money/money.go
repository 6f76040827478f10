package money

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in integer minor units. On the wire it is a
// decimal number in major units of the wire currency.
type Amount int64

var wireScale atomic.Int32

func init() {
	wireScale.Store(2)
}

// SetWireCurrency selects the scale used to encode and decode amounts in JSON.
func SetWireCurrency(c Currency) {
	wireScale.Store(c.Scale)
}

func wireCurrency() Currency {
	return Currency{Scale: wireScale.Load()}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(wireCurrency().Decimal(a).String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string in major units.
// Values finer than the currency scale are rejected.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	v, err := wireCurrency().Parse(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Value stores the amount as a plain integer column.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

func (a Amount) Add(other Amount) Amount {
	return a + other
}

// Mul multiplies a unit price by a quantity.
func (a Amount) Mul(quantity int) Amount {
	return a * Amount(quantity)
}

func (a Amount) IsPositive() bool {
	return a > 0
}

// Currency describes how minor units map to the displayed and gateway amount.
type Currency struct {
	Code  string
	Scale int32
}

func NewCurrency(code string, scale int) Currency {
	if scale < 0 {
		scale = 0
	}
	return Currency{Code: code, Scale: int32(scale)}
}

// Decimal returns the amount in major units.
func (c Currency) Decimal(a Amount) decimal.Decimal {
	return decimal.New(int64(a), -c.Scale)
}

// Format renders an amount for notification text, e.g. "IDR 80.00".
func (c Currency) Format(a Amount) string {
	return fmt.Sprintf("%s %s", c.Code, c.Decimal(a).StringFixed(c.Scale))
}

// GatewayAmount rounds the amount half-up to whole major units.
func (c Currency) GatewayAmount(a Amount) int64 {
	return c.Decimal(a).Round(0).IntPart()
}

// Parse converts a decimal string in major units into minor units.
func (c Currency) Parse(value string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	shifted := d.Shift(c.Scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("amount %q has more than %d decimal places", value, c.Scale)
	}
	return Amount(shifted.IntPart()), nil
}
