package market

import (
	"errors"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var ErrEmptySeries = errors.New("price series is empty")

type PricePoint struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// PriceSeries is kept in the order the API returned it.
type PriceSeries []PricePoint

type Metrics struct {
	Latest decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
}

// Metrics returns the last sample's price and the series extremes.
func (s PriceSeries) Metrics() (Metrics, error) {
	if len(s) == 0 {
		return Metrics{}, ErrEmptySeries
	}

	m := Metrics{
		Latest: s[len(s)-1].Price,
		High:   s[0].Price,
		Low:    s[0].Price,
	}
	for _, p := range s[1:] {
		if p.Price.GreaterThan(m.High) {
			m.High = p.Price
		}
		if p.Price.LessThan(m.Low) {
			m.Low = p.Price
		}
	}
	return m, nil
}

// FormatUSD renders amount as "$1,234.56".
func FormatUSD(amount decimal.Decimal) string {
	cur := money.GetCurrency(money.USD)
	cents := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(cents.IntPart(), money.USD).Display()
}
