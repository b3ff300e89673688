package order

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var ErrInvalidPricing = errors.New("invalid pricing input")

var hundred = decimal.NewFromInt(100)

type PricedLine struct {
	UnitPrice int64
	Quantity  int
}

type Totals struct {
	LineTotals []int64
	Subtotal   int64
	Tax        int64
	Total      int64
}

// Price computes line totals, subtotal, tax and total in minor units. Tax is
// subtotal * rate / 100 rounded half-to-even to the minor unit.
func Price(lines []PricedLine, taxRatePercent float64) (Totals, error) {
	if math.IsNaN(taxRatePercent) || taxRatePercent < 0 || taxRatePercent > 100 {
		return Totals{}, fmt.Errorf("%w: tax rate %v outside 0..100", ErrInvalidPricing, taxRatePercent)
	}

	totals := Totals{LineTotals: make([]int64, len(lines))}
	for i, l := range lines {
		if l.UnitPrice < 0 {
			return Totals{}, fmt.Errorf("%w: line %d has negative unit price", ErrInvalidPricing, i)
		}
		if l.Quantity < 1 {
			return Totals{}, fmt.Errorf("%w: line %d has quantity %d", ErrInvalidPricing, i, l.Quantity)
		}
		if l.UnitPrice > math.MaxInt64/int64(l.Quantity) {
			return Totals{}, fmt.Errorf("%w: line %d overflows", ErrInvalidPricing, i)
		}
		lineTotal := l.UnitPrice * int64(l.Quantity)
		if totals.Subtotal > math.MaxInt64-lineTotal {
			return Totals{}, fmt.Errorf("%w: subtotal overflows", ErrInvalidPricing)
		}
		totals.LineTotals[i] = lineTotal
		totals.Subtotal += lineTotal
	}

	tax := decimal.NewFromInt(totals.Subtotal).
		Mul(decimal.NewFromFloat(taxRatePercent)).
		Div(hundred).
		RoundBank(0)
	if tax.GreaterThan(decimal.NewFromInt(math.MaxInt64-totals.Subtotal)) {
		return Totals{}, fmt.Errorf("%w: tax overflows", ErrInvalidPricing)
	}

	totals.Tax = tax.IntPart()
	totals.Total = totals.Subtotal + totals.Tax
	return totals, nil
}

// FormatAmount renders minor units as a two-decimal major amount.
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
