package marketplace

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// DefaultTaxRate is applied by ComputeOrderTotals when the caller has no
// configured rate.
var DefaultTaxRate = decimal.RequireFromString("0.10")

// DefaultCurrencySymbol prefixes formatted amounts.
const DefaultCurrencySymbol = "$"

// NormalizePrice converts any price representation to a canonical decimal.
// Numeric inputs pass through unchanged, including zero and negatives.
// Strings are stripped down to digits, the decimal point and a minus sign
// ("$14.99", "฿299", " 12.50 ") and parsed. Anything unparseable degrades to
// zero so that rendering a price can never fail; posting paths that must
// reject bad input use NormalizePriceStrict instead.
func NormalizePrice(v any) decimal.Decimal {
	d, err := NormalizePriceStrict(v)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// NormalizePriceStrict is NormalizePrice without the fallback-to-zero: a
// string that does not contain a parseable amount is reported as an error so
// data-entry validation can catch it.
func NormalizePriceStrict(v any) (decimal.Decimal, error) {
	switch p := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("price is empty")
	case decimal.Decimal:
		return p, nil
	case string:
		stripped := stripPrice(p)
		if stripped == "" {
			return decimal.Zero, fmt.Errorf("price %q has no numeric content", p)
		}
		d, err := decimal.NewFromString(stripped)
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %q is not a number", p)
		}
		return d, nil
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %v is not numeric", v)
		}
		return decimal.NewFromFloat(f), nil
	}
}

// stripPrice drops every rune that is not a digit, a decimal point or a
// leading minus sign.
func stripPrice(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeQuantity coerces a quantity to a non-negative integer. Unparseable
// values and negatives become zero, which zeroes that line's contribution to
// a total rather than failing the whole computation.
func NormalizeQuantity(v any) int {
	n, err := cast.ToIntE(v)
	if err != nil {
		f, ferr := cast.ToFloat64E(v)
		if ferr != nil {
			return 0
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}

// FormatPrice renders any price representation as symbol plus the amount
// fixed to two decimals, half-up. Empty symbol means DefaultCurrencySymbol.
// No thousands separators.
func FormatPrice(v any, symbol string) string {
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	return symbol + NormalizePrice(v).StringFixed(2)
}

// LineItem is one priced row fed into ComputeOrderTotals. Price and Quantity
// deliberately take any representation; normalization happens inside.
type LineItem struct {
	Price    any
	Quantity any
}

// OrderTotals is the derived money summary for a set of line items.
type OrderTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`

	FormattedSubtotal string `json:"formattedSubtotal"`
	FormattedTax      string `json:"formattedTax"`
	FormattedTotal    string `json:"formattedTotal"`
}

// ComputeOrderTotals derives subtotal, tax and total for the given lines.
// A nil or empty set of lines yields all zeros. Tax is subtotal * taxRate;
// pass DefaultTaxRate for the standard 10%.
func ComputeOrderTotals(lines []LineItem, taxRate decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	for _, line := range lines {
		price := NormalizePrice(line.Price)
		qty := decimal.NewFromInt(int64(NormalizeQuantity(line.Quantity)))
		subtotal = subtotal.Add(price.Mul(qty))
	}
	tax := subtotal.Mul(taxRate)
	total := subtotal.Add(tax)

	return OrderTotals{
		Subtotal:          subtotal,
		Tax:               tax,
		Total:             total,
		FormattedSubtotal: FormatPrice(subtotal, ""),
		FormattedTax:      FormatPrice(tax, ""),
		FormattedTotal:    FormatPrice(total, ""),
	}
}
