package domain

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// FormatMoney renders d as dollars with thousands separators and two
// decimals, e.g. "$1,250.50".
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	return sign + "$" + humanize.Comma(d.IntPart()) + fixed[strings.IndexByte(fixed, '.'):]
}

// FormatWholeMoney renders the integer part of d, e.g. "$100,000".
func FormatWholeMoney(d decimal.Decimal) string {
	return "$" + humanize.Comma(d.IntPart())
}
