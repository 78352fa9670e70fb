package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	for in, want := range map[string]string{
		"0":         "$0.00",
		"50":        "$50.00",
		"1250.5":    "$1,250.50",
		"100000":    "$100,000.00",
		"-12.345":   "-$12.35",
		"999999.99": "$999,999.99",
		"999.999":   "$1,000.00",
		"-0.001":    "$0.00",

		"12345678901234567.89": "$12,345,678,901,234,567.89",
		"90071992547409.93":    "$90,071,992,547,409.93",
	} {
		if got := FormatMoney(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatMoney(%s)=%q want %q", in, got, want)
		}
	}
	if got := FormatWholeMoney(decimal.NewFromInt(100000)); got != "$100,000" {
		t.Errorf("FormatWholeMoney=%q", got)
	}
}

func TestViolations(t *testing.T) {
	var none Violations
	if !none.OK() {
		t.Fatal("nil violations should be OK")
	}
	v := Violations{"pin": "bad pin", "amount": "bad amount"}
	if v.OK() {
		t.Fatal("expected not OK")
	}
	if got := v.String(); got != "amount: bad amount; pin: bad pin" {
		t.Fatalf("String()=%q", got)
	}
}
