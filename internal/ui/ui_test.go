package ui

import (
	"strings"
	"testing"

	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/notify"

	"github.com/shopspring/decimal"
)

func TestNotificationLabels(t *testing.T) {
	for sev, label := range map[domain.Severity]string{
		domain.SeveritySuccess: "[OK]",
		domain.SeverityError:   "[ERROR]",
		domain.SeverityWarning: "[WARN]",
		domain.SeverityInfo:    "[INFO]",
	} {
		got := Notification(notify.Notification{Message: domain.NotificationMessage{Severity: sev, Text: "hello"}})
		if !strings.Contains(got, label) || !strings.HasSuffix(got, " hello") {
			t.Errorf("%s: %q", sev, got)
		}
	}
}

func TestSignedAmount(t *testing.T) {
	amt := decimal.RequireFromString("50")
	cases := map[domain.Direction]string{
		domain.Out:  "-$50.00",
		domain.In:   "+$50.00",
		domain.Self: "$50.00",
	}
	for dir, want := range cases {
		r := domain.Row{Transaction: domain.Transaction{Amount: amt}, Direction: dir}
		if got := SignedAmount(r); got != want {
			t.Errorf("%s: got %q want %q", dir, got, want)
		}
	}
}

func TestHistory(t *testing.T) {
	if got := History(nil); got != "No transactions yet." {
		t.Fatalf("empty history=%q", got)
	}

	rows := []domain.Row{
		domain.Classify(domain.Transaction{ID: 1, OwnerAccount: "1111111111", CounterpartyAccount: "2222222222",
			Kind: domain.KindTransfer, Amount: decimal.RequireFromString("1250.5"), OccurredAt: "2024-05-01"}, "1111111111"),
		domain.Classify(domain.Transaction{ID: 2, OwnerAccount: "1111111111",
			Kind: domain.KindDeposit, Amount: decimal.NewFromInt(10), OccurredAt: "2024-05-02"}, "1111111111"),
	}
	out := History(rows)
	for _, want := range []string{"DETAILS", "Sent to 2222222222", "-$1,250.50", "Deposit", "2024-05-02"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}
}

func TestAccountViews(t *testing.T) {
	out := Balance(&domain.BalanceStats{
		Balance:      decimal.NewFromInt(900),
		TotalDeposit: decimal.NewFromInt(1000),
		SpentPercent: decimal.NewFromInt(10),
		SavedPercent: decimal.NewFromInt(90),
	})
	for _, want := range []string{"$900.00", "$1,000.00", "10.0%", "90.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("balance missing %q:\n%s", want, out)
		}
	}

	out = Profile(&domain.Profile{Name: "Ana", Email: "ana@bank.io", AccountNumber: "1111111111"})
	if strings.Contains(out, "Picture") || !strings.Contains(out, "1111111111") {
		t.Errorf("profile:\n%s", out)
	}
}

func TestViolationsOrdered(t *testing.T) {
	out := Violations(domain.Violations{"pin": "bad pin", "amount": "bad amount"})
	if strings.Index(out, "bad amount") > strings.Index(out, "bad pin") {
		t.Fatalf("not ordered:\n%s", out)
	}
}
