package transfer

import (
	"regexp"
	"strings"

	"pocketbank-cli/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	FieldRecipient = "recipientAccount"
	FieldAmount    = "amount"
	FieldPIN       = "pin"
)

var (
	accountPattern = regexp.MustCompile(`^\d{10}$`)
	pinPattern     = regexp.MustCompile(`^\d{4}$`)
)

// DefaultCeiling caps a single transfer or deposit.
var DefaultCeiling = decimal.NewFromInt(100000)

// Form is the raw transfer form state.
type Form struct {
	RecipientAccount string
	Amount           string
	PIN              string
}

func (f *Form) Clear() {
	*f = Form{}
}

// validateTransfer checks every field independently so that all problems are
// reported at once.
func validateTransfer(f Form, ceiling decimal.Decimal) (domain.TransferRequest, domain.Violations) {
	v := domain.Violations{}

	account := strings.TrimSpace(f.RecipientAccount)
	switch {
	case account == "":
		v[FieldRecipient] = "Recipient Account Number is required."
	case !accountPattern.MatchString(account):
		v[FieldRecipient] = "Account Number must be exactly 10 digits."
	}

	amount, amountMsg := parseAmount(f.Amount, ceiling,
		"Transfer Amount is required.",
		"Amount must be a positive number greater than zero.",
		"Amount cannot exceed "+domain.FormatWholeMoney(ceiling)+".")
	if amountMsg != "" {
		v[FieldAmount] = amountMsg
	}

	pin := strings.TrimSpace(f.PIN)
	switch {
	case pin == "":
		v[FieldPIN] = "Transaction PIN is required."
	case !pinPattern.MatchString(pin):
		v[FieldPIN] = "Transaction PIN must be exactly 4 digits."
	}

	if !v.OK() {
		return domain.TransferRequest{}, v
	}
	return domain.TransferRequest{RecipientAccount: account, Amount: amount, PIN: pin}, v
}

func validateDeposit(raw string, ceiling decimal.Decimal) (decimal.Decimal, domain.Violations) {
	invalid := "Invalid deposit amount. Must be greater than $0.00."
	amount, msg := parseAmount(raw, ceiling, invalid, invalid,
		"Deposit amount cannot exceed "+domain.FormatWholeMoney(ceiling)+".")
	if msg != "" {
		return decimal.Zero, domain.Violations{FieldAmount: msg}
	}
	return amount, domain.Violations{}
}

// parseAmount accepts a finite decimal in (0, ceiling]. A zero ceiling means
// no upper bound.
func parseAmount(raw string, ceiling decimal.Decimal, missing, invalid, tooLarge string) (decimal.Decimal, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, missing
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, invalid
	}
	if ceiling.IsPositive() && amount.GreaterThan(ceiling) {
		return decimal.Zero, tooLarge
	}
	return amount, ""
}
