package domain

import "github.com/shopspring/decimal"

// Dashboard, BalanceStats and Profile are read-only snapshots. None of them
// stays valid after a deposit or transfer until fetched again.
type Dashboard struct {
	Name    string
	Balance decimal.Decimal
}

type BalanceStats struct {
	Balance         decimal.Decimal
	TotalDeposit    decimal.Decimal
	TotalWithdrawal decimal.Decimal
	SpentPercent    decimal.Decimal
	SavedPercent    decimal.Decimal
}

type Profile struct {
	Name          string
	Email         string
	AccountNumber string
	Balance       decimal.Decimal
	PictureURL    string
}

type Registration struct {
	Name           string
	AccountNumber  string
	TransactionPIN string
	Email          string
	Password       string
}
