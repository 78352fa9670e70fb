package parser

import (
	"encoding/json"
	"fmt"

	"pocketbank-cli/internal/domain"

	"github.com/shopspring/decimal"
)

type wireDashboard struct {
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type wireBalance struct {
	Balance         decimal.Decimal `json:"balance"`
	TotalDeposit    decimal.Decimal `json:"total_deposit"`
	TotalWithdrawal decimal.Decimal `json:"total_withdrawal"`
	SpentPercent    decimal.Decimal `json:"spent_percent"`
	SavedPercent    decimal.Decimal `json:"saved_percent"`
}

type wireProfile struct {
	User struct {
		Name          string          `json:"name"`
		Email         string          `json:"email"`
		AccountNumber string          `json:"account_number"`
		Balance       decimal.Decimal `json:"balance"`
		PictureURL    string          `json:"profile_pic_url"`
	} `json:"user"`
}

func ParseDashboard(body []byte) (*domain.Dashboard, error) {
	var w wireDashboard
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to parse dashboard JSON: %w", err)
	}
	return &domain.Dashboard{Name: w.Name, Balance: w.Balance}, nil
}

func ParseBalance(body []byte) (*domain.BalanceStats, error) {
	var w wireBalance
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to parse balance JSON: %w", err)
	}
	return &domain.BalanceStats{
		Balance:         w.Balance,
		TotalDeposit:    w.TotalDeposit,
		TotalWithdrawal: w.TotalWithdrawal,
		SpentPercent:    w.SpentPercent,
		SavedPercent:    w.SavedPercent,
	}, nil
}

func ParseProfile(body []byte) (*domain.Profile, error) {
	var w wireProfile
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return &domain.Profile{
		Name:          w.User.Name,
		Email:         w.User.Email,
		AccountNumber: w.User.AccountNumber,
		Balance:       w.User.Balance,
		PictureURL:    w.User.PictureURL,
	}, nil
}

// ParseMessage pulls the optional "message" field out of an error body. Bodies
// that are empty or not JSON yield "".
func ParseMessage(body []byte) string {
	var w struct {
		Message string `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &w) != nil {
		return ""
	}
	return w.Message
}
