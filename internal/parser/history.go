package parser

import (
	"encoding/json"
	"fmt"

	"pocketbank-cli/internal/domain"

	"github.com/shopspring/decimal"
)

type WireTransaction struct {
	AccountNumber    string          `json:"account_number"`
	RecipientAccount *string         `json:"recipient_account"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
	Date             string          `json:"date"`
	ID               int64           `json:"id"`
}

type HistoryResult struct {
	Success      bool              `json:"success"`
	Transactions []WireTransaction `json:"transactions"`
	MyAccount    string            `json:"my_account"`
}

// ParseHistory decodes a /api/transactions listing. Row order is preserved.
func ParseHistory(body []byte) (*HistoryResult, []domain.Transaction, error) {
	var result HistoryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, fmt.Errorf("failed to parse history JSON: %w", err)
	}

	transactions := make([]domain.Transaction, 0, len(result.Transactions))
	for _, wt := range result.Transactions {
		tx, err := toTransaction(wt)
		if err != nil {
			return nil, nil, err
		}
		transactions = append(transactions, tx)
	}

	return &result, transactions, nil
}

func toTransaction(wt WireTransaction) (domain.Transaction, error) {
	if !wt.Amount.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("transaction %d: amount must be positive, got %s", wt.ID, wt.Amount)
	}

	tx := domain.Transaction{
		ID:           wt.ID,
		OwnerAccount: wt.AccountNumber,
		Amount:       wt.Amount,
		OccurredAt:   wt.Date,
	}

	switch domain.Kind(wt.Type) {
	case domain.KindDeposit:
		tx.Kind = domain.KindDeposit
	case domain.KindTransfer:
		tx.Kind = domain.KindTransfer
		if wt.RecipientAccount == nil || *wt.RecipientAccount == "" {
			return domain.Transaction{}, fmt.Errorf("transaction %d: transfer without recipient", wt.ID)
		}
		tx.CounterpartyAccount = *wt.RecipientAccount
	default:
		return domain.Transaction{}, fmt.Errorf("transaction %d: unknown type %q", wt.ID, wt.Type)
	}

	return tx, nil
}
