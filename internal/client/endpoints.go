package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/parser"

	"github.com/shopspring/decimal"
)

type transferPayload struct {
	RecipientAccount string          `json:"recipient_account"`
	Amount           decimal.Decimal `json:"amount"`
	TransactionPIN   string          `json:"transaction_pin"`
}

type depositPayload struct {
	Amount decimal.Decimal `json:"amount"`
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerPayload struct {
	Name           string `json:"name"`
	AccountNumber  string `json:"account_number"`
	TransactionPIN string `json:"transaction_pin"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// FetchNotifications drains the server's pending flash messages.
func (c *Client) FetchNotifications(ctx context.Context) ([]domain.NotificationMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/flash", nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	msgs, err := parser.ParseFlash(body)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		c.log.Debug("fetched notifications", "count", len(msgs))
	}
	return msgs, nil
}

// RecipientName looks up the display name for a 10-digit account number.
// A 404 comes back as a *StatusError.
func (c *Client) RecipientName(ctx context.Context, accountNumber string) (string, error) {
	q := url.Values{}
	q.Set("account_number", accountNumber)

	body, err := c.do(ctx, http.MethodGet, "/api/recipient_name", q, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to resolve recipient: %w", err)
	}

	var resp struct {
		Name string `json:"name"`
	}
	if err := decode(body, &resp); err != nil {
		return "", err
	}
	return resp.Name, nil
}

// ListTransactions returns the caller's account number and full history.
func (c *Client) ListTransactions(ctx context.Context) (string, []domain.Transaction, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/transactions", nil, nil, "")
	if err != nil {
		return "", nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	result, txs, err := parser.ParseHistory(body)
	if err != nil {
		return "", nil, err
	}

	c.log.Info("successfully fetched transactions", "count", len(txs))
	return result.MyAccount, txs, nil
}

func (c *Client) SubmitTransfer(ctx context.Context, req domain.TransferRequest, requestID string) error {
	payload := transferPayload{
		RecipientAccount: req.RecipientAccount,
		Amount:           req.Amount,
		TransactionPIN:   req.PIN,
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/transactions", nil, payload, requestID); err != nil {
		return fmt.Errorf("failed to submit transfer: %w", err)
	}

	c.log.Info("transfer accepted", "request_id", requestID, "recipient", req.RecipientAccount)
	return nil
}

func (c *Client) SubmitDeposit(ctx context.Context, amount decimal.Decimal, requestID string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/deposit", nil, depositPayload{Amount: amount}, requestID); err != nil {
		return fmt.Errorf("failed to submit deposit: %w", err)
	}

	c.log.Info("deposit accepted", "request_id", requestID)
	return nil
}

// SessionStatus probes the session. Any non-2xx answer means not logged in;
// only transport failures are returned as errors.
func (c *Client) SessionStatus(ctx context.Context) (bool, error) {
	_, err := c.do(ctx, http.MethodGet, "/api/session_status", nil, nil, "")
	if err == nil {
		return true, nil
	}
	if StatusCode(err) != 0 {
		return false, nil
	}
	return false, fmt.Errorf("failed to probe session: %w", err)
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/login", nil, loginPayload{Email: email, Password: password}, ""); err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	c.log.Info("logged in", "email", email)
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil, ""); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, r domain.Registration) error {
	payload := registerPayload{
		Name:           r.Name,
		AccountNumber:  r.AccountNumber,
		TransactionPIN: r.TransactionPIN,
		Email:          r.Email,
		Password:       r.Password,
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/register", nil, payload, ""); err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	c.log.Info("registered", "email", r.Email, "account", r.AccountNumber)
	return nil
}

// DeleteAccount permanently removes the logged-in user and their transactions.
// The server ends the session on success.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, "/api/delete_account", nil, nil, ""); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	c.log.Info("account deleted")
	return nil
}

func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}
	return parser.ParseDashboard(body)
}

func (c *Client) Balance(ctx context.Context) (*domain.BalanceStats, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/balance", nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return parser.ParseBalance(body)
}

func (c *Client) Profile(ctx context.Context) (*domain.Profile, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return parser.ParseProfile(body)
}
