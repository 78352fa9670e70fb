package session

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"pocketbank-cli/internal/domain"

	"github.com/charmbracelet/log"
)

const (
	FieldName     = "name"
	FieldAccount  = "account_number"
	FieldPIN      = "transaction_pin"
	FieldEmail    = "email"
	FieldPassword = "password"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	accountPattern = regexp.MustCompile(`^\d{10}$`)
	pinPattern     = regexp.MustCompile(`^\d{4}$`)
)

// Backend is the subset of the bank API that manages the session cookie.
type Backend interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Register(ctx context.Context, r domain.Registration) error
	SessionStatus(ctx context.Context) (bool, error)
	DeleteAccount(ctx context.Context) error
}

// Manager validates credentials locally before handing them to the backend.
// The server flashes its own success or failure text, so Manager only
// reports whether the call went through.
type Manager struct {
	backend Backend
	guard   *Guard
	log     *log.Logger
}

// NewManager builds a Manager. guard wraps the calls that need a live session
// and may be nil.
func NewManager(backend Backend, guard *Guard, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "session"})
	}
	return &Manager{backend: backend, guard: guard, log: logger}
}

func ValidateLogin(email, password string) domain.Violations {
	v := domain.Violations{}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		v[FieldEmail] = "Please enter a valid email address format."
	}
	if password == "" {
		v[FieldPassword] = "Password cannot be empty."
	}
	return v
}

func ValidateRegistration(r domain.Registration) domain.Violations {
	v := domain.Violations{}
	if len([]rune(strings.TrimSpace(r.Name))) < 3 {
		v[FieldName] = "Name must be at least 3 characters."
	}
	if !accountPattern.MatchString(strings.TrimSpace(r.AccountNumber)) {
		v[FieldAccount] = "Account Number must be exactly 10 digits."
	}
	if !pinPattern.MatchString(strings.TrimSpace(r.TransactionPIN)) {
		v[FieldPIN] = "Transaction PIN must be exactly 4 digits."
	}
	if !emailPattern.MatchString(strings.TrimSpace(r.Email)) {
		v[FieldEmail] = "Enter a valid email address."
	}
	if !strongPassword(r.Password) {
		v[FieldPassword] = "Password must have 8+ chars with uppercase, lowercase, and a number."
	}
	return v
}

// strongPassword wants at least 8 characters with an upper case letter, a
// lower case letter and a digit.
func strongPassword(p string) bool {
	if len([]rune(p)) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Login returns violations without calling the backend when the input is
// malformed.
func (m *Manager) Login(ctx context.Context, email, password string) (domain.Violations, error) {
	if v := ValidateLogin(email, password); !v.OK() {
		return v, nil
	}
	if err := m.backend.Login(ctx, strings.TrimSpace(email), password); err != nil {
		return nil, err
	}
	return domain.Violations{}, nil
}

func (m *Manager) Register(ctx context.Context, r domain.Registration) (domain.Violations, error) {
	if v := ValidateRegistration(r); !v.OK() {
		return v, nil
	}
	r.Name = strings.TrimSpace(r.Name)
	r.AccountNumber = strings.TrimSpace(r.AccountNumber)
	r.TransactionPIN = strings.TrimSpace(r.TransactionPIN)
	r.Email = strings.TrimSpace(r.Email)
	if err := m.backend.Register(ctx, r); err != nil {
		return nil, err
	}
	return domain.Violations{}, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.backend.Logout(ctx); err != nil {
		m.log.Warn("logout failed", "err", err)
		return err
	}
	return nil
}

// DeleteAccount removes the account through the guard, so a stale session
// comes back as ErrUnauthorized. The server ends the session on success.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	var err error
	if m.guard != nil {
		err = m.guard.Do(ctx, m.backend.DeleteAccount)
	} else {
		err = m.backend.DeleteAccount(ctx)
	}
	if err != nil {
		m.log.Warn("account deletion failed", "err", err)
		return err
	}
	m.log.Info("account deleted")
	return nil
}

// Probe reports whether the server still recognises the session cookie.
func (m *Manager) Probe(ctx context.Context) (bool, error) {
	ok, err := m.backend.SessionStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	m.log.Debug("session probed", "active", ok)
	return ok, nil
}
