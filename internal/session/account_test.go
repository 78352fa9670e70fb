package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"pocketbank-cli/internal/client"
	"pocketbank-cli/internal/domain"

	"github.com/charmbracelet/log"
)

// mockBackend answers with the configured func fields; nil funcs succeed.
type mockBackend struct {
	login    func(email, password string) error
	register func(r domain.Registration) error
	status   func() (bool, error)
	remove   func() error
	calls    int
	lastReg  domain.Registration
}

func (m *mockBackend) Login(_ context.Context, email, password string) error {
	m.calls++
	if m.login != nil {
		return m.login(email, password)
	}
	return nil
}

func (m *mockBackend) Logout(context.Context) error {
	m.calls++
	return nil
}

func (m *mockBackend) Register(_ context.Context, r domain.Registration) error {
	m.calls++
	m.lastReg = r
	if m.register != nil {
		return m.register(r)
	}
	return nil
}

func (m *mockBackend) SessionStatus(context.Context) (bool, error) {
	m.calls++
	if m.status != nil {
		return m.status()
	}
	return true, nil
}

func (m *mockBackend) DeleteAccount(context.Context) error {
	m.calls++
	if m.remove != nil {
		return m.remove()
	}
	return nil
}

func TestLoginValidation(t *testing.T) {
	b := &mockBackend{}
	m := NewManager(b, nil, log.New(io.Discard))

	v, err := m.Login(context.Background(), "not-an-email", "")
	if err != nil {
		t.Fatal(err)
	}
	if v[FieldEmail] != "Please enter a valid email address format." || v[FieldPassword] != "Password cannot be empty." {
		t.Fatalf("violations=%v", v)
	}
	if b.calls != 0 {
		t.Fatal("backend called with invalid credentials")
	}

	var gotEmail string
	b.login = func(email, _ string) error { gotEmail = email; return nil }
	v, err = m.Login(context.Background(), "  ana@bank.io ", "x")
	if err != nil || !v.OK() {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if gotEmail != "ana@bank.io" {
		t.Fatalf("email not trimmed: %q", gotEmail)
	}
}

func TestLoginBackendError(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(&mockBackend{login: func(string, string) error { return boom }}, nil, log.New(io.Discard))
	if _, err := m.Login(context.Background(), "ana@bank.io", "pw"); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestRegistrationValidation(t *testing.T) {
	v := ValidateRegistration(domain.Registration{
		Name:           "Al",
		AccountNumber:  "123",
		TransactionPIN: "12a4",
		Email:          "ana@bank",
		Password:       "password1",
	})
	want := map[string]string{
		FieldName:     "Name must be at least 3 characters.",
		FieldAccount:  "Account Number must be exactly 10 digits.",
		FieldPIN:      "Transaction PIN must be exactly 4 digits.",
		FieldEmail:    "Enter a valid email address.",
		FieldPassword: "Password must have 8+ chars with uppercase, lowercase, and a number.",
	}
	if len(v) != len(want) {
		t.Fatalf("violations=%v", v)
	}
	for k, msg := range want {
		if v[k] != msg {
			t.Errorf("%s: got %q want %q", k, v[k], msg)
		}
	}
}

func TestStrongPassword(t *testing.T) {
	for pw, want := range map[string]bool{
		"Passw0rd":  true,
		"Short1A":   false,
		"alllower1": false,
		"ALLUPPER1": false,
		"NoDigitsX": false,
	} {
		if got := strongPassword(pw); got != want {
			t.Errorf("strongPassword(%q)=%v want %v", pw, got, want)
		}
	}
}

func TestRegisterSendsTrimmedFields(t *testing.T) {
	b := &mockBackend{}
	m := NewManager(b, nil, log.New(io.Discard))
	v, err := m.Register(context.Background(), domain.Registration{
		Name:           " Ana Lima ",
		AccountNumber:  " 1234567890",
		TransactionPIN: "4321 ",
		Email:          "ana@bank.io",
		Password:       "Passw0rd",
	})
	if err != nil || !v.OK() {
		t.Fatalf("v=%v err=%v", v, err)
	}
	if b.lastReg.Name != "Ana Lima" || b.lastReg.AccountNumber != "1234567890" || b.lastReg.TransactionPIN != "4321" {
		t.Fatalf("registration=%+v", b.lastReg)
	}
}

func TestProbe(t *testing.T) {
	m := NewManager(&mockBackend{status: func() (bool, error) { return false, nil }}, nil, log.New(io.Discard))
	if ok, err := m.Probe(context.Background()); ok || err != nil {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	boom := errors.New("offline")
	m = NewManager(&mockBackend{status: func() (bool, error) { return false, boom }}, nil, log.New(io.Discard))
	if _, err := m.Probe(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestDeleteAccountGoesThroughGuard(t *testing.T) {
	redirects := 0
	g := NewGuard(func() { redirects++ }, log.New(io.Discard))
	b := &mockBackend{}
	m := NewManager(b, g, log.New(io.Discard))

	if err := m.DeleteAccount(context.Background()); err != nil {
		t.Fatalf("err=%v", err)
	}
	if b.calls != 1 || redirects != 0 {
		t.Fatalf("calls=%d redirects=%d", b.calls, redirects)
	}

	b.remove = func() error { return &client.StatusError{Code: http.StatusUnauthorized} }
	if err := m.DeleteAccount(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err=%v", err)
	}
	if redirects != 1 {
		t.Fatalf("redirects=%d want 1", redirects)
	}

	b.remove = func() error { return &client.StatusError{Code: http.StatusNotFound} }
	if err := m.DeleteAccount(context.Background()); errors.Is(err, ErrUnauthorized) || client.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("err=%v", err)
	}
}
