// Package session logs the user in and out and reacts to authorization
// failures on authenticated calls. It holds no session object of its own;
// "logged out" is inferred from the status codes the wrapped calls return.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"pocketbank-cli/internal/client"

	"github.com/charmbracelet/log"
)

var ErrUnauthorized = errors.New("not authenticated")

// Guard wraps calls whose 401/403 answers should send the user back to login.
type Guard struct {
	onUnauthorized func()
	log            *log.Logger
}

// NewGuard builds a Guard. onUnauthorized is the redirect-to-login signal and
// may be nil.
func NewGuard(onUnauthorized func(), logger *log.Logger) *Guard {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "session"})
	}
	return &Guard{onUnauthorized: onUnauthorized, log: logger}
}

// Do runs call. A 401 or 403 fires the redirect signal and comes back
// wrapping ErrUnauthorized; every other result is returned untouched.
func (g *Guard) Do(ctx context.Context, call func(context.Context) error) error {
	err := call(ctx)
	if err == nil || !IsAuthFailure(err) {
		return err
	}

	g.log.Warn("session rejected, redirecting to login", "status", client.StatusCode(err))
	if g.onUnauthorized != nil {
		g.onUnauthorized()
	}
	return fmt.Errorf("%w: %w", ErrUnauthorized, err)
}

func IsAuthFailure(err error) bool {
	switch client.StatusCode(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return false
}
