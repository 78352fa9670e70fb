// Package transfer validates and submits funds movements and keeps the
// transaction history in step with the ledger afterwards.
//
// The orchestrator never reports outcomes to the notification queue. The
// server flashes its own account of each operation, which arrives through
// polling.
package transfer

import (
	"context"
	"errors"
	"os"

	"pocketbank-cli/internal/client"
	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/history"
	"pocketbank-cli/internal/session"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	transferFallback = "Transfer failed"
	transferOffline  = "A network error occurred. Please try again."
	depositFallback  = "Deposit failed"
	depositOffline   = "Failed to connect to the server. Please try again."
)

type Submitter interface {
	SubmitTransfer(ctx context.Context, req domain.TransferRequest, requestID string) error
	SubmitDeposit(ctx context.Context, amount decimal.Decimal, requestID string) error
}

type Refresher interface {
	Refresh(ctx context.Context) (history.Snapshot, error)
}

type Status int

const (
	Accepted Status = iota
	Rejected
	Invalid
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Invalid:
		return "invalid"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Outcome is the immediate result of one submit action. Message is set for
// Rejected, Violations for Invalid. RequestID is empty when nothing was sent.
type Outcome struct {
	Status     Status
	Message    string
	Violations domain.Violations
	RequestID  string
}

type Option func(*Orchestrator)

func WithTransferCeiling(d decimal.Decimal) Option {
	return func(o *Orchestrator) { o.maxTransfer = d }
}

func WithDepositCeiling(d decimal.Decimal) Option {
	return func(o *Orchestrator) { o.maxDeposit = d }
}

func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func WithRequestIDs(next func() string) Option {
	return func(o *Orchestrator) { o.newID = next }
}

type Orchestrator struct {
	submitter   Submitter
	history     Refresher
	guard       *session.Guard
	maxTransfer decimal.Decimal
	maxDeposit  decimal.Decimal
	newID       func() string
	log         *log.Logger
}

// New builds an Orchestrator. history and guard may be nil.
func New(submitter Submitter, hist Refresher, guard *session.Guard, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		submitter:   submitter,
		history:     hist,
		guard:       guard,
		maxTransfer: DefaultCeiling,
		maxDeposit:  DefaultCeiling,
		newID:       uuid.NewString,
		log:         log.NewWithOptions(os.Stderr, log.Options{Prefix: "transfer"}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Validate(f Form) domain.Violations {
	_, v := validateTransfer(f, o.maxTransfer)
	return v
}

func (o *Orchestrator) ValidateDeposit(amount string) domain.Violations {
	_, v := validateDeposit(amount, o.maxDeposit)
	return v
}

// Submit sends one transfer when the form is valid. On Accepted the caller
// clears the form; the history refresh has already been triggered. An
// authorization failure on this endpoint is reported inline like any other
// rejection and does not go through the session guard.
func (o *Orchestrator) Submit(ctx context.Context, f Form) Outcome {
	req, v := validateTransfer(f, o.maxTransfer)
	if !v.OK() {
		return Outcome{Status: Invalid, Violations: v}
	}

	id := o.newID()
	if err := o.submitter.SubmitTransfer(ctx, req, id); err != nil {
		o.log.Warn("transfer rejected", "request_id", id, "err", err)
		return rejection(id, err, transferFallback, transferOffline)
	}

	o.log.Info("transfer accepted", "request_id", id, "amount", req.Amount.StringFixed(2))
	o.refresh(ctx)
	return Outcome{Status: Accepted, RequestID: id}
}

// Deposit sends one deposit when the amount is valid. Unlike transfers, a 401
// here goes through the session guard.
func (o *Orchestrator) Deposit(ctx context.Context, raw string) Outcome {
	amount, v := validateDeposit(raw, o.maxDeposit)
	if !v.OK() {
		return Outcome{Status: Invalid, Violations: v}
	}

	id := o.newID()
	call := func(ctx context.Context) error {
		return o.submitter.SubmitDeposit(ctx, amount, id)
	}
	var err error
	if o.guard != nil {
		err = o.guard.Do(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if errors.Is(err, session.ErrUnauthorized) {
			return Outcome{Status: Unauthenticated, RequestID: id}
		}
		o.log.Warn("deposit rejected", "request_id", id, "err", err)
		return rejection(id, err, depositFallback, depositOffline)
	}

	o.log.Info("deposit accepted", "request_id", id, "amount", amount.StringFixed(2))
	o.refresh(ctx)
	return Outcome{Status: Accepted, RequestID: id}
}

func (o *Orchestrator) refresh(ctx context.Context) {
	if o.history == nil {
		return
	}
	if _, err := o.history.Refresh(ctx); err != nil && !errors.Is(err, history.ErrSuperseded) {
		o.log.Warn("history refresh after submit failed", "err", err)
	}
}

func rejection(id string, err error, fallback, offline string) Outcome {
	msg := fallback
	var se *client.StatusError
	switch {
	case errors.Is(err, client.ErrTransport):
		msg = offline
	case errors.As(err, &se) && se.Message != "":
		msg = se.Message
	}
	return Outcome{Status: Rejected, Message: msg, RequestID: id}
}
