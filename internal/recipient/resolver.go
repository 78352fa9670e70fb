package recipient

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"sync"

	"pocketbank-cli/internal/client"

	"github.com/charmbracelet/log"
)

var accountPattern = regexp.MustCompile(`^\d{10}$`)

func ValidAccount(s string) bool {
	return accountPattern.MatchString(s)
}

type Lookup interface {
	RecipientName(ctx context.Context, accountNumber string) (string, error)
}

type Status int

const (
	Found Status = iota
	NotFound
	Failed
	InvalidFormat
	Superseded
)

type Result struct {
	Status  Status
	Account string
	Name    string
}

// Hint is the inline text shown under the account field. Superseded results
// have nothing to show.
func (r Result) Hint() string {
	switch r.Status {
	case Found:
		return "Recipient: " + r.Name
	case NotFound:
		return "Account number not found"
	case Failed:
		return "Error fetching recipient name"
	case InvalidFormat:
		return "Please enter a valid 10-digit account number"
	default:
		return ""
	}
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Resolver looks up recipient names when an account field is committed. A new
// lookup for a field cancels the one still running for that field.
type Resolver struct {
	lookup Lookup
	log    *log.Logger

	mu      sync.Mutex
	seq     uint64
	pending map[string]inflight
}

func NewResolver(lookup Lookup, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "recipient"})
	}
	return &Resolver{
		lookup:  lookup,
		log:     logger,
		pending: make(map[string]inflight),
	}
}

// Resolve resolves accountID on behalf of field. It never fails: every
// outcome is a Result.
func (r *Resolver) Resolve(ctx context.Context, field, accountID string) Result {
	if !ValidAccount(accountID) {
		r.cancelField(field)
		return Result{Status: InvalidFormat, Account: accountID}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.mu.Lock()
	if prev, ok := r.pending[field]; ok {
		prev.cancel()
	}
	r.seq++
	seq := r.seq
	r.pending[field] = inflight{seq: seq, cancel: cancel}
	r.mu.Unlock()

	name, err := r.lookup.RecipientName(ctx, accountID)

	r.mu.Lock()
	current, ok := r.pending[field]
	latest := ok && current.seq == seq
	if latest {
		delete(r.pending, field)
	}
	r.mu.Unlock()

	if !latest {
		return Result{Status: Superseded, Account: accountID}
	}

	switch {
	case err == nil && name != "":
		return Result{Status: Found, Account: accountID, Name: name}
	case err == nil, client.StatusCode(err) == http.StatusNotFound:
		return Result{Status: NotFound, Account: accountID}
	default:
		r.log.Warn("recipient lookup failed", "account", accountID, "err", err)
		return Result{Status: Failed, Account: accountID}
	}
}

func (r *Resolver) cancelField(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.pending[field]; ok {
		prev.cancel()
		delete(r.pending, field)
	}
}
