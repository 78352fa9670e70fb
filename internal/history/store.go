// Package history holds the latest transaction list fetched from the server.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/session"

	"github.com/charmbracelet/log"
)

// ErrSuperseded is returned by a refresh whose response arrived after a newer
// refresh had been started. Its result is discarded.
var ErrSuperseded = errors.New("history refresh superseded")

type Lister interface {
	ListTransactions(ctx context.Context) (ownAccount string, txs []domain.Transaction, err error)
}

type Snapshot struct {
	OwnAccount   string
	Transactions []domain.Transaction
	Generation   uint64
	FetchedAt    time.Time
}

// Rows classifies every transaction from the snapshot owner's side.
func (s Snapshot) Rows() []domain.Row {
	rows := make([]domain.Row, len(s.Transactions))
	for i, tx := range s.Transactions {
		rows[i] = domain.Classify(tx, s.OwnAccount)
	}
	return rows
}

// Store holds the latest authoritative transaction list. Every refresh
// replaces the snapshot wholesale.
type Store struct {
	lister Lister
	guard  *session.Guard
	log    *log.Logger

	mu      sync.Mutex
	issued  uint64
	current Snapshot
}

func NewStore(lister Lister, guard *session.Guard, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "history"})
	}
	return &Store{lister: lister, guard: guard, log: logger}
}

// Refresh fetches the history. Only the most recently started refresh may
// publish; older ones return ErrSuperseded. A 401 comes back wrapping
// session.ErrUnauthorized and the previous snapshot is kept.
func (s *Store) Refresh(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	s.issued++
	gen := s.issued
	s.mu.Unlock()

	var (
		own string
		txs []domain.Transaction
	)
	fetch := func(ctx context.Context) error {
		var err error
		own, txs, err = s.lister.ListTransactions(ctx)
		return err
	}

	var err error
	if s.guard != nil {
		err = s.guard.Do(ctx, fetch)
	} else {
		err = fetch(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.issued {
		s.log.Debug("discarding stale history response", "generation", gen, "latest", s.issued)
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to refresh history: %w", err)
	}

	s.current = Snapshot{
		OwnAccount:   own,
		Transactions: txs,
		Generation:   gen,
		FetchedAt:    time.Now(),
	}
	s.log.Debug("history refreshed", "generation", gen, "count", len(txs))
	return s.copyCurrent(), nil
}

// Snapshot returns the last published snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyCurrent()
}

func (s *Store) copyCurrent() Snapshot {
	cp := s.current
	cp.Transactions = append([]domain.Transaction(nil), s.current.Transactions...)
	return cp
}
