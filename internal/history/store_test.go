package history

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"pocketbank-cli/internal/client"
	"pocketbank-cli/internal/domain"
	"pocketbank-cli/internal/session"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"
)

type listFunc func(ctx context.Context) (string, []domain.Transaction, error)

func (f listFunc) ListTransactions(ctx context.Context) (string, []domain.Transaction, error) {
	return f(ctx)
}

func quiet() *log.Logger { return log.New(io.Discard) }

func tx(id int64, kind domain.Kind, owner, counterparty string) domain.Transaction {
	return domain.Transaction{
		ID:                  id,
		OwnerAccount:        owner,
		CounterpartyAccount: counterparty,
		Kind:                kind,
		Amount:              decimal.NewFromInt(10),
	}
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	batches := [][]domain.Transaction{
		{tx(1, domain.KindDeposit, "1111111111", ""), tx(2, domain.KindDeposit, "1111111111", "")},
		{tx(3, domain.KindTransfer, "1111111111", "2222222222")},
	}
	call := 0
	s := NewStore(listFunc(func(ctx context.Context) (string, []domain.Transaction, error) {
		b := batches[call]
		call++
		return "1111111111", b, nil
	}), nil, quiet())

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Transactions) != 1 || snap.Transactions[0].ID != 3 {
		t.Fatalf("snapshot should be replaced, got %+v", snap.Transactions)
	}
	if got := s.Snapshot(); len(got.Transactions) != 1 || got.OwnAccount != "1111111111" {
		t.Fatalf("Snapshot()=%+v", got)
	}
}

// Two overlapping refreshes complete newest first; the older one must not
// overwrite the newer result.
func TestStaleResponseIsDiscarded(t *testing.T) {
	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	call := 0
	s := NewStore(listFunc(func(ctx context.Context) (string, []domain.Transaction, error) {
		call++
		if call == 1 {
			close(firstStarted)
			<-releaseFirst
			return "1111111111", []domain.Transaction{tx(1, domain.KindDeposit, "1111111111", "")}, nil
		}
		return "1111111111", []domain.Transaction{tx(2, domain.KindDeposit, "1111111111", "")}, nil
	}), nil, quiet())

	r1 := make(chan error, 1)
	go func() {
		_, err := s.Refresh(context.Background())
		r1 <- err
	}()
	<-firstStarted

	snap2, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("R2 err=%v", err)
	}
	close(releaseFirst)

	if err := <-r1; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("R1 want ErrSuperseded, got %v", err)
	}

	got := s.Snapshot()
	if len(got.Transactions) != 1 || got.Transactions[0].ID != 2 || got.Generation != snap2.Generation {
		t.Fatalf("visible snapshot should equal R2's result, got %+v", got)
	}
}

func TestRefreshUnauthorizedSignalsCaller(t *testing.T) {
	redirects := 0
	guard := session.NewGuard(func() { redirects++ }, quiet())
	s := NewStore(listFunc(func(ctx context.Context) (string, []domain.Transaction, error) {
		return "", nil, &client.StatusError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	}), guard, quiet())

	_, err := s.Refresh(context.Background())
	if !errors.Is(err, session.ErrUnauthorized) {
		t.Fatalf("want ErrUnauthorized, got %v", err)
	}
	if redirects != 1 {
		t.Fatalf("redirects=%d", redirects)
	}
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	fail := false
	s := NewStore(listFunc(func(ctx context.Context) (string, []domain.Transaction, error) {
		if fail {
			return "", nil, client.ErrTransport
		}
		return "1111111111", []domain.Transaction{tx(1, domain.KindDeposit, "1111111111", "")}, nil
	}), nil, quiet())

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	fail = true
	if _, err := s.Refresh(context.Background()); !errors.Is(err, client.ErrTransport) {
		t.Fatalf("want transport error, got %v", err)
	}
	if got := s.Snapshot(); len(got.Transactions) != 1 {
		t.Fatalf("previous snapshot lost: %+v", got)
	}
}

func TestSnapshotRows(t *testing.T) {
	snap := Snapshot{
		OwnAccount: "1111111111",
		Transactions: []domain.Transaction{
			tx(1, domain.KindDeposit, "1111111111", ""),
			tx(2, domain.KindTransfer, "1111111111", "2222222222"),
			tx(3, domain.KindTransfer, "3333333333", "1111111111"),
		},
	}
	rows := snap.Rows()
	want := []domain.Direction{domain.Self, domain.Out, domain.In}
	for i, r := range rows {
		if r.Direction != want[i] {
			t.Errorf("row %d direction=%v want %v", i, r.Direction, want[i])
		}
	}
}
