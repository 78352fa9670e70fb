package domain

import "github.com/shopspring/decimal"

type Direction int

const (
	In Direction = iota
	Out
	Self
)

func (d Direction) String() string {
	switch d {
	case In:
		return "incoming"
	case Out:
		return "outgoing"
	case Self:
		return "self"
	default:
		return "unknown"
	}
}

type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindTransfer Kind = "transfer"
)

// Transaction is a ledger row as returned by the server. It is never mutated
// after parsing.
type Transaction struct {
	ID                  int64
	OwnerAccount        string
	CounterpartyAccount string // empty for deposits
	Kind                Kind
	Amount              decimal.Decimal
	OccurredAt          string
}

// TransferRequest is built from validated form input and discarded after the
// submission attempt.
type TransferRequest struct {
	RecipientAccount string
	Amount           decimal.Decimal
	PIN              string
}

// Row is the presentation of a Transaction from the viewer's side.
type Row struct {
	Transaction
	Direction Direction
	Detail    string
}

// Classify projects tx for the viewer owning viewerAccount.
func Classify(tx Transaction, viewerAccount string) Row {
	switch {
	case tx.Kind == KindDeposit:
		return Row{Transaction: tx, Direction: Self, Detail: "Deposit"}
	case tx.OwnerAccount == viewerAccount:
		return Row{Transaction: tx, Direction: Out, Detail: "Sent to " + tx.CounterpartyAccount}
	default:
		return Row{Transaction: tx, Direction: In, Detail: "Received from " + tx.OwnerAccount}
	}
}
