package models

import (
	"math/big"
	"time"
)

// Direction tells whether the history owner sent or received the transfer.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// TransactionEntry is one row of an account's append-only transaction
// history. Rows are created exactly once per (account, transfer) and never
// mutated or deleted.
type TransactionEntry struct {
	TransferID        uint64
	Direction         Direction
	Counterparty      string // display name of the other party
	CounterpartyPayID string
	Note              string
	Timestamp         time.Time
	Amount            *big.Int
}

// Clone returns a copy safe to hand out to callers.
func (e TransactionEntry) Clone() TransactionEntry {
	e.Amount = cloneAmount(e.Amount)
	return e
}
