package models

import (
	"math/big"
	"time"
)

// TimelineItem is the closed set of things a chat timeline can hold:
// Message, Transaction, or RequestPayment. The unexported method keeps the
// set sealed so switches over the variants stay exhaustive.
type TimelineItem interface {
	// Base exposes the fields every item carries.
	Base() *ItemBase
	clone() TimelineItem
}

// ItemBase carries the fields common to all timeline items: the sender
// principal, the advisory display timestamp, and the read-receipt set.
type ItemBase struct {
	Sender    string
	Timestamp time.Time
	ReadBy    []string // principals; initially contains only the sender
}

func newItemBase(sender string, at time.Time) ItemBase {
	return ItemBase{Sender: sender, Timestamp: at, ReadBy: []string{sender}}
}

// IsReadBy reports whether principal is in the read-receipt set.
func (b *ItemBase) IsReadBy(principal string) bool {
	for _, p := range b.ReadBy {
		if p == principal {
			return true
		}
	}
	return false
}

// MarkReadBy adds principal to the read-receipt set. Idempotent; reports
// whether the set changed.
func (b *ItemBase) MarkReadBy(principal string) bool {
	if b.IsReadBy(principal) {
		return false
	}
	b.ReadBy = append(b.ReadBy, principal)
	return true
}

func (b *ItemBase) cloneBase() ItemBase {
	cp := *b
	cp.ReadBy = append([]string(nil), b.ReadBy...)
	return cp
}

// Message is a free-text timeline item.
type Message struct {
	ItemBase
	Content string
}

// NewMessage builds a message read only by its sender.
func NewMessage(sender, content string, at time.Time) *Message {
	return &Message{ItemBase: newItemBase(sender, at), Content: content}
}

func (m *Message) Base() *ItemBase { return &m.ItemBase }

func (m *Message) clone() TimelineItem {
	cp := *m
	cp.ItemBase = m.cloneBase()
	return &cp
}

// Transaction records a transfer that already settled on the ledger.
type Transaction struct {
	ItemBase
	TransferID uint64
	Amount     *big.Int
	Note       string
}

// NewTransaction builds a transaction item sent by the paying side.
func NewTransaction(sender string, transferID uint64, amount *big.Int, note string, at time.Time) *Transaction {
	return &Transaction{
		ItemBase:   newItemBase(sender, at),
		TransferID: transferID,
		Amount:     cloneAmount(amount),
		Note:       note,
	}
}

func (t *Transaction) Base() *ItemBase { return &t.ItemBase }

func (t *Transaction) clone() TimelineItem {
	cp := *t
	cp.ItemBase = t.cloneBase()
	cp.Amount = cloneAmount(t.Amount)
	return &cp
}

// Fulfillment records the one-time settlement of a payment request.
type Fulfillment struct {
	TransferID uint64
	PaidAt     time.Time
}

// RequestPayment asks the chat counterparty for an exact amount. It starts
// unfulfilled and transitions to fulfilled at most once, never after
// ExpiresAt.
type RequestPayment struct {
	ItemBase
	Amount      *big.Int
	Note        string
	RequestedAt time.Time
	ExpiresAt   time.Time
	Fulfillment *Fulfillment
}

// NewRequestPayment builds an unfulfilled request expiring after window.
func NewRequestPayment(sender string, amount *big.Int, note string, at time.Time, window time.Duration) *RequestPayment {
	return &RequestPayment{
		ItemBase:    newItemBase(sender, at),
		Amount:      cloneAmount(amount),
		Note:        note,
		RequestedAt: at,
		ExpiresAt:   at.Add(window),
	}
}

// Fulfilled reports whether the request already has a settlement record.
func (r *RequestPayment) Fulfilled() bool { return r.Fulfillment != nil }

// Expired reports whether the request can no longer be fulfilled at now.
func (r *RequestPayment) Expired(now time.Time) bool { return now.After(r.ExpiresAt) }

func (r *RequestPayment) Base() *ItemBase { return &r.ItemBase }

func (r *RequestPayment) clone() TimelineItem {
	cp := *r
	cp.ItemBase = r.cloneBase()
	cp.Amount = cloneAmount(r.Amount)
	if r.Fulfillment != nil {
		f := *r.Fulfillment
		cp.Fulfillment = &f
	}
	return &cp
}
