package models

import (
	"math/big"
	"time"
)

// LinkID derives the id of the link between a user and a business,
// order-independent like ChatID.
func LinkID(userPrincipal, businessPrincipal string) string {
	return ChatID(userPrincipal, businessPrincipal)
}

// LinkTransaction is one transfer between the linked user and business, as
// shown inside the relationship view.
type LinkTransaction struct {
	Sender     string // principal of the paying side
	TransferID uint64
	Amount     *big.Int
	Note       string
	Timestamp  time.Time
}

// BusinessLink is the aggregate a user establishes with a business it pays:
// a summary of the business profile plus the transactions between the two.
// The embedded profile fields are a denormalized snapshot taken when the
// link is created.
type BusinessLink struct {
	ID                string
	UserPrincipal     string
	BusinessPrincipal string
	BusinessName      string
	BusinessPayID     string
	BusinessLogo      string
	BusinessCategory  BusinessCategory
	Transactions      []LinkTransaction
	LastActivity      time.Time
}

// NewBusinessLink snapshots the business profile into a fresh link.
func NewBusinessLink(user *User, business *Business, now time.Time) *BusinessLink {
	return &BusinessLink{
		ID:                LinkID(user.Principal, business.Principal),
		UserPrincipal:     user.Principal,
		BusinessPrincipal: business.Principal,
		BusinessName:      business.Name,
		BusinessPayID:     business.PayID,
		BusinessLogo:      business.Logo,
		BusinessCategory:  business.Category,
		LastActivity:      now,
	}
}

// AppendTransaction adds a transfer to the link and advances last activity.
func (l *BusinessLink) AppendTransaction(tx LinkTransaction) {
	l.Transactions = append(l.Transactions, tx)
	if tx.Timestamp.After(l.LastActivity) {
		l.LastActivity = tx.Timestamp
	}
}

// Clone returns a deep copy safe to mutate independently.
func (l *BusinessLink) Clone() *BusinessLink {
	cp := *l
	cp.Transactions = make([]LinkTransaction, len(l.Transactions))
	for i, tx := range l.Transactions {
		tx.Amount = cloneAmount(tx.Amount)
		cp.Transactions[i] = tx
	}
	return &cp
}
