package models

import (
	"math/big"
	"sort"
	"time"

	"github.com/google/uuid"
)

// chatNamespace seeds deterministic chat ids. Changing it would change every
// chat id, so it is fixed for the lifetime of the deployment.
var chatNamespace = uuid.MustParse("9f2c1af4-52fb-4c58-9d6a-05f13ae1b0d7")

// ChatID derives the id of the chat between two principals. It is
// order-independent: ChatID(a, b) == ChatID(b, a).
func ChatID(p1, p2 string) string {
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	return uuid.NewSHA1(chatNamespace, []byte(p1+"/"+p2)).String()
}

// Chat is the append-only shared timeline between exactly two participants.
type Chat struct {
	ID           string
	Participants [2]string // principals
	Items        []TimelineItem
	LastActivity time.Time
}

// NewChat builds an empty chat for an unordered pair of principals.
func NewChat(p1, p2 string, now time.Time) *Chat {
	if p1 > p2 {
		p1, p2 = p2, p1
	}
	return &Chat{
		ID:           ChatID(p1, p2),
		Participants: [2]string{p1, p2},
		LastActivity: now,
	}
}

// HasParticipant reports whether principal is one of the two participants.
func (c *Chat) HasParticipant(principal string) bool {
	return c.Participants[0] == principal || c.Participants[1] == principal
}

// Other returns the counterparty of principal. Callers must have checked
// participation first.
func (c *Chat) Other(principal string) string {
	if c.Participants[0] == principal {
		return c.Participants[1]
	}
	return c.Participants[0]
}

// Append adds an item to the timeline and advances last activity.
func (c *Chat) Append(item TimelineItem) {
	c.Items = append(c.Items, item)
	if ts := item.Base().Timestamp; ts.After(c.LastActivity) {
		c.LastActivity = ts
	}
}

// Clone returns a deep copy of the chat, including timeline items, safe to
// mutate independently of the stored aggregate.
func (c *Chat) Clone() *Chat {
	cp := *c
	cp.Items = make([]TimelineItem, len(c.Items))
	for i, item := range c.Items {
		cp.Items[i] = item.clone()
	}
	return &cp
}

// SortChatsByActivity orders chats by descending last activity (newest
// first), the order clients display them in.
func SortChatsByActivity(chats []*Chat) {
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastActivity.After(chats[j].LastActivity)
	})
}

func cloneAmount(a *big.Int) *big.Int {
	if a == nil {
		return nil
	}
	return new(big.Int).Set(a)
}
