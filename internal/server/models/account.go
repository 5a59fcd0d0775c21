// Package models holds the domain entities of the paylink service: accounts,
// chats and their timeline items, business links, and transaction history
// rows. Entities carry no storage or transport concerns.
package models

import (
	"sort"
	"time"
)

// AccountKind tags the two account variants.
type AccountKind string

const (
	KindUser     AccountKind = "user"
	KindBusiness AccountKind = "business"
)

// BusinessCategory is a closed enumeration of business types.
type BusinessCategory string

const (
	CategoryAgriculture    BusinessCategory = "agriculture"
	CategoryManufacturing  BusinessCategory = "manufacturing"
	CategoryTechnology     BusinessCategory = "technology"
	CategoryRetail         BusinessCategory = "retail"
	CategoryFood           BusinessCategory = "food"
	CategoryHealthcare     BusinessCategory = "healthcare"
	CategoryEducation      BusinessCategory = "education"
	CategoryFinance        BusinessCategory = "finance"
	CategoryRealEstate     BusinessCategory = "real_estate"
	CategoryConstruction   BusinessCategory = "construction"
	CategoryTransportation BusinessCategory = "transportation"
	CategoryEntertainment  BusinessCategory = "entertainment"
	CategoryProfessional   BusinessCategory = "professional"
	CategoryHospitality    BusinessCategory = "hospitality"
	CategoryEnergy         BusinessCategory = "energy"
	CategoryOther          BusinessCategory = "other"
)

var businessCategories = map[BusinessCategory]struct{}{
	CategoryAgriculture: {}, CategoryManufacturing: {}, CategoryTechnology: {},
	CategoryRetail: {}, CategoryFood: {}, CategoryHealthcare: {},
	CategoryEducation: {}, CategoryFinance: {}, CategoryRealEstate: {},
	CategoryConstruction: {}, CategoryTransportation: {}, CategoryEntertainment: {},
	CategoryProfessional: {}, CategoryHospitality: {}, CategoryEnergy: {},
	CategoryOther: {},
}

// ParseBusinessCategory validates a category string, falling back to
// CategoryOther for unknown values.
func ParseBusinessCategory(s string) BusinessCategory {
	c := BusinessCategory(s)
	if _, ok := businessCategories[c]; ok {
		return c
	}
	return CategoryOther
}

// ChatRef is a user's weak reference to a chat: id plus the chat's
// last-activity timestamp, used only for ordering. Never a strong link, to
// avoid a cycle between accounts and chats.
type ChatRef struct {
	ChatID       string
	LastActivity time.Time
}

// LinkRef is a user's weak reference to a business link, ordered the same
// way as ChatRef.
type LinkRef struct {
	LinkID       string
	LastActivity time.Time
}

// User is a personal account. Principal is immutable and unique; PayID is
// unique across all accounts and fixed at creation.
type User struct {
	Principal  string
	PayID      string
	Name       string
	ProfilePic string
	CreatedAt  time.Time
	Chats      []ChatRef
	Businesses []LinkRef
}

// TouchChat updates (or inserts) the ref for chatID and keeps the slice
// sorted by ascending last activity.
func (u *User) TouchChat(chatID string, at time.Time) {
	found := false
	for i := range u.Chats {
		if u.Chats[i].ChatID == chatID {
			u.Chats[i].LastActivity = at
			found = true
			break
		}
	}
	if !found {
		u.Chats = append(u.Chats, ChatRef{ChatID: chatID, LastActivity: at})
	}
	sort.Slice(u.Chats, func(i, j int) bool {
		return u.Chats[i].LastActivity.Before(u.Chats[j].LastActivity)
	})
}

// TouchBusiness does the same for business link refs.
func (u *User) TouchBusiness(linkID string, at time.Time) {
	found := false
	for i := range u.Businesses {
		if u.Businesses[i].LinkID == linkID {
			u.Businesses[i].LastActivity = at
			found = true
			break
		}
	}
	if !found {
		u.Businesses = append(u.Businesses, LinkRef{LinkID: linkID, LastActivity: at})
	}
	sort.Slice(u.Businesses, func(i, j int) bool {
		return u.Businesses[i].LastActivity.Before(u.Businesses[j].LastActivity)
	})
}

// Clone returns a deep copy safe to mutate independently.
func (u *User) Clone() *User {
	cp := *u
	cp.Chats = append([]ChatRef(nil), u.Chats...)
	cp.Businesses = append([]LinkRef(nil), u.Businesses...)
	return &cp
}

// Business is a commercial account. It owns an append-only transaction
// history, stored separately and addressed by principal.
type Business struct {
	Principal string
	PayID     string
	Name      string
	Logo      string
	Category  BusinessCategory
	CreatedAt time.Time
}

// Clone returns a copy safe to mutate independently.
func (b *Business) Clone() *Business {
	cp := *b
	return &cp
}
