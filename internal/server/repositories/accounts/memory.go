package accounts

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// MemoryRepository keeps the whole directory behind one RWMutex, which makes
// the alias check-and-insert in CreateUser/CreateBusiness naturally atomic.
type MemoryRepository struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	businesses map[string]*models.Business
	payIDs     map[string]string // sanitized alias -> principal
	links      map[string]*models.BusinessLink
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:      make(map[string]*models.User),
		businesses: make(map[string]*models.Business),
		payIDs:     make(map[string]string),
		links:      make(map[string]*models.BusinessLink),
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNew(user.Principal, user.PayID); err != nil {
		return err
	}
	r.users[user.Principal] = user.Clone()
	r.payIDs[user.PayID] = user.Principal
	return nil
}

func (r *MemoryRepository) CreateBusiness(ctx context.Context, business *models.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkNew(business.Principal, business.PayID); err != nil {
		return err
	}
	r.businesses[business.Principal] = business.Clone()
	r.payIDs[business.PayID] = business.Principal
	return nil
}

// checkNew enforces the one-account-per-principal and unique-alias
// invariants. Caller holds the write lock.
func (r *MemoryRepository) checkNew(principal, payID string) error {
	if _, ok := r.users[principal]; ok {
		return common.ErrAccountExists
	}
	if _, ok := r.businesses[principal]; ok {
		return common.ErrAccountExists
	}
	if _, ok := r.payIDs[payID]; ok {
		return common.ErrPayIDExists
	}
	return nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, principal string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[principal]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user.Clone(), nil
}

func (r *MemoryRepository) GetBusiness(ctx context.Context, principal string) (*models.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	business, ok := r.businesses[principal]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return business.Clone(), nil
}

func (r *MemoryRepository) SaveUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Principal]; !ok {
		return common.ErrorNotFound
	}
	r.users[user.Principal] = user.Clone()
	return nil
}

func (r *MemoryRepository) Kind(ctx context.Context, principal string) (models.AccountKind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.users[principal]; ok {
		return models.KindUser, nil
	}
	if _, ok := r.businesses[principal]; ok {
		return models.KindBusiness, nil
	}
	return "", common.ErrorNotFound
}

func (r *MemoryRepository) ResolvePayID(ctx context.Context, payID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	principal, ok := r.payIDs[payID]
	if !ok {
		return "", common.ErrorNotFound
	}
	return principal, nil
}

func (r *MemoryRepository) PayIDExists(ctx context.Context, payID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.payIDs[payID]
	return ok, nil
}

func (r *MemoryRepository) GetLink(ctx context.Context, linkID string) (*models.BusinessLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.links[linkID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return link.Clone(), nil
}

func (r *MemoryRepository) SaveLink(ctx context.Context, link *models.BusinessLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.links[link.ID] = link.Clone()
	return nil
}
