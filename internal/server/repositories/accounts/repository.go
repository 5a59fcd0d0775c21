// Package accounts stores User and Business records, the pay-id alias index,
// and user↔business links. The directory owns this data exclusively.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// Repository is the persistence contract for the account directory.
//
// CreateUser and CreateBusiness insert the account and its alias as a single
// atomic step: either both land or neither does. They return
// common.ErrAccountExists when the principal already has an account of
// either kind, and common.ErrPayIDExists when the sanitized alias is taken.
// Lookups return common.ErrorNotFound for missing records.
type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	CreateBusiness(ctx context.Context, business *models.Business) error

	GetUser(ctx context.Context, principal string) (*models.User, error)
	GetBusiness(ctx context.Context, principal string) (*models.Business, error)
	SaveUser(ctx context.Context, user *models.User) error

	// Kind reports which variant a principal resolves to.
	Kind(ctx context.Context, principal string) (models.AccountKind, error)

	// ResolvePayID maps a sanitized alias to its principal.
	ResolvePayID(ctx context.Context, payID string) (string, error)
	// PayIDExists reports whether a sanitized alias is taken.
	PayIDExists(ctx context.Context, payID string) (bool, error)

	GetLink(ctx context.Context, linkID string) (*models.BusinessLink, error)
	SaveLink(ctx context.Context, link *models.BusinessLink) error
}
