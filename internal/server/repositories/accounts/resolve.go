package accounts

import (
	"context"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// Resolve turns an AccountRef into a principal. Pay-id lookups go through
// sanitization first. Returns common.ErrorNotFound when nothing matches.
func Resolve(ctx context.Context, r Repository, ref models.AccountRef) (string, error) {
	if ref.Principal != "" {
		if _, err := r.Kind(ctx, ref.Principal); err != nil {
			return "", err
		}
		return ref.Principal, nil
	}
	if ref.PayID == "" {
		return "", common.ErrorNotFound
	}
	return r.ResolvePayID(ctx, common.SanitizePayID(ref.PayID))
}
