// Package directory implements the account directory: sign-up for users and
// businesses, the unique pay-id alias index, user–business relationships, and
// the aggregated data fetch used by clients on startup.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/models"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/chats"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/histories"
)

// Initial-fetch truncation limits. Clients page in the rest lazily.
const (
	initialChatCount    = 8
	initialLinkCount    = 4
	initialHistoryCount = 50
)

// Data is the aggregated bundle returned by FetchData. When SignedUp is
// false all other fields are zero. For a user account User, Chats and Links
// are set; for a business account Business, History and HistoryLength are.
type Data struct {
	SignedUp bool
	Kind     models.AccountKind

	User  *models.User
	Chats []*models.Chat
	Links []*models.BusinessLink

	Business      *models.Business
	History       []models.TransactionEntry
	HistoryLength int
}

type Service struct {
	accounts  accounts.Repository
	chats     chats.Repository
	histories histories.Repository
	logger    logging.Logger
	now       func() time.Time
}

func NewService(ar accounts.Repository, cr chats.Repository, hr histories.Repository, logger logging.Logger) *Service {
	return &Service{
		accounts:  ar,
		chats:     cr,
		histories: hr,
		logger:    logger.With("module", "directory_service"),
		now:       time.Now,
	}
}

// SignUpUser registers a personal account for the caller. The pay-id is
// sanitized before the uniqueness check; account and alias land atomically.
func (s *Service) SignUpUser(ctx context.Context, caller, payID, name, profilePic string) (*models.User, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}

	payID = common.SanitizePayID(payID)
	if !common.IsValidPayID(payID) {
		return nil, common.ErrInvalidPayID
	}

	user := &models.User{
		Principal:  caller,
		PayID:      payID,
		Name:       name,
		ProfilePic: profilePic,
		CreatedAt:  s.now().UTC(),
	}

	if err := s.accounts.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user signed up", "pay_id", payID)
	return user.Clone(), nil
}

// SignUpBusiness registers a business account. Unknown category strings fall
// back to CategoryOther.
func (s *Service) SignUpBusiness(ctx context.Context, caller, payID, name, logo, category string) (*models.Business, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}

	payID = common.SanitizePayID(payID)
	if !common.IsValidPayID(payID) {
		return nil, common.ErrInvalidPayID
	}

	business := &models.Business{
		Principal: caller,
		PayID:     payID,
		Name:      name,
		Logo:      logo,
		Category:  models.ParseBusinessCategory(category),
		CreatedAt: s.now().UTC(),
	}

	if err := s.accounts.CreateBusiness(ctx, business); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "business signed up", "pay_id", payID, "category", business.Category)
	return business.Clone(), nil
}

// IsAliasAvailable reports whether a sanitized alias could still be claimed.
// Aliases that do not survive sanitization are never available.
func (s *Service) IsAliasAvailable(ctx context.Context, payID string) (bool, error) {
	payID = common.SanitizePayID(payID)
	if !common.IsValidPayID(payID) {
		return false, nil
	}
	taken, err := s.accounts.PayIDExists(ctx, payID)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ResolveAlias maps a pay-id to its principal. Only signed-up callers may
// resolve aliases. An unknown alias is not an error: found is false.
func (s *Service) ResolveAlias(ctx context.Context, caller, payID string) (principal string, found bool, err error) {
	if caller == "" {
		return "", false, common.ErrAnonymousCaller
	}
	if _, err := s.accounts.Kind(ctx, caller); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, common.ErrAccountNotFound
		}
		return "", false, err
	}

	principal, err = s.accounts.ResolvePayID(ctx, common.SanitizePayID(payID))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return principal, true, nil
}

// GetUser returns the caller's personal account.
func (s *Service) GetUser(ctx context.Context, caller string) (*models.User, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}
	user, err := s.accounts.GetUser(ctx, caller)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetBusiness returns the caller's business account.
func (s *Service) GetBusiness(ctx context.Context, caller string) (*models.Business, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}
	business, err := s.accounts.GetBusiness(ctx, caller)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBusinessNotFound
		}
		return nil, err
	}
	return business, nil
}

// AddBusinessRelationship links the calling user to the referenced business.
// Idempotent per pair: a second call returns the existing link unchanged.
func (s *Service) AddBusinessRelationship(ctx context.Context, caller string, ref models.AccountRef) (*models.BusinessLink, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}

	user, err := s.accounts.GetUser(ctx, caller)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}

	principal, err := accounts.Resolve(ctx, s.accounts, ref)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBusinessNotFound
		}
		return nil, err
	}

	business, err := s.accounts.GetBusiness(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrBusinessNotFound
		}
		return nil, err
	}

	linkID := models.LinkID(user.Principal, business.Principal)
	if link, err := s.accounts.GetLink(ctx, linkID); err == nil {
		return link, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	link := models.NewBusinessLink(user, business, now)
	if err := s.accounts.SaveLink(ctx, link); err != nil {
		return nil, err
	}

	user.TouchBusiness(linkID, now)
	if err := s.accounts.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "business relationship added", "link_id", linkID)
	return link.Clone(), nil
}

// FetchData returns everything a client needs on startup. With full=false
// the bundle is truncated to the most recent activity (8 chats, 4 links, 50
// history rows); full=true returns everything. An unknown caller is not an
// error: the bundle just reports not signed up.
func (s *Service) FetchData(ctx context.Context, caller string, full bool) (*Data, error) {
	if caller == "" {
		return &Data{}, nil
	}

	kind, err := s.accounts.Kind(ctx, caller)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return &Data{}, nil
		}
		return nil, err
	}

	switch kind {
	case models.KindUser:
		return s.fetchUserData(ctx, caller, full)
	default:
		return s.fetchBusinessData(ctx, caller, full)
	}
}

func (s *Service) fetchUserData(ctx context.Context, caller string, full bool) (*Data, error) {
	user, err := s.accounts.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}

	chatRefs := user.Chats
	if !full && len(chatRefs) > initialChatCount {
		chatRefs = chatRefs[len(chatRefs)-initialChatCount:]
	}
	chatList := make([]*models.Chat, 0, len(chatRefs))
	for _, ref := range chatRefs {
		chat, err := s.chats.Get(ctx, ref.ChatID)
		if err != nil {
			return nil, err
		}
		chatList = append(chatList, chat)
	}
	models.SortChatsByActivity(chatList)

	linkRefs := user.Businesses
	if !full && len(linkRefs) > initialLinkCount {
		linkRefs = linkRefs[len(linkRefs)-initialLinkCount:]
	}
	links := make([]*models.BusinessLink, 0, len(linkRefs))
	for i := len(linkRefs) - 1; i >= 0; i-- { // newest first
		link, err := s.accounts.GetLink(ctx, linkRefs[i].LinkID)
		if err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return &Data{
		SignedUp: true,
		Kind:     models.KindUser,
		User:     user,
		Chats:    chatList,
		Links:    links,
	}, nil
}

func (s *Service) fetchBusinessData(ctx context.Context, caller string, full bool) (*Data, error) {
	business, err := s.accounts.GetBusiness(ctx, caller)
	if err != nil {
		return nil, err
	}

	length, err := s.histories.Length(ctx, caller)
	if err != nil {
		return nil, err
	}

	since := 0
	if !full && length > initialHistoryCount {
		since = length - initialHistoryCount
	}
	history, err := s.histories.Tail(ctx, caller, since)
	if err != nil {
		return nil, err
	}

	return &Data{
		SignedUp:      true,
		Kind:          models.KindBusiness,
		Business:      business,
		History:       history,
		HistoryLength: length,
	}, nil
}
