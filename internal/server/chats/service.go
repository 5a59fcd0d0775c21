// Package chats implements the chat timeline engine: two-party append-only
// timelines of messages, settled transactions, and payment requests, plus
// the two transfer-recording paths that reconcile caller claims against the
// external ledger.
package chats

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/ledger"
	"github.com/dmitrijs2005/paylink/internal/server/models"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/accounts"
	chatrepo "github.com/dmitrijs2005/paylink/internal/server/repositories/chats"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/histories"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/transfers"
)

type Service struct {
	accounts  accounts.Repository
	chats     chatrepo.Repository
	histories histories.Repository
	transfers transfers.Repository
	verifier  ledger.Verifier
	logger    logging.Logger

	// expiry is the payment-request fulfillment window.
	expiry time.Duration
	now    func() time.Time

	// locks serializes mutations per chat and per transfer being recorded.
	// The chat key is always the innermost lock.
	locks *keyedMutex
}

func NewService(ar accounts.Repository, cr chatrepo.Repository, hr histories.Repository,
	tr transfers.Repository, verifier ledger.Verifier, expiry time.Duration, logger logging.Logger) *Service {
	return &Service{
		accounts:  ar,
		chats:     cr,
		histories: hr,
		transfers: tr,
		verifier:  verifier,
		logger:    logger.With("module", "chats_service"),
		expiry:    expiry,
		now:       time.Now,
		locks:     newKeyedMutex(),
	}
}

func chatLockKey(chatID string) string { return "chat:" + chatID }

// CreateChat opens (or returns) the chat between the caller and the
// referenced participant. Idempotent and order-independent: both parties
// asking for the pair land on the same chat.
func (s *Service) CreateChat(ctx context.Context, caller string, participant models.AccountRef) (*models.Chat, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}
	if _, err := s.accounts.Kind(ctx, caller); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, err
	}

	other, err := accounts.Resolve(ctx, s.accounts, participant)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrParticipantNotFound
		}
		return nil, err
	}
	if other == caller {
		return nil, common.ErrCallerAndParticipantSame
	}

	chatID := models.ChatID(caller, other)
	unlock := s.locks.Lock(chatLockKey(chatID))
	defer unlock()

	if chat, err := s.chats.Get(ctx, chatID); err == nil {
		return chat, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	now := s.now().UTC()
	chat := models.NewChat(caller, other, now)
	if err := s.chats.Save(ctx, chat); err != nil {
		return nil, err
	}
	if err := s.touchChatRefs(ctx, chat); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "chat created", "chat_id", chatID)
	return chat.Clone(), nil
}

// AddMessage appends a free-text message to the chat.
func (s *Service) AddMessage(ctx context.Context, caller, chatID, content string) (*models.Chat, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}

	unlock := s.locks.Lock(chatLockKey(chatID))
	defer unlock()

	chat, err := s.loadForParticipant(ctx, chatID, caller)
	if err != nil {
		return nil, err
	}

	chat.Append(models.NewMessage(caller, content, s.now().UTC()))
	if err := s.chats.Save(ctx, chat); err != nil {
		return nil, err
	}
	if err := s.touchChatRefs(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// MarkRead adds the caller to the read-receipt set of every item in the chat
// it is not yet on. Idempotent; read state never regresses.
func (s *Service) MarkRead(ctx context.Context, caller, chatID string) error {
	if caller == "" {
		return common.ErrAnonymousCaller
	}

	unlock := s.locks.Lock(chatLockKey(chatID))
	defer unlock()

	chat, err := s.loadForParticipant(ctx, chatID, caller)
	if err != nil {
		return err
	}

	changed := false
	for _, item := range chat.Items {
		if item.Base().MarkReadBy(caller) {
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.chats.Save(ctx, chat)
}

// GetChat returns the chat to one of its participants.
func (s *Service) GetChat(ctx context.Context, caller, chatID string) (*models.Chat, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}
	return s.loadForParticipant(ctx, chatID, caller)
}

// MyChats returns the caller's chats, newest activity first.
func (s *Service) MyChats(ctx context.Context, caller string) ([]*models.Chat, error) {
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

	list := make([]*models.Chat, 0, len(user.Chats))
	for _, ref := range user.Chats {
		chat, err := s.chats.Get(ctx, ref.ChatID)
		if err != nil {
			return nil, err
		}
		list = append(list, chat)
	}
	models.SortChatsByActivity(list)
	return list, nil
}

// RequestPayment appends a payment request for an exact positive amount.
// The request expires after the configured window and can be fulfilled at
// most once before that.
func (s *Service) RequestPayment(ctx context.Context, caller, chatID string, amount *big.Int, note string) (*models.Chat, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, common.ErrInvalidAmount
	}

	unlock := s.locks.Lock(chatLockKey(chatID))
	defer unlock()

	chat, err := s.loadForParticipant(ctx, chatID, caller)
	if err != nil {
		return nil, err
	}

	chat.Append(models.NewRequestPayment(caller, amount, note, s.now().UTC(), s.expiry))
	if err := s.chats.Save(ctx, chat); err != nil {
		return nil, err
	}
	if err := s.touchChatRefs(ctx, chat); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "payment requested", "chat_id", chatID, "amount", amount.String())
	return chat, nil
}

// loadForParticipant fetches the chat and checks the caller is one of its
// two participants. Must be called with the chat lock held when the result
// will be mutated.
func (s *Service) loadForParticipant(ctx context.Context, chatID, caller string) (*models.Chat, error) {
	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrChatNotFound
		}
		return nil, err
	}
	if !chat.HasParticipant(caller) {
		return nil, common.ErrNotAParticipant
	}
	return chat, nil
}

// touchChatRefs refreshes the chat ref ordering on every participant that
// has a user account. Business participants carry no chat refs.
func (s *Service) touchChatRefs(ctx context.Context, chat *models.Chat) error {
	for _, p := range chat.Participants {
		user, err := s.accounts.GetUser(ctx, p)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return err
		}
		user.TouchChat(chat.ID, chat.LastActivity)
		if err := s.accounts.SaveUser(ctx, user); err != nil {
			return err
		}
	}
	return nil
}
