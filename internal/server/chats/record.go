package chats

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/server/ledger"
	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// party is one resolved side of a verified transfer.
type party struct {
	principal string
	kind      models.AccountKind
	user      *models.User
	business  *models.Business
}

func (p *party) name() string {
	if p.kind == models.KindUser {
		return p.user.Name
	}
	return p.business.Name
}

func (p *party) payID() string {
	if p.kind == models.KindUser {
		return p.user.PayID
	}
	return p.business.PayID
}

func transferLockKey(transferID uint64) string {
	return fmt.Sprintf("transfer:%d", transferID)
}

// RecordRequestedPayment settles a payment request: the ledger transfer
// identified by transferID must move exactly the requested amount from the
// chat counterparty to the requester, before the request expires. On success
// the request is fulfilled, both parties get a history row, and the transfer
// id enters the recorded index so it can never settle anything again.
//
// Transport failures to the ledger commit nothing, so the caller may retry
// with the same arguments.
func (s *Service) RecordRequestedPayment(ctx context.Context, caller, chatID string, itemIndex int, transferID uint64) (*models.Chat, error) {
	if caller == "" {
		return nil, common.ErrAnonymousCaller
	}

	unlock := s.locks.Lock(chatLockKey(chatID))
	defer unlock()

	chat, err := s.loadForParticipant(ctx, chatID, caller)
	if err != nil {
		return nil, err
	}

	if itemIndex < 0 || itemIndex >= len(chat.Items) {
		return nil, common.ErrRequestPaymentNotFound
	}
	req, ok := chat.Items[itemIndex].(*models.RequestPayment)
	if !ok {
		return nil, common.ErrRequestPaymentNotFound
	}

	if req.Fulfilled() {
		return nil, common.ErrAlreadyRecorded
	}
	recorded, err := s.transfers.Contains(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if recorded {
		return nil, common.ErrAlreadyRecorded
	}

	transfer, err := s.verifier.VerifyTransfer(ctx, transferID)
	if err != nil {
		return nil, err
	}

	requester := req.Sender
	payer := chat.Other(requester)
	if transfer.To != requester || transfer.From != payer {
		return nil, &common.InvalidTransactionError{
			Detail: "transfer parties do not match the payment request",
		}
	}
	if transfer.Amount.Cmp(req.Amount) != 0 {
		return nil, &common.InvalidTransactionError{
			Detail: fmt.Sprintf("transfer amount %s does not equal requested amount %s",
				transfer.Amount, req.Amount),
		}
	}
	if req.Expired(s.now().UTC()) {
		return nil, common.ErrRequestExpired
	}

	fromParty, err := s.lookupParty(ctx, transfer.From)
	if err != nil {
		return nil, err
	}
	toParty, err := s.lookupParty(ctx, transfer.To)
	if err != nil {
		return nil, err
	}
	if fromParty == nil || toParty == nil {
		return nil, common.ErrRecordFailed
	}

	// Commit point. A concurrent recording of the same transfer loses here.
	if err := s.transfers.Insert(ctx, transferID, transfer.From, transfer.To); err != nil {
		return nil, err
	}

	req.Fulfillment = &models.Fulfillment{TransferID: transferID, PaidAt: transfer.Timestamp}
	if transfer.Timestamp.After(chat.LastActivity) {
		chat.LastActivity = transfer.Timestamp
	}
	if err := s.chats.Save(ctx, chat); err != nil {
		return nil, err
	}
	if err := s.touchChatRefs(ctx, chat); err != nil {
		return nil, err
	}

	if err := s.updateLink(ctx, fromParty, toParty, transferID, transfer.Amount, req.Note, transfer.Timestamp); err != nil {
		return nil, err
	}
	if err := s.appendHistories(ctx, fromParty, toParty, transferID, transfer.Amount, req.Note, transfer.Timestamp); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "payment request settled",
		"chat_id", chatID, "transfer_id", transferID, "amount", transfer.Amount.String())
	return chat, nil
}

// RecordTransfer reconciles a direct (unrequested) transfer the caller made
// or received. The verified parties decide the effect: two users get a
// Transaction item in their chat (created if absent), a user–business pair
// gets the business link updated, and every known party gets a history row.
// A transfer neither of whose parties has an account is rejected with
// BothAccountsNotFound.
func (s *Service) RecordTransfer(ctx context.Context, caller string, transferID uint64, note string) error {
	if caller == "" {
		return common.ErrAnonymousCaller
	}
	if _, err := s.accounts.Kind(ctx, caller); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrAccountNotFound
		}
		return err
	}

	unlock := s.locks.Lock(transferLockKey(transferID))
	defer unlock()

	recorded, err := s.transfers.Contains(ctx, transferID)
	if err != nil {
		return err
	}
	if recorded {
		return common.ErrAlreadyRecorded
	}

	transfer, err := s.verifier.VerifyTransfer(ctx, transferID)
	if err != nil {
		return err
	}

	fromParty, err := s.lookupParty(ctx, transfer.From)
	if err != nil {
		return err
	}
	toParty, err := s.lookupParty(ctx, transfer.To)
	if err != nil {
		return err
	}
	if fromParty == nil && toParty == nil {
		return &common.BothAccountsNotFoundError{From: transfer.From, To: transfer.To}
	}

	// Commit point.
	if err := s.transfers.Insert(ctx, transferID, transfer.From, transfer.To); err != nil {
		return err
	}

	if fromParty != nil && toParty != nil {
		if fromParty.kind == models.KindUser && toParty.kind == models.KindUser {
			if err := s.appendChatTransaction(ctx, transfer, transferID, note); err != nil {
				return err
			}
		} else if err := s.updateLink(ctx, fromParty, toParty, transferID, transfer.Amount, note, transfer.Timestamp); err != nil {
			return err
		}
	}

	if err := s.appendHistories(ctx, fromParty, toParty, transferID, transfer.Amount, note, transfer.Timestamp); err != nil {
		return err
	}

	s.logger.Info(ctx, "transfer recorded",
		"transfer_id", transferID, "amount", transfer.Amount.String())
	return nil
}

// appendChatTransaction puts a Transaction item into the chat between two
// users, creating the chat when the pair never talked before.
func (s *Service) appendChatTransaction(ctx context.Context, transfer *ledger.Transfer, transferID uint64, note string) error {
	chatID := models.ChatID(transfer.From, transfer.To)

	unlock := s.locks.Lock(chatLockKey(chatID))
	defer unlock()

	chat, err := s.chats.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		chat = models.NewChat(transfer.From, transfer.To, transfer.Timestamp)
	}

	chat.Append(models.NewTransaction(transfer.From, transferID, transfer.Amount, note, transfer.Timestamp))
	if err := s.chats.Save(ctx, chat); err != nil {
		return err
	}
	return s.touchChatRefs(ctx, chat)
}

// updateLink records the transfer on the business link when the parties are
// a user and a business, creating the link on first contact. Any other kind
// combination is a no-op.
func (s *Service) updateLink(ctx context.Context, from, to *party, transferID uint64, amount *big.Int, note string, ts time.Time) error {
	var user *party
	var business *party
	switch {
	case from.kind == models.KindUser && to.kind == models.KindBusiness:
		user, business = from, to
	case from.kind == models.KindBusiness && to.kind == models.KindUser:
		user, business = to, from
	default:
		return nil
	}

	linkID := models.LinkID(user.principal, business.principal)
	link, err := s.accounts.GetLink(ctx, linkID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		link = models.NewBusinessLink(user.user, business.business, ts)
	}

	link.AppendTransaction(models.LinkTransaction{
		Sender:     from.principal,
		TransferID: transferID,
		Amount:     new(big.Int).Set(amount),
		Note:       note,
		Timestamp:  ts,
	})
	if err := s.accounts.SaveLink(ctx, link); err != nil {
		return err
	}

	user.user.TouchBusiness(linkID, link.LastActivity)
	return s.accounts.SaveUser(ctx, user.user)
}

// appendHistories writes one history row per known party. A missing side
// shows up as an unknown counterparty on the other side's row.
func (s *Service) appendHistories(ctx context.Context, from, to *party, transferID uint64, amount *big.Int, note string, ts time.Time) error {
	if from != nil {
		entry := models.TransactionEntry{
			TransferID: transferID,
			Direction:  models.DirectionSent,
			Note:       note,
			Timestamp:  ts,
			Amount:     new(big.Int).Set(amount),
		}
		if to != nil {
			entry.Counterparty = to.name()
			entry.CounterpartyPayID = to.payID()
		} else {
			entry.Counterparty = "unknown"
		}
		if err := s.histories.Append(ctx, from.principal, entry); err != nil {
			return err
		}
	}

	if to != nil {
		entry := models.TransactionEntry{
			TransferID: transferID,
			Direction:  models.DirectionReceived,
			Note:       note,
			Timestamp:  ts,
			Amount:     new(big.Int).Set(amount),
		}
		if from != nil {
			entry.Counterparty = from.name()
			entry.CounterpartyPayID = from.payID()
		} else {
			entry.Counterparty = "unknown"
		}
		if err := s.histories.Append(ctx, to.principal, entry); err != nil {
			return err
		}
	}

	return nil
}

// lookupParty resolves a principal to a full account, or nil when the
// principal has no account here.
func (s *Service) lookupParty(ctx context.Context, principal string) (*party, error) {
	kind, err := s.accounts.Kind(ctx, principal)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}

	p := &party{principal: principal, kind: kind}
	switch kind {
	case models.KindUser:
		p.user, err = s.accounts.GetUser(ctx, principal)
	case models.KindBusiness:
		p.business, err = s.accounts.GetBusiness(ctx, principal)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
