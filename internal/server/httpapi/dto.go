package httpapi

import (
	"time"

	"github.com/dmitrijs2005/paylink/internal/server/directory"
	"github.com/dmitrijs2005/paylink/internal/server/models"
)

// Wire DTOs. Amounts travel as decimal strings to stay precise in any
// client; timeline items carry a "type" discriminator.

type accountRefDTO struct {
	Principal string `json:"principal,omitempty"`
	PayID     string `json:"pay_id,omitempty"`
}

func (r accountRefDTO) toModel() models.AccountRef {
	return models.AccountRef{Principal: r.Principal, PayID: r.PayID}
}

type userDTO struct {
	Principal  string    `json:"principal"`
	PayID      string    `json:"pay_id"`
	Name       string    `json:"name"`
	ProfilePic string    `json:"profile_pic,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toUserDTO(u *models.User) *userDTO {
	return &userDTO{
		Principal:  u.Principal,
		PayID:      u.PayID,
		Name:       u.Name,
		ProfilePic: u.ProfilePic,
		CreatedAt:  u.CreatedAt,
	}
}

type businessDTO struct {
	Principal string    `json:"principal"`
	PayID     string    `json:"pay_id"`
	Name      string    `json:"name"`
	Logo      string    `json:"logo,omitempty"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func toBusinessDTO(b *models.Business) *businessDTO {
	return &businessDTO{
		Principal: b.Principal,
		PayID:     b.PayID,
		Name:      b.Name,
		Logo:      b.Logo,
		Category:  string(b.Category),
		CreatedAt: b.CreatedAt,
	}
}

type fulfillmentDTO struct {
	TransferID uint64    `json:"transfer_id"`
	PaidAt     time.Time `json:"paid_at"`
}

type itemDTO struct {
	Type      string    `json:"type"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	ReadBy    []string  `json:"read_by"`

	Content string `json:"content,omitempty"`

	TransferID uint64 `json:"transfer_id,omitempty"`
	Amount     string `json:"amount,omitempty"`
	Note       string `json:"note,omitempty"`

	RequestedAt *time.Time      `json:"requested_at,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	Fulfillment *fulfillmentDTO `json:"fulfillment,omitempty"`
}

func toItemDTO(item models.TimelineItem) itemDTO {
	base := item.Base()
	dto := itemDTO{
		Sender:    base.Sender,
		Timestamp: base.Timestamp,
		ReadBy:    base.ReadBy,
	}

	switch v := item.(type) {
	case *models.Message:
		dto.Type = "message"
		dto.Content = v.Content
	case *models.Transaction:
		dto.Type = "transaction"
		dto.TransferID = v.TransferID
		dto.Amount = v.Amount.String()
		dto.Note = v.Note
	case *models.RequestPayment:
		dto.Type = "request_payment"
		dto.Amount = v.Amount.String()
		dto.Note = v.Note
		requestedAt, expiresAt := v.RequestedAt, v.ExpiresAt
		dto.RequestedAt = &requestedAt
		dto.ExpiresAt = &expiresAt
		if v.Fulfillment != nil {
			dto.Fulfillment = &fulfillmentDTO{
				TransferID: v.Fulfillment.TransferID,
				PaidAt:     v.Fulfillment.PaidAt,
			}
		}
	}
	return dto
}

type chatDTO struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	Items        []itemDTO `json:"items"`
	LastActivity time.Time `json:"last_activity"`
}

func toChatDTO(c *models.Chat) *chatDTO {
	items := make([]itemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, toItemDTO(item))
	}
	return &chatDTO{
		ID:           c.ID,
		Participants: []string{c.Participants[0], c.Participants[1]},
		Items:        items,
		LastActivity: c.LastActivity,
	}
}

func toChatDTOs(list []*models.Chat) []*chatDTO {
	out := make([]*chatDTO, 0, len(list))
	for _, c := range list {
		out = append(out, toChatDTO(c))
	}
	return out
}

type linkTransactionDTO struct {
	Sender     string    `json:"sender"`
	TransferID uint64    `json:"transfer_id"`
	Amount     string    `json:"amount"`
	Note       string    `json:"note,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type linkDTO struct {
	ID                string               `json:"id"`
	UserPrincipal     string               `json:"user_principal"`
	BusinessPrincipal string               `json:"business_principal"`
	BusinessName      string               `json:"business_name"`
	BusinessPayID     string               `json:"business_pay_id"`
	BusinessLogo      string               `json:"business_logo,omitempty"`
	BusinessCategory  string               `json:"business_category"`
	Transactions      []linkTransactionDTO `json:"transactions"`
	LastActivity      time.Time            `json:"last_activity"`
}

func toLinkDTO(l *models.BusinessLink) *linkDTO {
	txs := make([]linkTransactionDTO, 0, len(l.Transactions))
	for _, tx := range l.Transactions {
		txs = append(txs, linkTransactionDTO{
			Sender:     tx.Sender,
			TransferID: tx.TransferID,
			Amount:     tx.Amount.String(),
			Note:       tx.Note,
			Timestamp:  tx.Timestamp,
		})
	}
	return &linkDTO{
		ID:                l.ID,
		UserPrincipal:     l.UserPrincipal,
		BusinessPrincipal: l.BusinessPrincipal,
		BusinessName:      l.BusinessName,
		BusinessPayID:     l.BusinessPayID,
		BusinessLogo:      l.BusinessLogo,
		BusinessCategory:  string(l.BusinessCategory),
		Transactions:      txs,
		LastActivity:      l.LastActivity,
	}
}

func toLinkDTOs(list []*models.BusinessLink) []*linkDTO {
	out := make([]*linkDTO, 0, len(list))
	for _, l := range list {
		out = append(out, toLinkDTO(l))
	}
	return out
}

type historyEntryDTO struct {
	TransferID        uint64    `json:"transfer_id"`
	Direction         string    `json:"direction"`
	Counterparty      string    `json:"counterparty"`
	CounterpartyPayID string    `json:"counterparty_pay_id,omitempty"`
	Note              string    `json:"note,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	Amount            string    `json:"amount"`
}

func toHistoryDTOs(entries []models.TransactionEntry) []historyEntryDTO {
	out := make([]historyEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryDTO{
			TransferID:        e.TransferID,
			Direction:         string(e.Direction),
			Counterparty:      e.Counterparty,
			CounterpartyPayID: e.CounterpartyPayID,
			Note:              e.Note,
			Timestamp:         e.Timestamp,
			Amount:            e.Amount.String(),
		})
	}
	return out
}

type dataDTO struct {
	SignedUp bool   `json:"signed_up"`
	Kind     string `json:"kind,omitempty"`

	User  *userDTO   `json:"user,omitempty"`
	Chats []*chatDTO `json:"chats,omitempty"`
	Links []*linkDTO `json:"links,omitempty"`

	Business      *businessDTO      `json:"business,omitempty"`
	History       []historyEntryDTO `json:"history,omitempty"`
	HistoryLength int               `json:"history_length,omitempty"`
}

func toDataDTO(d *directory.Data) *dataDTO {
	dto := &dataDTO{SignedUp: d.SignedUp}
	if !d.SignedUp {
		return dto
	}
	dto.Kind = string(d.Kind)
	if d.User != nil {
		dto.User = toUserDTO(d.User)
		dto.Chats = toChatDTOs(d.Chats)
		dto.Links = toLinkDTOs(d.Links)
	}
	if d.Business != nil {
		dto.Business = toBusinessDTO(d.Business)
		dto.History = toHistoryDTOs(d.History)
		dto.HistoryLength = d.HistoryLength
	}
	return dto
}
