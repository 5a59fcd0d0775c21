package httpapi

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/chats"
	"github.com/dmitrijs2005/paylink/internal/server/directory"
	"github.com/dmitrijs2005/paylink/internal/server/history"
	"github.com/gorilla/mux"
)

type Handler struct {
	directory *directory.Service
	chats     *chats.Service
	history   *history.Service
	logger    logging.Logger
}

func NewHandler(d *directory.Service, c *chats.Service, h *history.Service, logger logging.Logger) *Handler {
	return &Handler{directory: d, chats: c, history: h, logger: logger.With("module", "httpapi")}
}

// errorKind gives clients a stable machine-readable discriminator alongside
// the human-readable message.
var errorKinds = []struct {
	sentinel error
	kind     string
	status   int
}{
	{common.ErrAnonymousCaller, "anonymous_caller", http.StatusUnauthorized},
	{common.ErrTokenExpired, "token_expired", http.StatusUnauthorized},
	{common.ErrInvalidToken, "invalid_token", http.StatusUnauthorized},
	{common.ErrNotAParticipant, "not_a_participant", http.StatusForbidden},
	{common.ErrAccountNotFound, "account_not_found", http.StatusNotFound},
	{common.ErrBusinessNotFound, "business_not_found", http.StatusNotFound},
	{common.ErrParticipantNotFound, "participant_not_found", http.StatusNotFound},
	{common.ErrChatNotFound, "chat_not_found", http.StatusNotFound},
	{common.ErrRequestPaymentNotFound, "request_payment_not_found", http.StatusNotFound},
	{common.ErrBothAccountsNotFound, "both_accounts_not_found", http.StatusNotFound},
	{common.ErrAccountExists, "account_exists", http.StatusConflict},
	{common.ErrPayIDExists, "pay_id_exists", http.StatusConflict},
	{common.ErrAlreadyRecorded, "already_recorded", http.StatusConflict},
	{common.ErrInvalidPayID, "invalid_pay_id", http.StatusUnprocessableEntity},
	{common.ErrInvalidAmount, "invalid_amount", http.StatusUnprocessableEntity},
	{common.ErrCallerAndParticipantSame, "caller_and_participant_same", http.StatusUnprocessableEntity},
	{common.ErrRequestExpired, "request_expired", http.StatusUnprocessableEntity},
	{common.ErrInvalidTransaction, "invalid_transaction", http.StatusUnprocessableEntity},
	{common.ErrRecordFailed, "record_failed", http.StatusUnprocessableEntity},
	{common.ErrInterCanisterCall, "ledger_unavailable", http.StatusBadGateway},
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	for _, e := range errorKinds {
		if errors.Is(err, e.sentinel) {
			respondWithJSON(w, e.status, map[string]string{"kind": e.kind, "error": err.Error()})
			return
		}
	}
	h.logger.Error(r.Context(), "internal error", "error", err)
	respondWithJSON(w, http.StatusInternalServerError,
		map[string]string{"kind": "internal", "error": "internal server error"})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithJSON(w, http.StatusBadRequest,
			map[string]string{"kind": "bad_request", "error": "malformed JSON body"})
		return false
	}
	return true
}

// parseAmount accepts a decimal string amount from the wire.
func parseAmount(s string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, common.ErrInvalidAmount
	}
	return amount, nil
}

func (h *Handler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SignUpHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind       string `json:"kind"`
		PayID      string `json:"pay_id"`
		Name       string `json:"name"`
		ProfilePic string `json:"profile_pic"`
		Logo       string `json:"logo"`
		Category   string `json:"category"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	caller := callerPrincipal(r.Context())

	switch req.Kind {
	case "business":
		business, err := h.directory.SignUpBusiness(r.Context(), caller, req.PayID, req.Name, req.Logo, req.Category)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, toBusinessDTO(business))
	case "user", "":
		user, err := h.directory.SignUpUser(r.Context(), caller, req.PayID, req.Name, req.ProfilePic)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, toUserDTO(user))
	default:
		respondWithJSON(w, http.StatusBadRequest,
			map[string]string{"kind": "bad_request", "error": "kind must be user or business"})
	}
}

func (h *Handler) AliasAvailableHandler(w http.ResponseWriter, r *http.Request) {
	available, err := h.directory.IsAliasAvailable(r.Context(), mux.Vars(r)["payId"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"available": available})
}

func (h *Handler) ResolveAliasHandler(w http.ResponseWriter, r *http.Request) {
	principal, found, err := h.directory.ResolveAlias(r.Context(), callerPrincipal(r.Context()), mux.Vars(r)["payId"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !found {
		respondWithJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"found": true, "principal": principal})
}

func (h *Handler) AddBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var req accountRefDTO
	if !decodeBody(w, r, &req) {
		return
	}
	link, err := h.directory.AddBusinessRelationship(r.Context(), callerPrincipal(r.Context()), req.toModel())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toLinkDTO(link))
}

func (h *Handler) FetchDataHandler(w http.ResponseWriter, r *http.Request) {
	full := r.URL.Query().Get("full") == "1"
	data, err := h.directory.FetchData(r.Context(), callerPrincipal(r.Context()), full)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toDataDTO(data))
}

func (h *Handler) CreateChatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Participant accountRefDTO `json:"participant"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	chat, err := h.chats.CreateChat(r.Context(), callerPrincipal(r.Context()), req.Participant.toModel())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toChatDTO(chat))
}

func (h *Handler) MyChatsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.chats.MyChats(r.Context(), callerPrincipal(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toChatDTOs(list))
}

func (h *Handler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	chat, err := h.chats.GetChat(r.Context(), callerPrincipal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, toChatDTO(chat))
}

func (h *Handler) AddMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	chat, err := h.chats.AddMessage(r.Context(), callerPrincipal(r.Context()), mux.Vars(r)["id"], req.Content)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toChatDTO(chat))
}

func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.chats.MarkRead(r.Context(), callerPrincipal(r.Context()), mux.Vars(r)["id"]); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) RequestPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount string `json:"amount"`
		Note   string `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	chat, err := h.chats.RequestPayment(r.Context(), callerPrincipal(r.Context()), mux.Vars(r)["id"], amount, req.Note)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, toChatDTO(chat))
}

func (h *Handler) RecordRequestedPaymentHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		h.respondError(w, r, common.ErrRequestPaymentNotFound)
		return
	}
	var req struct {
		TransferID uint64 `json:"transfer_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	chat, err := h.chats.RecordRequestedPayment(r.Context(), callerPrincipal(r.Context()), vars["id"], index, req.TransferID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	recordedTransfersTotal.Inc()
	respondWithJSON(w, http.StatusOK, toChatDTO(chat))
}

func (h *Handler) RecordTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransferID uint64 `json:"transfer_id"`
		Note       string `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.chats.RecordTransfer(r.Context(), callerPrincipal(r.Context()), req.TransferID, req.Note); err != nil {
		h.respondError(w, r, err)
		return
	}
	recordedTransfersTotal.Inc()
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handler) NewTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	since := 0
	if s := r.URL.Query().Get("since"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respondWithJSON(w, http.StatusBadRequest,
				map[string]string{"kind": "bad_request", "error": "since must be an integer"})
			return
		}
		since = n
	}

	caller := callerPrincipal(r.Context())
	entries, err := h.history.GetNewTransactions(r.Context(), caller, since)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	length, err := h.history.Length(r.Context(), caller)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"transactions": toHistoryDTOs(entries),
		"length":       length,
	})
}
