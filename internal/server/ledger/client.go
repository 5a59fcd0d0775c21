// Package ledger implements the reconciliation client: given a
// caller-claimed transfer id, it asks the external ledger index for the
// authoritative sender, receiver, amount, and timestamp of the transfer.
//
// The client is a pure adapter. Its only local state is a cache of already
// verified transfers, which is safe because the ledger call is a pure read
// over an append-only log.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
)

// Transfer is the ledger's authoritative record of a settled transfer.
type Transfer struct {
	From      string
	To        string
	Amount    *big.Int
	Timestamp time.Time
}

// Verifier is the capability the recording paths depend on. Implementations
// must distinguish transport failures (InterCanisterCallError, retryable)
// from semantic ones (InvalidTransactionError, terminal).
type Verifier interface {
	VerifyTransfer(ctx context.Context, transferID uint64) (*Transfer, error)
}

// transactionsResponse mirrors the ledger index wire format for a
// single-transaction window query.
type transactionsResponse struct {
	LogLength    uint64 `json:"log_length"`
	Transactions []struct {
		Kind      string `json:"kind"`
		Timestamp uint64 `json:"timestamp"` // unix nanoseconds
		Transfer  *struct {
			From   string      `json:"from"`
			To     string      `json:"to"`
			Amount json.Number `json:"amount"`
		} `json:"transfer"`
	} `json:"transactions"`
}

// Client talks to the ledger index over HTTP.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger

	mu    sync.Mutex
	cache map[uint64]*Transfer
}

func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With("module", "ledger_client"),
		cache:   make(map[uint64]*Transfer),
	}
}

// VerifyTransfer fetches the transaction window [transferID, transferID+1)
// from the index and validates that it holds a transfer. Safe to call
// repeatedly with the same id.
func (c *Client) VerifyTransfer(ctx context.Context, transferID uint64) (*Transfer, error) {
	c.mu.Lock()
	cached, ok := c.cache[transferID]
	c.mu.Unlock()
	if ok {
		return cached.clone(), nil
	}

	url := fmt.Sprintf("%s/transactions?start=%d&length=1", c.baseURL, transferID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &common.InterCanisterCallError{Detail: err.Error(), Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "ledger index unreachable", "transfer_id", transferID, "error", err)
		return nil, &common.InterCanisterCallError{Detail: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("ledger index returned status %d", resp.StatusCode)
		return nil, &common.InterCanisterCallError{Detail: detail}
	}

	var body transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &common.InterCanisterCallError{Detail: fmt.Sprintf("malformed response: %v", err), Err: err}
	}

	transfer, err := inspectTransfer(transferID, &body)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[transferID] = transfer.clone()
	c.mu.Unlock()

	return transfer, nil
}

// inspectTransfer validates the index response against the claimed id.
func inspectTransfer(transferID uint64, body *transactionsResponse) (*Transfer, error) {
	if transferID >= body.LogLength {
		return nil, &common.InvalidTransactionError{
			Detail: fmt.Sprintf("transfer id %d is beyond the ledger log length %d", transferID, body.LogLength),
		}
	}
	if len(body.Transactions) == 0 {
		return nil, &common.InvalidTransactionError{
			Detail: fmt.Sprintf("ledger index returned no transaction for id %d", transferID),
		}
	}

	tx := body.Transactions[0]
	if tx.Transfer == nil {
		return nil, &common.InvalidTransactionError{
			Detail: fmt.Sprintf("expected a transfer, but transaction kind is %q", tx.Kind),
		}
	}

	amount, ok := new(big.Int).SetString(tx.Transfer.Amount.String(), 10)
	if !ok {
		return nil, &common.InvalidTransactionError{
			Detail: fmt.Sprintf("malformed amount %q", tx.Transfer.Amount),
		}
	}

	return &Transfer{
		From:      tx.Transfer.From,
		To:        tx.Transfer.To,
		Amount:    amount,
		Timestamp: time.Unix(0, int64(tx.Timestamp)).UTC(),
	}, nil
}

func (t *Transfer) clone() *Transfer {
	cp := *t
	cp.Amount = new(big.Int).Set(t.Amount)
	return &cp
}
