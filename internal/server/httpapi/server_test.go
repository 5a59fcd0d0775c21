package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/paylink/internal/common"
	"github.com/dmitrijs2005/paylink/internal/logging"
	"github.com/dmitrijs2005/paylink/internal/server/auth"
	"github.com/dmitrijs2005/paylink/internal/server/chats"
	"github.com/dmitrijs2005/paylink/internal/server/directory"
	"github.com/dmitrijs2005/paylink/internal/server/history"
	"github.com/dmitrijs2005/paylink/internal/server/ledger"
	"github.com/dmitrijs2005/paylink/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type stubVerifier struct {
	transfers map[uint64]ledger.Transfer
}

func (s *stubVerifier) VerifyTransfer(ctx context.Context, transferID uint64) (*ledger.Transfer, error) {
	tr, ok := s.transfers[transferID]
	if !ok {
		return nil, &common.InvalidTransactionError{Detail: "no such transfer"}
	}
	cp := tr
	cp.Amount = new(big.Int).Set(tr.Amount)
	return &cp, nil
}

type apiFixture struct {
	ts       *httptest.Server
	verifier *stubVerifier
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	manager := repomanager.NewMemoryRepositoryManager()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	verifier := &stubVerifier{transfers: make(map[uint64]ledger.Transfer)}

	d := directory.NewService(manager.Accounts(), manager.Chats(), manager.Histories(), logger)
	c := chats.NewService(manager.Accounts(), manager.Chats(), manager.Histories(),
		manager.Transfers(), verifier, 24*time.Hour, logger)
	h := history.NewService(manager.Accounts(), manager.Histories(), logger)

	router := NewRouter(testSecret, NewHandler(d, c, h, logger), logger)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &apiFixture{ts: ts, verifier: verifier}
}

// do issues a request as principal ("" = anonymous) and decodes the JSON
// response into out when out is non-nil.
func (f *apiFixture) do(t *testing.T, method, path, principal string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	require.NoError(t, err)
	if principal != "" {
		token, err := auth.GenerateToken(principal, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func signUpUser(t *testing.T, f *apiFixture, principal, payID, name string) {
	t.Helper()
	resp := f.do(t, "POST", "/api/v1/signup", principal,
		map[string]string{"kind": "user", "pay_id": payID, "name": name}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)
	var body map[string]string
	resp := f.do(t, "GET", "/health", "", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAPI_SignUpFlow(t *testing.T) {
	f := newAPIFixture(t)

	t.Run("anonymous rejected", func(t *testing.T) {
		var body map[string]string
		resp := f.do(t, "POST", "/api/v1/signup", "",
			map[string]string{"kind": "user", "pay_id": "alice", "name": "Alice"}, &body)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "anonymous_caller", body["kind"])
	})

	t.Run("user signs up", func(t *testing.T) {
		var body map[string]any
		resp := f.do(t, "POST", "/api/v1/signup", "p-alice",
			map[string]string{"kind": "user", "pay_id": "Alice", "name": "Alice"}, &body)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "alice", body["pay_id"])
	})

	t.Run("alias conflict", func(t *testing.T) {
		var body map[string]string
		resp := f.do(t, "POST", "/api/v1/signup", "p-other",
			map[string]string{"kind": "user", "pay_id": "alice", "name": "Other"}, &body)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "pay_id_exists", body["kind"])
	})

	t.Run("availability", func(t *testing.T) {
		var body map[string]bool
		resp := f.do(t, "GET", "/api/v1/payids/alice/available", "", nil, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, body["available"])

		resp = f.do(t, "GET", "/api/v1/payids/fresh-alias/available", "", nil, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, body["available"])
	})

	t.Run("resolve requires account", func(t *testing.T) {
		resp := f.do(t, "GET", "/api/v1/payids/alice", "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]any
		resp = f.do(t, "GET", "/api/v1/payids/alice", "p-alice", nil, &body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["found"])
		assert.Equal(t, "p-alice", body["principal"])
	})
}

func TestAPI_ChatAndPaymentFlow(t *testing.T) {
	f := newAPIFixture(t)
	signUpUser(t, f, "p-alice", "alice", "Alice")
	signUpUser(t, f, "p-bob", "bob", "Bob")

	var chat map[string]any
	resp := f.do(t, "POST", "/api/v1/chats", "p-bob",
		map[string]any{"participant": map[string]string{"pay_id": "alice"}}, &chat)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	chatID := chat["id"].(string)

	resp = f.do(t, "POST", "/api/v1/chats/"+chatID+"/messages", "p-alice",
		map[string]string{"content": "hi"}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// bob requests 100 from alice
	var updated struct {
		Items []map[string]any `json:"items"`
	}
	resp = f.do(t, "POST", "/api/v1/chats/"+chatID+"/requests", "p-bob",
		map[string]string{"amount": "100", "note": "lunch"}, &updated)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "request_payment", updated.Items[1]["type"])

	// alice settles with a ledger transfer
	f.verifier.transfers[7] = ledger.Transfer{
		From: "p-alice", To: "p-bob", Amount: big.NewInt(100), Timestamp: time.Now().UTC(),
	}
	var settled struct {
		Items []struct {
			Type        string          `json:"type"`
			Fulfillment *map[string]any `json:"fulfillment"`
		} `json:"items"`
	}
	resp = f.do(t, "POST", fmt.Sprintf("/api/v1/chats/%s/requests/%d/record", chatID, 1), "p-alice",
		map[string]uint64{"transfer_id": 7}, &settled)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, settled.Items[1].Fulfillment)

	// replay conflicts
	var conflict map[string]string
	resp = f.do(t, "POST", fmt.Sprintf("/api/v1/chats/%s/requests/%d/record", chatID, 1), "p-alice",
		map[string]uint64{"transfer_id": 7}, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_recorded", conflict["kind"])

	// outsiders cannot read the chat
	resp = f.do(t, "GET", "/api/v1/chats/"+chatID, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	signUpUser(t, f, "p-carol", "carol", "Carol")
	resp = f.do(t, "GET", "/api/v1/chats/"+chatID, "p-carol", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_DirectTransferAndHistory(t *testing.T) {
	f := newAPIFixture(t)
	signUpUser(t, f, "p-alice", "alice", "Alice")

	resp := f.do(t, "POST", "/api/v1/signup", "p-shop",
		map[string]string{"kind": "business", "pay_id": "shop", "name": "Shop", "category": "food"}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	f.verifier.transfers[21] = ledger.Transfer{
		From: "p-alice", To: "p-shop", Amount: big.NewInt(55), Timestamp: time.Now().UTC(),
	}
	resp = f.do(t, "POST", "/api/v1/transfers", "p-alice",
		map[string]any{"transfer_id": 21, "note": "groceries"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var delta struct {
		Transactions []map[string]any `json:"transactions"`
		Length       int              `json:"length"`
	}
	resp = f.do(t, "GET", "/api/v1/businesses/me/transactions?since=0", "p-shop", nil, &delta)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, delta.Transactions, 1)
	assert.Equal(t, 1, delta.Length)
	assert.Equal(t, "received", delta.Transactions[0]["direction"])
	assert.Equal(t, "55", delta.Transactions[0]["amount"])

	// cursor at the end yields nothing new
	resp = f.do(t, "GET", "/api/v1/businesses/me/transactions?since=1", "p-shop", nil, &delta)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, delta.Transactions)

	// bad ledger claim
	var body map[string]string
	resp = f.do(t, "POST", "/api/v1/transfers", "p-alice",
		map[string]any{"transfer_id": 99}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_transaction", body["kind"])
}

func TestAPI_FetchData(t *testing.T) {
	f := newAPIFixture(t)

	var anon struct {
		SignedUp bool `json:"signed_up"`
	}
	resp := f.do(t, "GET", "/api/v1/data", "", nil, &anon)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, anon.SignedUp)

	signUpUser(t, f, "p-alice", "alice", "Alice")
	signUpUser(t, f, "p-bob", "bob", "Bob")
	resp = f.do(t, "POST", "/api/v1/chats", "p-alice",
		map[string]any{"participant": map[string]string{"pay_id": "bob"}}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var data struct {
		SignedUp bool             `json:"signed_up"`
		Kind     string           `json:"kind"`
		User     map[string]any   `json:"user"`
		Chats    []map[string]any `json:"chats"`
	}
	resp = f.do(t, "GET", "/api/v1/data?full=1", "p-alice", nil, &data)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, data.SignedUp)
	assert.Equal(t, "user", data.Kind)
	assert.Equal(t, "alice", data.User["pay_id"])
	assert.Len(t, data.Chats, 1)
}
