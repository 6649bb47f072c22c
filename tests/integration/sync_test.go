package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/httpapi"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/adapter/simplefin"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/domain"
	"github.com/nrmontgomery1984-cell/looops-app-sub006/internal/usecase/syncer"
)

// These tests run the whole pipeline against a stub aggregator: the real
// HTTP client fetches from an httptest server, the engine normalizes,
// reconciles and categorizes, and the JSON API reports the change-set.
// Storage is in-memory so no external services are needed.

type memStore struct {
	mu           sync.Mutex
	connections  map[uuid.UUID]*domain.Connection
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	rules        []domain.CategoryRule
	categories   []domain.Category
}

func newMemStore() *memStore {
	return &memStore{
		connections:  make(map[uuid.UUID]*domain.Connection),
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
	}
}

func (s *memStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.connections[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) GetByAccessURL(ctx context.Context, accessURL string) (*domain.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.connections {
		if c.AccessURL == accessURL {
			copied := *c
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memStore) Create(ctx context.Context, conn *domain.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *conn
	s.connections[conn.ID] = &copied
	return nil
}

func (s *memStore) Update(ctx context.Context, conn *domain.Connection) error {
	return s.Create(ctx, conn)
}

type accountStore struct{ *memStore }

func (s accountStore) ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, a := range s.accounts {
		if a.ConnectionID == connectionID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s accountStore) Upsert(ctx context.Context, accounts []domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return nil
}

type txStore struct{ *memStore }

func (s txStore) ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range s.transactions {
		if tx.ConnectionID == connectionID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s txStore) Upsert(ctx context.Context, txs []domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		s.transactions[tx.ID] = tx
	}
	return nil
}

type ruleStore struct{ *memStore }

func (s ruleStore) ListRules(ctx context.Context) ([]domain.CategoryRule, error) {
	return s.rules, nil
}

func (s ruleStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories, nil
}

// harness wires the stub aggregator, the engine and the API together.
type harness struct {
	store     *memStore
	api       http.Handler
	accessURL string

	mu      sync.Mutex
	payload simplefin.AccountSet
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{store: newMemStore()}

	aggregator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(h.payload)
	}))
	t.Cleanup(aggregator.Close)

	parsed, err := url.Parse(aggregator.URL)
	require.NoError(t, err)
	h.accessURL = fmt.Sprintf("http://user:secret@%s/", parsed.Host)

	svc := syncer.NewService(
		simplefin.NewClient(5*time.Second),
		h.store,
		accountStore{h.store},
		txStore{h.store},
		ruleStore{h.store},
	)
	h.api = httpapi.NewServer(svc, h.store, nil).Routes()
	return h
}

func (h *harness) setPayload(set simplefin.AccountSet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payload = set
}

func (h *harness) sync(t *testing.T) httpapi.SyncResponse {
	t.Helper()
	raw, err := json.Marshal(httpapi.SyncRequest{AccessURL: h.accessURL})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "sync should succeed: %s", rec.Body.String())

	var resp httpapi.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func chequingWith(txs ...simplefin.Transaction) simplefin.AccountSet {
	return simplefin.AccountSet{
		Accounts: []simplefin.Account{{
			ID:          "acct-chequing",
			Name:        "Everyday Chequing",
			Currency:    "CAD",
			Balance:     "2500.00",
			BalanceDate: 1709647200,
			Org: simplefin.Org{
				Domain: "mybank.example.com",
				Name:   "My Bank",
			},
			Transactions: txs,
		}},
	}
}

func TestSyncFlow_FetchNormalizeCategorize(t *testing.T) {
	h := newHarness(t)

	diningID := uuid.New()
	h.store.categories = []domain.Category{{ID: diningID, Name: "Dining Out", Loop: "social"}}
	h.store.rules = []domain.CategoryRule{{
		ID:          uuid.New(),
		Pattern:     "tim hortons",
		PatternType: domain.PatternTypeContains,
		CategoryID:  diningID,
		Priority:    10,
	}}

	h.setPayload(chequingWith(simplefin.Transaction{
		ID:          "txn-1",
		Posted:      1709647200,
		Amount:      "-12.50",
		Description: "POS DEBIT TIM HORTONS #1234 TORONTO ON",
	}))

	resp := h.sync(t)

	require.Len(t, resp.Accounts, 1)
	assert.Equal(t, "acct-chequing", resp.Accounts[0].ID)
	assert.Equal(t, "checking", resp.Accounts[0].Type)
	assert.Equal(t, int64(250000), resp.Accounts[0].Balance)
	assert.Equal(t, "My Bank", resp.Accounts[0].Institution)

	require.Len(t, resp.Transactions, 1)
	tx := resp.Transactions[0]
	assert.Equal(t, int64(-1250), tx.Amount)
	assert.Equal(t, "Tim Hortons", tx.CleanDescription)
	assert.Equal(t, "2024-03-05", tx.Date)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, diningID.String(), *tx.CategoryID)
	assert.Equal(t, "social", tx.Loop)

	conn, err := h.store.GetByAccessURL(context.Background(), h.accessURL)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusActive, conn.Status)
	require.NotNil(t, conn.LastSyncAt)
}

func TestSyncFlow_RerunIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.setPayload(chequingWith(simplefin.Transaction{
		ID:          "txn-1",
		Posted:      1709647200,
		Amount:      "-12.50",
		Description: "GROCERY MART",
	}))

	first := h.sync(t)
	require.Len(t, first.Transactions, 1)

	second := h.sync(t)
	assert.Empty(t, second.Transactions, "identical payload should produce no changes")
	assert.Len(t, h.store.transactions, 1)
}

func TestSyncFlow_PendingToPostedKeepsUserEdits(t *testing.T) {
	h := newHarness(t)
	h.setPayload(chequingWith(simplefin.Transaction{
		ID:          "txn-1",
		Posted:      1709647200,
		Amount:      "-45.00",
		Description: "RESTAURANT HOLD",
		Pending:     true,
	}))

	h.sync(t)

	// User annotates the pending transaction between syncs.
	conn, err := h.store.GetByAccessURL(context.Background(), h.accessURL)
	require.NoError(t, err)
	id := domain.TransactionID(conn.ID, "txn-1")
	stored := h.store.transactions[id]
	stored.User.Notes = "team dinner"
	stored.User.IsReviewed = true
	h.store.transactions[id] = stored

	// The hold settles with a slightly different amount.
	h.setPayload(chequingWith(simplefin.Transaction{
		ID:          "txn-1",
		Posted:      1709733600,
		Amount:      "-47.80",
		Description: "RESTAURANT",
	}))

	resp := h.sync(t)

	require.Len(t, resp.Transactions, 1)
	tx := resp.Transactions[0]
	assert.Equal(t, int64(-4780), tx.Amount)
	assert.False(t, tx.Pending)
	assert.Equal(t, "team dinner", tx.Notes)
	assert.True(t, tx.IsReviewed)
	assert.Len(t, h.store.transactions, 1, "settling must not create a second row")
}

func TestSyncFlow_BadCredentialsFlipStatus(t *testing.T) {
	h := newHarness(t)

	aggregator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(aggregator.Close)

	parsed, err := url.Parse(aggregator.URL)
	require.NoError(t, err)
	accessURL := fmt.Sprintf("http://user:revoked@%s/", parsed.Host)

	raw, err := json.Marshal(httpapi.SyncRequest{AccessURL: accessURL})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/sync", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.api.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	conn, err := h.store.GetByAccessURL(context.Background(), accessURL)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusNeedsReauth, conn.Status)
	require.NotNil(t, conn.LastSyncError)
}
