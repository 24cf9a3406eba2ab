package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/nestegg-backend/internal/adapter/repository/memory"
	"github.com/simaogato/nestegg-backend/internal/domain"
	"github.com/simaogato/nestegg-backend/internal/identity"
	"github.com/simaogato/nestegg-backend/internal/usecase/ledger"
	"github.com/simaogato/nestegg-backend/internal/usecase/summary"
)

const testSecret = "http-test-secret"

type apiClient struct {
	t       *testing.T
	handler http.Handler
	token   string
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store := memory.NewStore()
	h := NewHandler(ledger.NewCoordinator(store, nil, logger), summary.NewSummaryService(store), summary.DefaultMonths, logger)
	return NewRouter(h, identity.NewVerifier(testSecret), logger)
}

func newAPIClient(t *testing.T, handler http.Handler, userID uuid.UUID) *apiClient {
	token, err := identity.NewIssuer(testSecret, time.Hour).Issue(userID)
	require.NoError(t, err)
	return &apiClient{t: t, handler: handler, token: token}
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func (c *apiClient) mustDo(method, path string, body any, want int) map[string]any {
	c.t.Helper()
	code, out := c.do(method, path, body)
	require.Equal(c.t, want, code, "%s %s: %v", method, path, out)
	return out
}

func field(m map[string]any, path ...string) any {
	var cur any = m
	for _, p := range path {
		cur = cur.(map[string]any)[p]
	}
	return cur
}

func TestRouter_LedgerFlow(t *testing.T) {
	api := newAPIClient(t, newTestRouter(t), uuid.New())

	created := api.mustDo(http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Main", "initial_amount": "100"}, http.StatusCreated)
	walletID := field(created, "wallet", "id").(string)
	assert.Equal(t, "100.00", field(created, "wallet", "balance"))
	assert.Equal(t, "Initial deposit", field(created, "entry", "description"))

	savings := api.mustDo(http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Savings"}, http.StatusCreated)
	savingsID := field(savings, "wallet", "id").(string)
	assert.Nil(t, savings["entry"])

	deposit := api.mustDo(http.MethodPost, "/api/v1/wallets/"+walletID+"/deposits", map[string]any{"amount": 50.555}, http.StatusCreated)
	assert.Equal(t, "150.56", field(deposit, "wallet", "balance"))

	goal := api.mustDo(http.MethodPost, "/api/v1/goals", map[string]any{"name": "Trip", "target_amount": "200", "period_days": 30}, http.StatusCreated)
	goalID := goal["id"].(string)

	contribution := api.mustDo(http.MethodPost, "/api/v1/goals/"+goalID+"/contributions", map[string]any{"wallet_id": walletID, "amount": "60"}, http.StatusCreated)
	assert.Equal(t, "90.56", field(contribution, "wallet", "balance"))
	assert.Equal(t, "60.00", field(contribution, "goal", "current_amount"))
	assert.Equal(t, "Contribution to goal: Trip", field(contribution, "entry", "description"))

	transfer := api.mustDo(http.MethodPost, "/api/v1/transfers", map[string]any{"from_wallet_id": walletID, "to_wallet_id": savingsID, "amount": "40"}, http.StatusCreated)
	assert.Equal(t, "50.56", field(transfer, "wallet", "balance"))
	assert.Equal(t, "40.00", field(transfer, "counterparty", "balance"))

	reversed := api.mustDo(http.MethodPost, "/api/v1/entries/"+field(contribution, "entry", "id").(string)+"/reverse", nil, http.StatusOK)
	assert.Equal(t, "110.56", field(reversed, "wallet", "balance"))
	assert.Equal(t, "0.00", field(reversed, "goal", "current_amount"))
	assert.Equal(t, true, field(reversed, "entry", "reversed"))

	history := api.mustDo(http.MethodGet, "/api/v1/wallets/"+walletID+"/entries?limit=2", nil, http.StatusOK)
	assert.Len(t, history["entries"], 2)
	assert.Equal(t, float64(4), history["total"])

	all := api.mustDo(http.MethodGet, "/api/v1/entries?include_reversed=true", nil, http.StatusOK)
	assert.Equal(t, float64(4), all["total"])

	sum := api.mustDo(http.MethodGet, "/api/v1/summary?months=3", nil, http.StatusOK)
	assert.Equal(t, "150.56", sum["current_balance"])
	assert.Len(t, sum["monthly"], 3)

	stats := api.mustDo(http.MethodGet, "/api/v1/statistics?period=month", nil, http.StatusOK)
	assert.Equal(t, "month", stats["period"])
	assert.Equal(t, float64(2), stats["deposit_count"])
}

func TestRouter_ErrorMapping(t *testing.T) {
	api := newAPIClient(t, newTestRouter(t), uuid.New())

	created := api.mustDo(http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Main", "initial_amount": "10"}, http.StatusCreated)
	walletID := field(created, "wallet", "id").(string)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"malformed id", http.MethodGet, "/api/v1/wallets/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown wallet", http.MethodGet, "/api/v1/wallets/" + uuid.NewString(), nil, http.StatusNotFound},
		{"missing amount", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{}, http.StatusBadRequest},
		{"zero amount", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{"amount": "0"}, http.StatusBadRequest},
		{"non-numeric amount", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{"amount": "abc"}, http.StatusBadRequest},
		{"amount with huge exponent", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{"amount": "1e10000000"}, http.StatusBadRequest},
		{"amount beyond range", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{"amount": "1000000000000"}, http.StatusBadRequest},
		{"balance beyond range", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{"amount": "999999999999.99"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/api/v1/wallets/" + walletID + "/deposits", map[string]any{"amount": "1", "extra": true}, http.StatusBadRequest},
		{"insufficient funds", http.MethodPost, "/api/v1/wallets/" + walletID + "/withdrawals", map[string]any{"amount": "10.01"}, http.StatusUnprocessableEntity},
		{"withdrawal with goal", http.MethodPost, "/api/v1/wallets/" + walletID + "/withdrawals", map[string]any{"amount": "1", "goal_id": uuid.NewString()}, http.StatusBadRequest},
		{"referenced wallet", http.MethodDelete, "/api/v1/wallets/" + walletID, nil, http.StatusConflict},
		{"unknown period", http.MethodGet, "/api/v1/statistics?period=decade", nil, http.StatusBadRequest},
		{"negative months", http.MethodGet, "/api/v1/summary?months=-1", nil, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v1/nothing", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code, "%v", out)
			assert.NotEmpty(t, out["error"])
		})
	}

	wallet := api.mustDo(http.MethodGet, "/api/v1/wallets/"+walletID, nil, http.StatusOK)
	assert.Equal(t, "10.00", wallet["balance"])
}

func TestRouter_DoubleReversalConflicts(t *testing.T) {
	api := newAPIClient(t, newTestRouter(t), uuid.New())

	created := api.mustDo(http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Main", "initial_amount": "10"}, http.StatusCreated)
	entryID := field(created, "entry", "id").(string)

	api.mustDo(http.MethodPost, "/api/v1/entries/"+entryID+"/reverse", nil, http.StatusOK)
	api.mustDo(http.MethodPost, "/api/v1/entries/"+entryID+"/reverse", nil, http.StatusConflict)
	api.mustDo(http.MethodPatch, "/api/v1/entries/"+entryID, map[string]any{"description": "late edit"}, http.StatusConflict)
}

func TestRouter_UserIsolation(t *testing.T) {
	router := newTestRouter(t)
	alice := newAPIClient(t, router, uuid.New())
	bob := newAPIClient(t, router, uuid.New())

	created := alice.mustDo(http.MethodPost, "/api/v1/wallets", map[string]any{"name": "Alice", "initial_amount": "25"}, http.StatusCreated)
	walletID := field(created, "wallet", "id").(string)

	bob.mustDo(http.MethodGet, "/api/v1/wallets/"+walletID, nil, http.StatusNotFound)
	bob.mustDo(http.MethodPost, "/api/v1/wallets/"+walletID+"/deposits", map[string]any{"amount": "5"}, http.StatusNotFound)

	list := bob.mustDo(http.MethodGet, "/api/v1/wallets", nil, http.StatusOK)
	assert.Empty(t, list["wallets"])

	wallet := alice.mustDo(http.MethodGet, "/api/v1/wallets/"+walletID, nil, http.StatusOK)
	assert.Equal(t, "25.00", wallet["balance"])
}

func TestRouter_Authentication(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"no token", "", "missing authorization header"},
		{"garbage token", "not-a-jwt", "invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &apiClient{t: t, handler: router, token: tt.token}
			code, out := api.do(http.MethodGet, "/api/v1/wallets", nil)
			assert.Equal(t, http.StatusUnauthorized, code)
			assert.Equal(t, tt.want, out["error"])
		})
	}

	t.Run("health is public", func(t *testing.T) {
		api := &apiClient{t: t, handler: router}
		code, out := api.do(http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", out["status"])
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNonPositiveAmount, http.StatusBadRequest},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.NotOwned("wallet"), http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{domain.ErrIrreversibleState, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrReferenced, http.StatusConflict},
		{domain.StorageError("commit", errors.New("disk full")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(fmt.Errorf("op: %w", tt.err)))
		})
	}
}
