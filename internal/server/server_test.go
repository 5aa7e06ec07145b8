package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupServer wires a full API against an in-memory database.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := zap.NewNop()
	srv := New(
		log,
		auth.NewService(db, log, "test-secret", time.Hour),
		journal.NewCoinService(db, log),
		journal.NewStrategyService(db, log),
		journal.NewTradeService(db, log, metrics.DefaultFees),
		journal.NewBacktestService(db, log),
		nil, // review feature disabled
		1000, 1000,
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a JSON request and decodes the JSON response into out.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// signup registers an account and returns a usable token.
func signup(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	resp := doJSON(t, ts, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":            email,
		"password":         "hunter22",
		"organizationName": "Acme Capital",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	resp = doJSON(t, ts, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "hunter22",
	}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)
	return login.Token
}

// firstIDs returns one seeded coin id and strategy id for the caller's org.
func firstIDs(t *testing.T, ts *httptest.Server, token string) (uint, uint) {
	t.Helper()

	var coins []struct {
		ID uint `json:"ID"`
	}
	resp := doJSON(t, ts, http.MethodGet, "/api/coins", token, nil, &coins)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, coins)

	var strategies []struct {
		ID uint `json:"ID"`
	}
	resp = doJSON(t, ts, http.MethodGet, "/api/strategies", token, nil, &strategies)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, strategies)

	return coins[0].ID, strategies[0].ID
}

func TestAuthRequired(t *testing.T) {
	ts := setupServer(t)

	resp := doJSON(t, ts, http.MethodGet, "/api/trades", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, ts, http.MethodGet, "/api/trades", "not-a-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTradeLifecycle(t *testing.T) {
	ts := setupServer(t)
	token := signup(t, ts, "trader@acme.test")
	coinID, strategyID := firstIDs(t, ts, token)

	var created struct {
		ID        uint   `json:"ID"`
		Status    string `json:"status"`
		Direction string `json:"direction"`
	}
	resp := doJSON(t, ts, http.MethodPost, "/api/trades", token, map[string]any{
		"tradeDate":          "2026-03-01",
		"tradeTime":          "09:30:00",
		"avgEntry":           100.0,
		"stopLoss":           90.0,
		"stopLossPercentage": 2.0,
		"amount":             1000.0,
		"coinId":             coinID,
		"strategyId":         strategyID,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "OPEN", created.Status)
	assert.Equal(t, "Long", created.Direction)

	var closed struct {
		Status               string   `json:"status"`
		Commission           *float64 `json:"commission"`
		ProfitLoss           *float64 `json:"profitLoss"`
		ProfitLossPercentage *float64 `json:"profitLossPercentage"`
		Duration             *int     `json:"duration"`
	}
	path := fmt.Sprintf("/api/trades/%d/exit", created.ID)
	resp = doJSON(t, ts, http.MethodPost, path, token, map[string]any{
		"avgExit":  120.0,
		"exitDate": "2026-03-03",
		"exitTime": "15:00:00",
	}, &closed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "CLOSED", closed.Status)
	require.NotNil(t, closed.ProfitLoss)
	assert.InDelta(t, 0.16, *closed.Commission, 1e-9)
	assert.InDelta(t, 39.84, *closed.ProfitLoss, 1e-9)
	assert.InDelta(t, 3.984, *closed.ProfitLossPercentage, 1e-9)
	assert.Equal(t, 2, *closed.Duration)

	// A second exit loses to the first.
	resp = doJSON(t, ts, http.MethodPost, path, token, map[string]any{
		"avgExit":  130.0,
		"exitDate": "2026-03-04",
	}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var report struct {
		Summary struct {
			TotalTrades int     `json:"totalTrades"`
			WinRate     float64 `json:"winRate"`
		} `json:"summary"`
	}
	resp = doJSON(t, ts, http.MethodGet, "/api/trades/analytics", token, nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, report.Summary.TotalTrades)
	assert.InDelta(t, 100.0, report.Summary.WinRate, 1e-9)
}

func TestCreateTrade_Validation(t *testing.T) {
	ts := setupServer(t)
	token := signup(t, ts, "trader@acme.test")
	coinID, strategyID := firstIDs(t, ts, token)

	base := map[string]any{
		"tradeDate":          "2026-03-01",
		"avgEntry":           100.0,
		"stopLoss":           90.0,
		"stopLossPercentage": 2.0,
		"amount":             1000.0,
		"coinId":             coinID,
		"strategyId":         strategyID,
	}

	for name, override := range map[string]map[string]any{
		"NegativeEntry": {"avgEntry": -1.0},
		"ZeroAmount":    {"amount": 0.0},
		"BadDate":       {"tradeDate": "03/01/2026"},
		"MissingCoin":   {"coinId": 0},
	} {
		t.Run(name, func(t *testing.T) {
			body := map[string]any{}
			for k, v := range base {
				body[k] = v
			}
			for k, v := range override {
				body[k] = v
			}
			resp := doJSON(t, ts, http.MethodPost, "/api/trades", token, body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// A coin id from nowhere is a 404, not a validation error.
	body := map[string]any{}
	for k, v := range base {
		body[k] = v
	}
	body["coinId"] = 99999
	resp := doJSON(t, ts, http.MethodPost, "/api/trades", token, body, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBacktestAndExpectancy(t *testing.T) {
	ts := setupServer(t)
	token := signup(t, ts, "trader@acme.test")
	coinID, strategyID := firstIDs(t, ts, token)

	create := func(entry, stop, exit float64) {
		resp := doJSON(t, ts, http.MethodPost, "/api/backtest", token, map[string]any{
			"tradeDate":  "2026-03-01",
			"entry":      entry,
			"stopLoss":   stop,
			"exit":       exit,
			"coinId":     coinID,
			"strategyId": strategyID,
		}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	create(100, 90, 120) // +2R
	create(100, 90, 120) // +2R
	create(100, 90, 80)  // -2R

	// Entry equal to stop has no direction.
	resp := doJSON(t, ts, http.MethodPost, "/api/backtest", token, map[string]any{
		"tradeDate":  "2026-03-01",
		"entry":      100.0,
		"stopLoss":   100.0,
		"exit":       120.0,
		"coinId":     coinID,
		"strategyId": strategyID,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var result struct {
		StrategyID    uint    `json:"strategyId"`
		TotalTrades   int     `json:"totalTrades"`
		WinPercentage float64 `json:"winPercentage"`
		EV            float64 `json:"ev"`
	}
	path := fmt.Sprintf("/api/backtest/analytics/%d", strategyID)
	resp = doJSON(t, ts, http.MethodGet, path, token, nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, strategyID, result.StrategyID)
	assert.Equal(t, 3, result.TotalTrades)
	assert.InDelta(t, 0.6667, result.WinPercentage, 1e-9)
	// (2/3)*2 - (1/3)*2 rounded to 4 decimals
	assert.InDelta(t, 0.6667, result.EV, 1e-9)
}

func TestOrganizationIsolation(t *testing.T) {
	ts := setupServer(t)
	tokenA := signup(t, ts, "a@acme.test")
	tokenB := signup(t, ts, "b@other.test")
	coinA, strategyA := firstIDs(t, ts, tokenA)

	var created struct {
		ID uint `json:"ID"`
	}
	resp := doJSON(t, ts, http.MethodPost, "/api/trades", tokenA, map[string]any{
		"tradeDate":          "2026-03-01",
		"avgEntry":           100.0,
		"stopLoss":           90.0,
		"stopLossPercentage": 2.0,
		"amount":             1000.0,
		"coinId":             coinA,
		"strategyId":         strategyA,
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// The other organization cannot see or delete the trade.
	path := fmt.Sprintf("/api/trades/%d", created.ID)
	resp = doJSON(t, ts, http.MethodGet, path, tokenB, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, ts, http.MethodDelete, path, tokenB, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, ts, http.MethodGet, path, tokenA, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReviewNotConfigured(t *testing.T) {
	ts := setupServer(t)
	token := signup(t, ts, "trader@acme.test")

	resp := doJSON(t, ts, http.MethodGet, "/api/trades/1/review", token, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
