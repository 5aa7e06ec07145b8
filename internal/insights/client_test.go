package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		model:   "test-model",
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
	}

	return c, server
}

func sampleDetail() *journal.TradeDetail {
	exit := 120.0
	pl := 39.84
	plPct := 3.984
	detail := &journal.TradeDetail{}
	detail.Trade = models.Trade{
		AvgEntry:              100,
		StopLoss:              90,
		StopLossPercentage:    2,
		Amount:                1000,
		Direction:             string(metrics.Long),
		AvgExit:               &exit,
		ProfitLoss:            &pl,
		ProfitLossPercentage:  &plPct,
		Notes:                 "entered late on the retest",
		Coin:                  models.Coin{Name: "Bitcoin", Symbol: "BTC"},
		Strategy:              models.Strategy{Name: "MACD"},
	}
	detail.Derived = metrics.TradeMetrics{Leverage: 0.2}
	return detail
}

func TestReviewTrade(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test_api_key", r.Header.Get("Authorization"))

			var req chatRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "test-model", req.Model)
			require.Len(t, req.Messages, 2)
			assert.Contains(t, req.Messages[1].Content, "Bitcoin")
			assert.Contains(t, req.Messages[1].Content, "entered late on the retest")

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Good risk sizing."}}]}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		review, err := c.ReviewTrade(context.Background(), sampleDetail())
		assert.NoError(t, err)
		assert.Equal(t, "Good risk sizing.", review)
	})

	t.Run("EmptyChoices", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		_, err := c.ReviewTrade(context.Background(), sampleDetail())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})

	t.Run("RetriesOnServerError", func(t *testing.T) {
		attempts := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		review, err := c.ReviewTrade(context.Background(), sampleDetail())
		assert.NoError(t, err)
		assert.Equal(t, "ok", review)
		assert.Equal(t, 2, attempts)
	})

	t.Run("ClientErrorIsNotRetried", func(t *testing.T) {
		attempts := 0
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
		})

		c, server := setupTestServer(handler)
		defer server.Close()

		_, err := c.ReviewTrade(context.Background(), sampleDetail())
		assert.Error(t, err)
		assert.Equal(t, 1, attempts)
	})
}
