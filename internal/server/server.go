// Package server exposes the journal over a JSON HTTP API. Routing uses the
// standard mux with method patterns; authentication, rate limiting and
// request logging are applied as middleware.
package server

import (
	"net/http"
	"strconv"

	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/insights"
	"trade-journal-go/internal/journal"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server holds the services behind the API endpoints.
type Server struct {
	log        *zap.Logger
	auth       *auth.Service
	coins      *journal.CoinService
	strategies *journal.StrategyService
	trades     *journal.TradeService
	backtests  *journal.BacktestService
	insights   *insights.Client // nil when the review feature is not configured
	limiter    *rate.Limiter
}

// New creates a new Server.
func New(
	log *zap.Logger,
	authSvc *auth.Service,
	coins *journal.CoinService,
	strategies *journal.StrategyService,
	trades *journal.TradeService,
	backtests *journal.BacktestService,
	insightsClient *insights.Client,
	rateLimit float64,
	rateLimitBurst int,
) *Server {
	return &Server{
		log:        log,
		auth:       authSvc,
		coins:      coins,
		strategies: strategies,
		trades:     trades,
		backtests:  backtests,
		insights:   insightsClient,
		limiter:    rate.NewLimiter(rate.Limit(rateLimit), rateLimitBurst),
	}
}

// Handler builds the route table and wraps it with the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/coins", s.withAuth(s.handleListCoins))
	mux.HandleFunc("POST /api/coins", s.withAuth(s.handleCreateCoin))
	mux.HandleFunc("GET /api/coins/{id}", s.withAuth(s.handleGetCoin))
	mux.HandleFunc("PUT /api/coins/{id}", s.withAuth(s.handleUpdateCoin))
	mux.HandleFunc("DELETE /api/coins/{id}", s.withAuth(s.handleDeleteCoin))

	mux.HandleFunc("GET /api/strategies", s.withAuth(s.handleListStrategies))
	mux.HandleFunc("POST /api/strategies", s.withAuth(s.handleCreateStrategy))
	mux.HandleFunc("GET /api/strategies/{id}", s.withAuth(s.handleGetStrategy))
	mux.HandleFunc("PUT /api/strategies/{id}", s.withAuth(s.handleUpdateStrategy))
	mux.HandleFunc("DELETE /api/strategies/{id}", s.withAuth(s.handleDeleteStrategy))

	mux.HandleFunc("GET /api/trades", s.withAuth(s.handleListTrades))
	mux.HandleFunc("POST /api/trades", s.withAuth(s.handleCreateTrade))
	mux.HandleFunc("GET /api/trades/analytics", s.withAuth(s.handleTradeAnalytics))
	mux.HandleFunc("GET /api/trades/{id}", s.withAuth(s.handleGetTrade))
	mux.HandleFunc("PUT /api/trades/{id}", s.withAuth(s.handleUpdateTrade))
	mux.HandleFunc("DELETE /api/trades/{id}", s.withAuth(s.handleDeleteTrade))
	mux.HandleFunc("POST /api/trades/{id}/exit", s.withAuth(s.handleExitTrade))
	mux.HandleFunc("GET /api/trades/{id}/review", s.withAuth(s.handleReviewTrade))

	mux.HandleFunc("GET /api/backtest", s.withAuth(s.handleListBacktests))
	mux.HandleFunc("POST /api/backtest", s.withAuth(s.handleCreateBacktest))
	mux.HandleFunc("GET /api/backtest/analytics/{strategyId}", s.withAuth(s.handleBacktestExpectancy))
	mux.HandleFunc("GET /api/backtest/{id}", s.withAuth(s.handleGetBacktest))
	mux.HandleFunc("PUT /api/backtest/{id}", s.withAuth(s.handleUpdateBacktest))
	mux.HandleFunc("DELETE /api/backtest/{id}", s.withAuth(s.handleDeleteBacktest))

	return s.logRequests(s.withRateLimit(mux))
}

// pathID parses the {id} segment of the route.
func pathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// listResponse is the envelope of paginated list endpoints.
type listResponse struct {
	Data       any                `json:"data"`
	Pagination journal.Pagination `json:"pagination"`
}
