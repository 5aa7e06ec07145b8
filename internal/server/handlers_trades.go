package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"trade-journal-go/internal/journal"
)

// dateLayout is the wire format of all trade dates.
const dateLayout = "2006-01-02"

type createTradeRequest struct {
	TradeDate          string  `json:"tradeDate"`
	TradeTime          string  `json:"tradeTime"`
	AvgEntry           float64 `json:"avgEntry"`
	StopLoss           float64 `json:"stopLoss"`
	StopLossPercentage float64 `json:"stopLossPercentage"`
	Quantity           float64 `json:"quantity"`
	Amount             float64 `json:"amount"`
	Notes              string  `json:"notes"`
	CoinID             uint    `json:"coinId"`
	StrategyID         uint    `json:"strategyId"`
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())

	var req createTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.AvgEntry <= 0 || req.StopLoss <= 0 {
		s.badRequest(w, "avgEntry and stopLoss must be positive")
		return
	}
	if req.Amount <= 0 || req.StopLossPercentage <= 0 {
		s.badRequest(w, "amount and stopLossPercentage must be positive")
		return
	}
	if req.CoinID == 0 || req.StrategyID == 0 {
		s.badRequest(w, "coinId and strategyId are required")
		return
	}
	tradeDate, err := time.Parse(dateLayout, req.TradeDate)
	if err != nil {
		s.badRequest(w, "tradeDate must be formatted as YYYY-MM-DD")
		return
	}

	trade, err := s.trades.Create(r.Context(), ac.Organization.ID, ac.User.ID, journal.CreateTradeInput{
		TradeDate:          tradeDate,
		TradeTime:          req.TradeTime,
		AvgEntry:           req.AvgEntry,
		StopLoss:           req.StopLoss,
		StopLossPercentage: req.StopLossPercentage,
		Quantity:           req.Quantity,
		Amount:             req.Amount,
		Notes:              req.Notes,
		CoinID:             req.CoinID,
		StrategyID:         req.StrategyID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, trade)
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(q url.Values, key string) (*time.Time, bool) {
	raw := q.Get(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func queryUint(q url.Values, key string) uint {
	v, _ := strconv.ParseUint(q.Get(key), 10, 32)
	return uint(v)
}

func queryInt(q url.Values, key string) int {
	v, _ := strconv.Atoi(q.Get(key))
	return v
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	q := r.URL.Query()

	dateFrom, ok := queryDate(q, "dateFrom")
	if !ok {
		s.badRequest(w, "dateFrom must be formatted as YYYY-MM-DD")
		return
	}
	dateTo, ok := queryDate(q, "dateTo")
	if !ok {
		s.badRequest(w, "dateTo must be formatted as YYYY-MM-DD")
		return
	}

	trades, page, err := s.trades.List(r.Context(), ac.Organization.ID, journal.ListTradesInput{
		Status:     q.Get("status"),
		CoinID:     queryUint(q, "coinId"),
		StrategyID: queryUint(q, "strategyId"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Page:       queryInt(q, "page"),
		Limit:      queryInt(q, "limit"),
		SortBy:     q.Get("sortBy"),
		SortOrder:  q.Get("sortOrder"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, listResponse{Data: trades, Pagination: page})
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid trade id")
		return
	}

	detail, err := s.trades.Get(r.Context(), ac.Organization.ID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, detail)
}

type updateTradeRequest struct {
	TradeDate          *string  `json:"tradeDate"`
	TradeTime          *string  `json:"tradeTime"`
	AvgEntry           *float64 `json:"avgEntry"`
	StopLoss           *float64 `json:"stopLoss"`
	StopLossPercentage *float64 `json:"stopLossPercentage"`
	Quantity           *float64 `json:"quantity"`
	Amount             *float64 `json:"amount"`
	Notes              *string  `json:"notes"`
	CoinID             *uint    `json:"coinId"`
	StrategyID         *uint    `json:"strategyId"`
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid trade id")
		return
	}

	var req updateTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	in := journal.UpdateTradeInput{
		TradeTime:          req.TradeTime,
		AvgEntry:           req.AvgEntry,
		StopLoss:           req.StopLoss,
		StopLossPercentage: req.StopLossPercentage,
		Quantity:           req.Quantity,
		Amount:             req.Amount,
		Notes:              req.Notes,
		CoinID:             req.CoinID,
		StrategyID:         req.StrategyID,
	}
	if req.TradeDate != nil {
		tradeDate, err := time.Parse(dateLayout, *req.TradeDate)
		if err != nil {
			s.badRequest(w, "tradeDate must be formatted as YYYY-MM-DD")
			return
		}
		in.TradeDate = &tradeDate
	}

	trade, err := s.trades.Update(r.Context(), ac.Organization.ID, ac.User.ID, id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, trade)
}

type exitTradeRequest struct {
	AvgExit  float64 `json:"avgExit"`
	ExitDate string  `json:"exitDate"`
	ExitTime string  `json:"exitTime"`
	Notes    *string `json:"notes"`
}

func (s *Server) handleExitTrade(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid trade id")
		return
	}

	var req exitTradeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.AvgExit <= 0 {
		s.badRequest(w, "avgExit must be positive")
		return
	}
	exitDate, err := time.Parse(dateLayout, req.ExitDate)
	if err != nil {
		s.badRequest(w, "exitDate must be formatted as YYYY-MM-DD")
		return
	}

	trade, err := s.trades.Exit(r.Context(), ac.Organization.ID, ac.User.ID, id, journal.ExitTradeInput{
		AvgExit:  req.AvgExit,
		ExitDate: exitDate,
		ExitTime: req.ExitTime,
		Notes:    req.Notes,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid trade id")
		return
	}

	if err := s.trades.Delete(r.Context(), ac.Organization.ID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleTradeAnalytics(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	q := r.URL.Query()

	dateFrom, ok := queryDate(q, "dateFrom")
	if !ok {
		s.badRequest(w, "dateFrom must be formatted as YYYY-MM-DD")
		return
	}
	dateTo, ok := queryDate(q, "dateTo")
	if !ok {
		s.badRequest(w, "dateTo must be formatted as YYYY-MM-DD")
		return
	}

	report, err := s.trades.Analytics(r.Context(), ac.Organization.ID, journal.AnalyticsFilter{
		CoinID:     queryUint(q, "coinId"),
		StrategyID: queryUint(q, "strategyId"),
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, report)
}

type reviewResponse struct {
	Review string `json:"review"`
}

func (s *Server) handleReviewTrade(w http.ResponseWriter, r *http.Request) {
	if s.insights == nil {
		s.respond(w, http.StatusServiceUnavailable, errorResponse{Error: "trade review is not configured"})
		return
	}

	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid trade id")
		return
	}

	detail, err := s.trades.Get(r.Context(), ac.Organization.ID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	review, err := s.insights.ReviewTrade(r.Context(), detail)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, reviewResponse{Review: review})
}
