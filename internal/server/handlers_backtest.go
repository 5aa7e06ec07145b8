package server

import (
	"net/http"
	"time"

	"trade-journal-go/internal/journal"
)

type createBacktestRequest struct {
	TradeDate  string  `json:"tradeDate"`
	TradeTime  string  `json:"tradeTime"`
	Entry      float64 `json:"entry"`
	StopLoss   float64 `json:"stopLoss"`
	Exit       float64 `json:"exit"`
	Notes      string  `json:"notes"`
	CoinID     uint    `json:"coinId"`
	StrategyID uint    `json:"strategyId"`
}

func (s *Server) handleCreateBacktest(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())

	var req createBacktestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.Entry <= 0 || req.StopLoss <= 0 || req.Exit <= 0 {
		s.badRequest(w, "entry, stopLoss and exit must be positive")
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

	trade, err := s.backtests.Create(r.Context(), ac.Organization.ID, ac.User.ID, journal.CreateBacktestInput{
		TradeDate:  tradeDate,
		TradeTime:  req.TradeTime,
		Entry:      req.Entry,
		StopLoss:   req.StopLoss,
		Exit:       req.Exit,
		Notes:      req.Notes,
		CoinID:     req.CoinID,
		StrategyID: req.StrategyID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, trade)
}

func (s *Server) handleListBacktests(w http.ResponseWriter, r *http.Request) {
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

	trades, page, err := s.backtests.List(r.Context(), ac.Organization.ID, journal.ListBacktestInput{
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

func (s *Server) handleGetBacktest(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid backtest trade id")
		return
	}

	trade, err := s.backtests.Get(r.Context(), ac.Organization.ID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, trade)
}

type updateBacktestRequest struct {
	TradeDate  *string  `json:"tradeDate"`
	TradeTime  *string  `json:"tradeTime"`
	Entry      *float64 `json:"entry"`
	StopLoss   *float64 `json:"stopLoss"`
	Exit       *float64 `json:"exit"`
	Notes      *string  `json:"notes"`
	CoinID     *uint    `json:"coinId"`
	StrategyID *uint    `json:"strategyId"`
}

func (s *Server) handleUpdateBacktest(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid backtest trade id")
		return
	}

	var req updateBacktestRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	in := journal.UpdateBacktestInput{
		TradeTime:  req.TradeTime,
		Entry:      req.Entry,
		StopLoss:   req.StopLoss,
		Exit:       req.Exit,
		Notes:      req.Notes,
		CoinID:     req.CoinID,
		StrategyID: req.StrategyID,
	}
	if req.TradeDate != nil {
		tradeDate, err := time.Parse(dateLayout, *req.TradeDate)
		if err != nil {
			s.badRequest(w, "tradeDate must be formatted as YYYY-MM-DD")
			return
		}
		in.TradeDate = &tradeDate
	}

	trade, err := s.backtests.Update(r.Context(), ac.Organization.ID, ac.User.ID, id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteBacktest(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid backtest trade id")
		return
	}

	if err := s.backtests.Delete(r.Context(), ac.Organization.ID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleBacktestExpectancy(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	strategyID, ok := pathID(r, "strategyId")
	if !ok {
		s.badRequest(w, "invalid strategy id")
		return
	}

	result, err := s.backtests.Expectancy(r.Context(), ac.Organization.ID, strategyID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, result)
}
