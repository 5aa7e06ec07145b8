package server

import (
	"net/http"

	"trade-journal-go/internal/journal"
)

type coinRequest struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

func (s *Server) handleCreateCoin(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())

	var req coinRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" || req.Symbol == "" {
		s.badRequest(w, "name and symbol are required")
		return
	}

	coin, err := s.coins.Create(r.Context(), ac.Organization.ID, journal.CoinInput{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, coin)
}

func (s *Server) handleListCoins(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())

	coins, err := s.coins.List(r.Context(), ac.Organization.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, coins)
}

func (s *Server) handleGetCoin(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid coin id")
		return
	}

	coin, err := s.coins.Get(r.Context(), ac.Organization.ID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, coin)
}

func (s *Server) handleUpdateCoin(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid coin id")
		return
	}

	var req coinRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	coin, err := s.coins.Update(r.Context(), ac.Organization.ID, id, journal.CoinInput{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, coin)
}

func (s *Server) handleDeleteCoin(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid coin id")
		return
	}

	if err := s.coins.Delete(r.Context(), ac.Organization.ID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}

type strategyRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Rules       map[string]any `json:"rules"`
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())

	var req strategyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		s.badRequest(w, "name is required")
		return
	}

	strategy, err := s.strategies.Create(r.Context(), ac.Organization.ID, journal.StrategyInput{
		Name:        req.Name,
		Description: req.Description,
		Rules:       req.Rules,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, strategy)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())

	strategies, err := s.strategies.List(r.Context(), ac.Organization.ID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, strategies)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid strategy id")
		return
	}

	strategy, err := s.strategies.Get(r.Context(), ac.Organization.ID, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, strategy)
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid strategy id")
		return
	}

	var req strategyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "invalid request body")
		return
	}

	strategy, err := s.strategies.Update(r.Context(), ac.Organization.ID, id, journal.StrategyInput{
		Name:        req.Name,
		Description: req.Description,
		Rules:       req.Rules,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, strategy)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	ac := authFrom(r.Context())
	id, ok := pathID(r, "id")
	if !ok {
		s.badRequest(w, "invalid strategy id")
		return
	}

	if err := s.strategies.Delete(r.Context(), ac.Organization.ID, id); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusNoContent, nil)
}
