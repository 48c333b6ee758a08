package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/logger"
	"github.com/palemoky/blackjack-sim/internal/protocol"
	"github.com/palemoky/blackjack-sim/internal/protocol/convert"
	"github.com/palemoky/blackjack-sim/internal/sim"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	maxSimulateBody         = 1 << 16
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// httpStatus 错误码对应的 HTTP 状态码
func httpStatus(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidConfig, apperrors.CodeInvalidRequest, apperrors.CodeInvalidCard:
		return http.StatusBadRequest
	case apperrors.CodeRunNotFound:
		return http.StatusNotFound
	case apperrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, httpStatus(err), protocol.ErrorPayload{
		Code:    apperrors.CodeOf(err),
		Message: err.Error(),
	})
}

// requireStore reports ErrStoreUnavailable when persistence is off.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, apperrors.ErrStoreUnavailable)
		return false
	}
	return true
}

// handleSimulate runs a simulation synchronously and returns its summary.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !s.rateLimiter.Allow(GetClientIP(r)) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	var p protocol.SimulatePayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSimulateBody))
	if err := dec.Decode(&p); err != nil {
		writeError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err))
		return
	}
	opts, err := convert.ToOptions(s.config, &p)
	if err != nil {
		writeError(w, err)
		return
	}
	runner, err := sim.NewRunner(s.engine, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	if !s.acquireRun() {
		http.Error(w, "Server Busy", http.StatusServiceUnavailable)
		return
	}
	defer s.releaseRun()

	sum, err := runner.Run(r.Context(), nil)
	if err != nil {
		writeError(w, err)
		return
	}
	if p.Persist && s.store != nil {
		if err := s.store.SaveSummary(r.Context(), sum); err != nil {
			logger.LogError("save run %s: %v", sum.RunID, err)
		}
	}
	writeJSON(w, http.StatusOK, sum)
}

// handleGetRun 获取模拟汇总
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	sum, err := s.store.GetSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	rank, err := s.store.RunRank(r.Context(), sum.RunID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": sum, "rank": rank})
}

// handleListShoes 分页获取单靴结果
func (s *Server) handleListShoes(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := intQuery(r, "limit", 100)
	if err != nil {
		writeError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetSummary(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if limit == 0 {
		writeJSON(w, http.StatusOK, []sim.ShoeReport{})
		return
	}
	shoes, err := s.store.ListShoes(r.Context(), id, int64(offset), int64(offset+limit-1))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shoes)
}

// handleLeaderboard 获取排行榜
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	limit, err := intQuery(r, "limit", defaultLeaderboardLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.store.TopRuns(r.Context(), min(limit, maxLeaderboardLimit))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// intQuery reads a non-negative integer query parameter.
func intQuery(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", apperrors.ErrInvalidRequest, key)
	}
	return n, nil
}
