package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"apexarena/internal/stats"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("encoding response", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "db_error",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type roomSummary struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"playerCount"`
	GameState   string `json:"gameState"`
}

func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	list := s.Rooms.List()
	out := make([]roomSummary, 0, len(list))
	for _, room := range list {
		out = append(out, roomSummary{
			Code:        room.Code,
			PlayerCount: room.Session.PlayerCount(),
			GameState:   string(room.Session.Phase()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "leaderboard requires a database connection",
		})
		return
	}

	category := r.URL.Query().Get("cat")
	if category == "" {
		category = "score"
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	q := stats.NewQueries(s.DB)
	entries, err := q.GetLeaderboard(category, limit)
	if err != nil {
		zap.S().Errorw("leaderboard query", "category", category, "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown leaderboard category"})
		return
	}
	if entries == nil {
		entries = []stats.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "player stats require a database connection",
		})
		return
	}

	playerID := r.PathValue("id")
	q := stats.NewQueries(s.DB)
	lifeStats, err := q.GetPlayerLifetimeStats(playerID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "player not found"})
		return
	}
	writeJSON(w, http.StatusOK, lifeStats)
}
