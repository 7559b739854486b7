package server

import (
	"net/http"
	"time"

	"apexarena/internal/config"
	"apexarena/internal/db"
	"apexarena/internal/game"
	"apexarena/internal/players"
	"apexarena/internal/rooms"
	"apexarena/internal/scenarios"

	"go.uber.org/zap"
)

func Run(cfg config.Config) error {
	catalog, err := scenarios.Load()
	if err != nil {
		return err
	}

	store := rooms.NewStore(catalog, game.Config{
		MaxPlayers:  cfg.MaxPlayers,
		RevealDelay: cfg.RevealDelay,
	})

	srv := &Server{
		Rooms:    store,
		matchIDs: make(map[string]string),
	}

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			zap.S().Warnw("database unavailable, running without persistence", "err", err)
		} else {
			if err := database.Migrate(); err != nil {
				zap.S().Errorw("migration failed", "err", err)
			}
			srv.DB = database
			srv.DecisionBuffer = make(chan db.DecisionEvent, 1000)
			go decisionBatchWriter(database, srv.DecisionBuffer)
		}
	} else {
		zap.S().Info("no database configured, running without persistence")
	}

	store.OnCreate(func(room *rooms.Room) {
		code := room.Code
		room.Session.OnFinish = func(snap game.Snapshot, rankings []players.Player) {
			srv.finishMatch(code, snap, rankings)
		}
	})

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := store.SweepStale(cfg.StaleAfter); n > 0 {
				zap.S().Infow("swept stale rooms", "count", n)
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", srv.handleWS)
	mux.HandleFunc("GET /health", srv.handleHealth)
	mux.HandleFunc("GET /api/rooms", srv.handleRooms)
	mux.HandleFunc("GET /api/leaderboard", srv.handleLeaderboard)
	mux.HandleFunc("GET /api/players/{id}/stats", srv.handlePlayerStats)

	zap.S().Infow("server listening", "addr", cfg.Addr())
	return http.ListenAndServe(cfg.Addr(), mux)
}
