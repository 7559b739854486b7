package server

import (
	"time"

	"apexarena/internal/db"
	"apexarena/internal/game"
	"apexarena/internal/players"
	"apexarena/internal/rooms"
	"apexarena/internal/stats"

	"go.uber.org/zap"
)

// beginMatch opens a match record for a freshly started game. No-op
// without a database.
func (s *Server) beginMatch(room *rooms.Room) {
	if s.DB == nil {
		return
	}

	snap := room.Session.Snapshot()
	var hostID string
	for _, p := range snap.Players {
		if p.IsHost {
			hostID = p.ID
			break
		}
	}

	matchID, err := s.DB.CreateMatch(room.Code, hostID,
		snap.Settings.ScenariosCount,
		string(snap.Settings.Difficulty),
		string(snap.Settings.ContentType))
	if err != nil {
		zap.S().Errorw("creating match", "room", room.Code, "err", err)
		return
	}

	s.mu.Lock()
	s.matchIDs[room.Code] = matchID
	s.mu.Unlock()
}

// recordDecision queues one scored submission for the batch writer.
func (s *Server) recordDecision(roomCode, playerID string, res game.Result) {
	if s.DecisionBuffer == nil {
		return
	}

	s.mu.Lock()
	matchID := s.matchIDs[roomCode]
	s.mu.Unlock()
	if matchID == "" {
		return
	}

	select {
	case s.DecisionBuffer <- db.DecisionEvent{
		MatchID:       matchID,
		PlayerID:      playerID,
		ScenarioID:    res.Scenario.ID,
		ScenarioIndex: res.Index,
		Decision:      string(res.Decision),
		Truth:         string(res.Scenario.GroundTruth.Decision),
		Points:        res.Outcome.Points,
		Aligned:       res.Outcome.Aligned,
		Disciplined:   res.Outcome.Disciplined,
		Streak:        res.Outcome.NextStreak,
		DecidedAt:     time.Now(),
	}:
	default:
		zap.S().Warn("decision buffer full, dropping event")
	}
}

// finishMatch persists final standings and awards accolades when a game
// reaches results. Runs from the session's finish hook, off the session
// lock.
func (s *Server) finishMatch(roomCode string, snap game.Snapshot, rankings []players.Player) {
	if s.DB == nil {
		return
	}

	s.mu.Lock()
	matchID := s.matchIDs[roomCode]
	delete(s.matchIDs, roomCode)
	s.mu.Unlock()
	if matchID == "" {
		return
	}

	if err := s.DB.EndMatch(matchID); err != nil {
		zap.S().Errorw("ending match", "match", matchID, "err", err)
	}

	q := stats.NewQueries(s.DB)
	for i, p := range rankings {
		rank := i + 1
		if err := s.DB.AddMatchPlayer(matchID, p.ID, p.Score, rank, p.AlignCount, p.DisciplineCount, p.BestStreak); err != nil {
			zap.S().Errorw("adding match player", "match", matchID, "player", p.ID, "err", err)
			continue
		}

		matchStats := stats.PlayerMatchStats{
			PlayerID:        p.ID,
			MatchID:         matchID,
			Decisions:       len(snap.Scenarios),
			Score:           p.Score,
			AlignCount:      p.AlignCount,
			DisciplineCount: p.DisciplineCount,
			BestStreak:      p.BestStreak,
		}
		for _, a := range stats.EvaluateMatchAccolades(matchStats) {
			mID := matchID
			if err := s.DB.AwardAccolade(p.ID, string(a.ID), &mID); err != nil {
				zap.S().Errorw("awarding accolade", "player", p.ID, "err", err)
			}
		}

		lifeStats, err := q.GetPlayerLifetimeStats(p.ID)
		if err != nil {
			zap.S().Errorw("getting lifetime stats", "player", p.ID, "err", err)
			continue
		}
		for _, a := range lifeStats.Accolades {
			if err := s.DB.AwardAccolade(p.ID, string(a.ID), nil); err != nil {
				zap.S().Errorw("awarding accolade", "player", p.ID, "err", err)
			}
		}
	}
}

// decisionBatchWriter drains the buffer into PostgreSQL in batches, by
// size or every half second, whichever comes first.
func decisionBatchWriter(database *db.DB, buffer chan db.DecisionEvent) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	batch := make([]db.DecisionEvent, 0, 50)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := database.BatchRecordDecisions(batch); err != nil {
			zap.S().Errorw("batch recording decisions", "err", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-buffer:
			batch = append(batch, ev)
			if len(batch) >= 50 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
