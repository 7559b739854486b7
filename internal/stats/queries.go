package stats

import (
	"fmt"

	"apexarena/internal/db"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

func (q *Queries) GetPlayerMatchStats(matchID, playerID string) (*PlayerMatchStats, error) {
	s := &PlayerMatchStats{
		MatchID:  matchID,
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`
		SELECT p.name, p.color, mp.final_score, mp.align_count, mp.discipline_count, mp.best_streak
		FROM match_players mp
		JOIN players p ON p.id = mp.player_id
		WHERE mp.match_id = $1 AND mp.player_id = $2
	`, matchID, playerID).Scan(&s.PlayerName, &s.PlayerColor, &s.Score, &s.AlignCount, &s.DisciplineCount, &s.BestStreak)
	if err != nil {
		return nil, fmt.Errorf("getting match player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT COUNT(*) FROM decision_events
		WHERE match_id = $1 AND player_id = $2
	`, matchID, playerID).Scan(&s.Decisions)
	if err != nil {
		return nil, fmt.Errorf("getting decision count: %w", err)
	}

	if s.Decisions > 0 {
		s.AlignRate = float64(s.AlignCount) / float64(s.Decisions) * 100
	}

	return s, nil
}

func (q *Queries) GetPlayerLifetimeStats(playerID string) (*PlayerLifetimeStats, error) {
	s := &PlayerLifetimeStats{
		PlayerID: playerID,
	}

	err := q.DB.QueryRow(`SELECT name, color FROM players WHERE id = $1`, playerID).
		Scan(&s.PlayerName, &s.PlayerColor)
	if err != nil {
		return nil, fmt.Errorf("getting player: %w", err)
	}

	err = q.DB.QueryRow(`
		SELECT
			COUNT(*) as matches_played,
			COALESCE(SUM(final_score), 0) as total_score,
			COALESCE(MAX(final_score), 0) as best_match,
			COUNT(*) FILTER (WHERE rank = 1) as win_count
		FROM match_players
		WHERE player_id = $1
	`, playerID).Scan(&s.MatchesPlayed, &s.TotalScore, &s.BestMatch, &s.WinCount)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}

	// Win streak is the most recent run of consecutive first-place finishes.
	rows, err := q.DB.Query(`
		SELECT mp.rank
		FROM match_players mp
		JOIN matches m ON m.id = mp.match_id
		WHERE mp.player_id = $1 AND m.ended_at IS NOT NULL
		ORDER BY m.ended_at DESC
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	streak := 0
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		if rank == 1 {
			streak++
		} else {
			break
		}
	}
	s.WinStreak = streak

	s.Accolades = EvaluateLifetimeAccolades(*s)

	return s, nil
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	var query string
	switch category {
	case "score":
		query = `
			SELECT p.id, p.name, p.color, COALESCE(SUM(mp.final_score), 0) as value
			FROM players p
			JOIN match_players mp ON mp.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "wins":
		query = `
			SELECT p.id, p.name, p.color, COUNT(*) FILTER (WHERE mp.rank = 1) as value
			FROM players p
			JOIN match_players mp ON mp.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "streak":
		query = `
			SELECT p.id, p.name, p.color, COALESCE(MAX(mp.best_streak), 0) as value
			FROM players p
			JOIN match_players mp ON mp.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "discipline":
		query = `
			SELECT p.id, p.name, p.color, COALESCE(SUM(mp.discipline_count), 0) as value
			FROM players p
			JOIN match_players mp ON mp.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	case "alignments":
		query = `
			SELECT p.id, p.name, p.color, COUNT(*) FILTER (WHERE de.aligned) as value
			FROM players p
			JOIN decision_events de ON de.player_id = p.id
			GROUP BY p.id, p.name, p.color
			ORDER BY value DESC
			LIMIT $1`
	default:
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.PlayerColor, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, nil
}

func (q *Queries) GetMatchRecap(matchID string) (*MatchRecap, error) {
	recap := &MatchRecap{MatchID: matchID}

	err := q.DB.QueryRow(`
		SELECT room_code, started_at, ended_at FROM matches WHERE id = $1
	`, matchID).Scan(&recap.RoomCode, &recap.StartedAt, &recap.EndedAt)
	if err != nil {
		return nil, fmt.Errorf("getting match: %w", err)
	}

	rows, err := q.DB.Query(`
		SELECT mp.player_id FROM match_players mp WHERE mp.match_id = $1 ORDER BY mp.rank
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("getting match players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, err
		}
		s, err := q.GetPlayerMatchStats(matchID, playerID)
		if err != nil {
			return nil, err
		}
		recap.Players = append(recap.Players, *s)
	}

	return recap, nil
}
