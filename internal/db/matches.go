package db

import (
	"fmt"
	"time"
)

type MatchRecord struct {
	ID             string
	RoomCode       string
	HostID         string
	ScenariosCount int
	Difficulty     string
	ContentType    string
	StartedAt      *time.Time
	EndedAt        *time.Time
	CreatedAt      time.Time
}

func (d *DB) CreateMatch(roomCode, hostID string, scenariosCount int, difficulty, contentType string) (string, error) {
	var id string
	err := d.conn.QueryRow(`
		INSERT INTO matches (room_code, host_id, scenarios_count, difficulty, content_type, started_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id
	`, roomCode, hostID, scenariosCount, difficulty, contentType).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("creating match: %w", err)
	}
	return id, nil
}

func (d *DB) EndMatch(matchID string) error {
	_, err := d.conn.Exec(`
		UPDATE matches SET ended_at = now() WHERE id = $1
	`, matchID)
	if err != nil {
		return fmt.Errorf("ending match: %w", err)
	}
	return nil
}

func (d *DB) AddMatchPlayer(matchID, playerID string, finalScore, rank, alignCount, disciplineCount, bestStreak int) error {
	_, err := d.conn.Exec(`
		INSERT INTO match_players (match_id, player_id, final_score, rank, align_count, discipline_count, best_streak)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (match_id, player_id) DO UPDATE
		SET final_score = $3, rank = $4, align_count = $5, discipline_count = $6, best_streak = $7
	`, matchID, playerID, finalScore, rank, alignCount, disciplineCount, bestStreak)
	if err != nil {
		return fmt.Errorf("adding match player: %w", err)
	}
	return nil
}
