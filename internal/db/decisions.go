package db

import (
	"fmt"
	"time"
)

type DecisionEvent struct {
	MatchID       string
	PlayerID      string
	ScenarioID    string
	ScenarioIndex int
	Decision      string
	Truth         string
	Points        int
	Aligned       bool
	Disciplined   bool
	Streak        int
	DecidedAt     time.Time
}

func (d *DB) RecordDecision(ev DecisionEvent) error {
	_, err := d.conn.Exec(`
		INSERT INTO decision_events (match_id, player_id, scenario_id, scenario_index, decision, truth, points, aligned, disciplined, streak, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, ev.MatchID, ev.PlayerID, ev.ScenarioID, ev.ScenarioIndex, ev.Decision, ev.Truth, ev.Points, ev.Aligned, ev.Disciplined, ev.Streak, ev.DecidedAt)
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}
	return nil
}

func (d *DB) BatchRecordDecisions(events []DecisionEvent) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO decision_events (match_id, player_id, scenario_id, scenario_index, decision, truth, points, aligned, disciplined, streak, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.MatchID, ev.PlayerID, ev.ScenarioID, ev.ScenarioIndex, ev.Decision, ev.Truth, ev.Points, ev.Aligned, ev.Disciplined, ev.Streak, ev.DecidedAt); err != nil {
			return fmt.Errorf("recording decision in batch: %w", err)
		}
	}

	return tx.Commit()
}
