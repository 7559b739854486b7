package db

import "fmt"

func (d *DB) AwardAccolade(playerID, accoladeID string, matchID *string) error {
	_, err := d.conn.Exec(`
		INSERT INTO player_accolades (player_id, accolade_id, match_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, accolade_id) DO NOTHING
	`, playerID, accoladeID, matchID)
	if err != nil {
		return fmt.Errorf("awarding accolade: %w", err)
	}
	return nil
}

func (d *DB) GetPlayerAccolades(playerID string) ([]string, error) {
	rows, err := d.conn.Query(`
		SELECT accolade_id FROM player_accolades WHERE player_id = $1 ORDER BY awarded_at
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting accolades: %w", err)
	}
	defer rows.Close()

	var accolades []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		accolades = append(accolades, id)
	}
	return accolades, nil
}
