package settings

import (
	"fmt"

	"apexarena/internal/scenarios"
)

// Settings is the full tuple a room plays under. Votes are always cast
// as complete tuples, never as single-field updates.
type Settings struct {
	ScenariosCount int                   `json:"scenariosCount"`
	Difficulty     scenarios.Difficulty  `json:"difficulty"`
	ContentType    scenarios.ContentType `json:"contentType"`
}

func Default() Settings {
	return Settings{
		ScenariosCount: 5,
		Difficulty:     scenarios.DifficultyBeginner,
		ContentType:    scenarios.ContentCharts,
	}
}

func (s Settings) Validate() error {
	switch s.ScenariosCount {
	case 5, 10, 20:
	default:
		return fmt.Errorf("invalid scenario count: %d", s.ScenariosCount)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty: %q", s.Difficulty)
	}
	if !s.ContentType.Valid() {
		return fmt.Errorf("invalid content type: %q", s.ContentType)
	}
	return nil
}
