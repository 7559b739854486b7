package game

import (
	"apexarena/internal/players"
	"apexarena/internal/scenarios"
	"apexarena/internal/settings"
)

// Snapshot is the full room state broadcast to every member. Clients
// always resync from a whole snapshot, never from a diff.
type Snapshot struct {
	ID                   string                            `json:"id"`
	Players              []players.Player                  `json:"players"`
	Settings             settings.Settings                 `json:"settings"`
	Votes                map[string]settings.Settings      `json:"votes"`
	Scenarios            []scenarios.Scenario              `json:"scenarios"`
	CurrentScenarioIndex int                               `json:"currentScenarioIndex"`
	GameState            Phase                             `json:"gameState"`
	Decisions            map[string]map[int]scenarios.Decision `json:"decisions"`
}

type ProgressPayload struct {
	Players []players.Player `json:"players"`
}

type NextScenarioPayload struct {
	CurrentScenarioIndex int              `json:"currentScenarioIndex"`
	Players              []players.Player `json:"players"`
}

// Snapshot returns a copy of the current room state, safe to marshal
// after the session lock is released.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	seq := make([]scenarios.Scenario, len(s.sequence))
	copy(seq, s.sequence)

	decisions := make(map[string]map[int]scenarios.Decision, len(s.decisions))
	for id, byIndex := range s.decisions {
		inner := make(map[int]scenarios.Decision, len(byIndex))
		for i, d := range byIndex {
			inner[i] = d
		}
		decisions[id] = inner
	}

	return Snapshot{
		ID:                   s.code,
		Players:              s.playersLocked(),
		Settings:             s.resolved,
		Votes:                s.votes.Votes(),
		Scenarios:            seq,
		CurrentScenarioIndex: s.current,
		GameState:            s.phase,
		Decisions:            decisions,
	}
}

// playersLocked copies players by value so later marshaling does not
// race with roster mutation.
func (s *Session) playersLocked() []players.Player {
	list := s.roster.List()
	out := make([]players.Player, len(list))
	for i, p := range list {
		out[i] = *p
	}
	return out
}
