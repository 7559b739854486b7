package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"apexarena/internal/events"
	"apexarena/internal/players"
	"apexarena/internal/scenarios"
	"apexarena/internal/scoring"
	"apexarena/internal/settings"
)

type Phase string

const (
	PhaseLobby   = Phase("lobby")
	PhasePlaying = Phase("playing")
	PhaseResults = Phase("results")
)

var (
	ErrRoomFull        = errors.New("room is full")
	ErrGameInProgress  = errors.New("game already in progress")
	ErrNotHost         = errors.New("only the host can do that")
	ErrNotPlaying      = errors.New("no game in progress")
	ErrNotFinished     = errors.New("game is not finished")
	ErrUnknownPlayer   = errors.New("player is not in this room")
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNoScenarios     = errors.New("no scenarios available")
	ErrInvalidDecision = errors.New("invalid decision")
)

type Config struct {
	MaxPlayers  int
	RevealDelay time.Duration
}

// Session is the authoritative state of one room: membership, settings
// votes, the scenario sequence and the decision barrier. All transitions
// are serialized under one mutex; cross-room operations never touch it.
type Session struct {
	mu        sync.Mutex
	code      string
	phase     Phase
	roster    *players.Roster
	votes     *settings.VoteBox
	resolved  settings.Settings
	sequence  []scenarios.Scenario
	current   int
	decisions map[string]map[int]scenarios.Decision

	catalog *scenarios.Catalog
	bus     *events.Bus
	cfg     Config
	rng     *rand.Rand

	// Reveal timer bookkeeping. generation invalidates pending timers
	// across restarts and teardown; armedFor stops the timer from being
	// armed twice for the same scenario index.
	timer      *time.Timer
	generation int
	armedFor   int

	// OnFinish runs once per completed game, outside the session lock,
	// with the final snapshot and the score-ordered ranking.
	OnFinish func(snap Snapshot, rankings []players.Player)
}

func NewSession(code string, catalog *scenarios.Catalog, bus *events.Bus, cfg Config, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		code:      code,
		phase:     PhaseLobby,
		roster:    players.NewRoster(),
		votes:     settings.NewVoteBox(),
		resolved:  settings.Default(),
		decisions: make(map[string]map[int]scenarios.Decision),
		catalog:   catalog,
		bus:       bus,
		cfg:       cfg,
		rng:       rng,
		armedFor:  -1,
	}
}

func (s *Session) Code() string {
	return s.code
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) PlayerCount() int {
	return s.roster.Count()
}

// Join adds a player; the first member of a room becomes its host.
// Joining is rejected once a game is running or the room is full.
func (s *Session) Join(id, name string) (*players.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if s.roster.Count() >= s.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}

	p := s.roster.Add(id, name, s.roster.Count() == 0)
	s.bus.Publish(events.RoomUpdated, s.snapshotLocked())
	return p, nil
}

// Leave removes a player, discards their vote, re-resolves settings and
// re-evaluates the barrier (a departed member must not block the round).
// It reports whether the room is now empty and should be torn down.
func (s *Session) Leave(id string) (empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, _ := s.roster.Remove(id)
	if !removed {
		return s.roster.Count() == 0
	}
	s.votes.Discard(id)
	s.resolved = s.votes.Resolve(s.resolved)

	if s.roster.Count() == 0 {
		s.invalidateTimerLocked()
		return true
	}

	if s.phase == PhasePlaying {
		s.checkBarrierLocked()
	}
	s.bus.Publish(events.RoomUpdated, s.snapshotLocked())
	return false
}

// Vote records a member's full settings tuple and recomputes the room's
// resolved settings by per-field majority, ties keeping the current
// value. The room snapshot reflects the new resolution immediately.
func (s *Session) Vote(id string, vote settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.roster.Get(id) == nil {
		return ErrUnknownPlayer
	}
	if s.phase != PhaseLobby {
		return ErrGameInProgress
	}
	if err := vote.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	s.votes.Cast(id, vote)
	s.resolved = s.votes.Resolve(s.resolved)
	s.bus.Publish(events.RoomUpdated, s.snapshotLocked())
	return nil
}

// Start locks the settings in and begins a run: draws the shared
// scenario sequence, clears decisions and moves to playing. Host only.
func (s *Session) Start(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.roster.Get(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.IsHost {
		return ErrNotHost
	}
	if s.phase != PhaseLobby {
		return ErrGameInProgress
	}

	seq := s.catalog.Draw(s.resolved.ScenariosCount, s.resolved.Difficulty, s.resolved.ContentType, s.rng)
	if len(seq) == 0 {
		return ErrNoScenarios
	}
	s.sequence = seq
	s.current = 0
	s.decisions = make(map[string]map[int]scenarios.Decision)
	s.phase = PhasePlaying
	s.invalidateTimerLocked()

	s.bus.Publish(events.GameStarted, s.snapshotLocked())
	return nil
}

// Result reports how one submission was scored.
type Result struct {
	Decision scenarios.Decision
	Scenario scenarios.Scenario
	Index    int
	Outcome  scoring.Outcome
	Rescored bool // false on a resubmission: stored value overwritten, score untouched
}

// SubmitDecision records a member's decision for the current scenario.
// The first submission per (player, index) is scored; a resubmission
// overwrites the stored value without touching the score or the
// barrier. When the last outstanding member submits, allDecided is
// broadcast and the reveal timer is armed exactly once.
func (s *Session) SubmitDecision(id, raw string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return Result{}, ErrNotPlaying
	}
	if s.roster.Get(id) == nil {
		return Result{}, ErrUnknownPlayer
	}
	decision, err := scenarios.ParseDecision(raw)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidDecision, err)
	}

	scenario := s.sequence[s.current]
	res := Result{Decision: decision, Scenario: scenario, Index: s.current}

	if s.decisions[id] == nil {
		s.decisions[id] = make(map[int]scenarios.Decision)
	}
	if _, already := s.decisions[id][s.current]; already {
		s.decisions[id][s.current] = decision
		return res, nil
	}
	s.decisions[id][s.current] = decision

	p := s.roster.Get(id)
	res.Outcome = scoring.Score(decision, scenario.GroundTruth.Decision, p.Streak)
	res.Rescored = true
	s.roster.ApplyOutcome(id, res.Outcome)

	if !s.checkBarrierLocked() {
		s.bus.Publish(events.PlayerProgress, ProgressPayload{Players: s.playersLocked()})
	}
	return res, nil
}

// PlayAgain returns a finished room to the lobby for a fresh run.
// Scores, streaks and decisions reset; membership and votes persist.
func (s *Session) PlayAgain(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.roster.Get(id)
	if p == nil {
		return ErrUnknownPlayer
	}
	if !p.IsHost {
		return ErrNotHost
	}
	if s.phase != PhaseResults {
		return ErrNotFinished
	}

	s.roster.ResetAll()
	s.decisions = make(map[string]map[int]scenarios.Decision)
	s.sequence = nil
	s.current = 0
	s.phase = PhaseLobby
	s.invalidateTimerLocked()

	s.bus.Publish(events.RoomUpdated, s.snapshotLocked())
	return nil
}

// Close invalidates any pending reveal timer; called on room teardown
// so a stale timer cannot fire into a recreated room code.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateTimerLocked()
}

// checkBarrierLocked evaluates "every current member has decided for the
// current index" and, on completion, broadcasts allDecided and arms the
// reveal timer. Returns true when the barrier is satisfied.
func (s *Session) checkBarrierLocked() bool {
	for _, p := range s.roster.List() {
		if _, ok := s.decisions[p.ID][s.current]; !ok {
			return false
		}
	}
	if s.armedFor == s.current {
		return true
	}
	s.armedFor = s.current
	s.bus.Publish(events.AllDecided, struct{}{})

	gen := s.generation
	s.timer = time.AfterFunc(s.cfg.RevealDelay, func() {
		s.advance(gen)
	})
	return true
}

// advance fires after the reveal delay: next scenario, or results if
// the sequence is exhausted. A stale generation is a no-op.
func (s *Session) advance(gen int) {
	s.mu.Lock()

	if gen != s.generation || s.phase != PhasePlaying {
		s.mu.Unlock()
		return
	}

	if s.current < len(s.sequence)-1 {
		s.current++
		s.bus.Publish(events.NextScenario, NextScenarioPayload{
			CurrentScenarioIndex: s.current,
			Players:              s.playersLocked(),
		})
		s.mu.Unlock()
		return
	}

	s.phase = PhaseResults
	snap := s.snapshotLocked()
	rankings := s.playersLocked()
	hook := s.OnFinish
	s.bus.Publish(events.GameFinished, snap)
	s.mu.Unlock()

	if hook != nil {
		sortByScore(rankings)
		hook(snap, rankings)
	}
}

func (s *Session) invalidateTimerLocked() {
	s.generation++
	s.armedFor = -1
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func sortByScore(list []players.Player) {
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			if list[j].Score > list[i].Score {
				list[i], list[j] = list[j], list[i]
			}
		}
	}
}
