package rooms

import (
	"math/rand"
	"sync"
	"time"

	"apexarena/internal/events"
	"apexarena/internal/game"
	"apexarena/internal/scenarios"
	"apexarena/internal/wshub"

	"go.uber.org/zap"
)

// Store is the process-wide room registry: the only cross-connection
// shared resource. All room state mutation goes through each room's
// Session; the store only owns the code → room mapping.
type Store struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	catalog *scenarios.Catalog
	cfg     game.Config
	seed    func() *rand.Rand

	onCreate func(*Room)
}

func NewStore(catalog *scenarios.Catalog, cfg game.Config) *Store {
	s := &Store{
		rooms:   make(map[string]*Room),
		catalog: catalog,
		cfg:     cfg,
		seed: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
	return s
}

// SetSeeder overrides the per-room RNG source, for deterministic draws
// in tests.
func (s *Store) SetSeeder(seed func() *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seed = seed
}

// OnCreate registers a hook run for every newly created room, before
// the room is visible to other callers. The server uses it to attach
// persistence to each session.
func (s *Store) OnCreate(fn func(*Room)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCreate = fn
}

// GetOrCreate returns the room registered under code, creating it with
// default settings when absent. An empty code gets a generated one.
func (s *Store) GetOrCreate(code string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code = Normalize(code)
	if code == "" {
		for range 10 {
			generated, err := GenerateCode()
			if err != nil {
				return nil, err
			}
			if _, exists := s.rooms[generated]; !exists {
				code = generated
				break
			}
		}
	}

	if room, exists := s.rooms[code]; exists {
		return room, nil
	}

	bus := events.NewBus()
	room := &Room{
		Code:      code,
		Session:   game.NewSession(code, s.catalog, bus, s.cfg, s.seed()),
		Bus:       bus,
		Hub:       wshub.NewHub(),
		CreatedAt: time.Now(),
		done:      make(chan struct{}),
	}
	if s.onCreate != nil {
		s.onCreate(room)
	}
	s.rooms[code] = room
	go room.forward()

	zap.S().Infow("room created", "room", code)
	return room, nil
}

func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[Normalize(code)]
}

// Destroy tears a room down: pending timers are invalidated so nothing
// stale can fire into a recreated room under the same code.
func (s *Store) Destroy(code string) {
	s.mu.Lock()
	room, exists := s.rooms[Normalize(code)]
	if exists {
		delete(s.rooms, Normalize(code))
	}
	s.mu.Unlock()

	if !exists {
		return
	}
	room.Session.Close()
	close(room.done)
	zap.S().Infow("room destroyed", "room", room.Code)
}

func (s *Store) List() []*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	return list
}

// SweepStale destroys rooms older than ttl. Run periodically from the
// server; guards against rooms whose members never cleanly disconnect.
func (s *Store) SweepStale(ttl time.Duration) int {
	s.mu.Lock()
	var stale []string
	now := time.Now()
	for code, room := range s.rooms {
		if now.Sub(room.CreatedAt) > ttl {
			stale = append(stale, code)
		}
	}
	s.mu.Unlock()

	for _, code := range stale {
		s.Destroy(code)
	}
	return len(stale)
}
