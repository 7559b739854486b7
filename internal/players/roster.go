package players

import (
	"sync"

	"apexarena/internal/scoring"
	"apexarena/internal/utility"
)

// Roster is the ordered membership of one room. Order is join order;
// the first member is the room's host and host promotion follows the
// same order when the host leaves.
type Roster struct {
	mu      sync.Mutex
	order   []string
	players map[string]*Player
}

func NewRoster() *Roster {
	return &Roster{
		players: make(map[string]*Player),
	}
}

func (r *Roster) Add(id, name string, isHost bool) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := &Player{
		ID:     id,
		Name:   name,
		Color:  utility.RandomColorHex(),
		IsHost: isHost,
	}
	r.players[id] = p
	r.order = append(r.order, id)
	return p
}

func (r *Roster) Get(id string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[id]
}

// Remove drops a player and, if they were host, promotes the oldest
// remaining member. It reports whether the player existed and whether a
// promotion happened.
func (r *Roster) Remove(id string) (removed bool, promoted *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return false, nil
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if p.IsHost && len(r.order) > 0 {
		next := r.players[r.order[0]]
		next.IsHost = true
		return true, next
	}
	return true, nil
}

// List returns players in join order.
func (r *Roster) List() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.players[id])
	}
	return list
}

func (r *Roster) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *Roster) Host() *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		if p := r.players[id]; p.IsHost {
			return p
		}
	}
	return nil
}

// ApplyOutcome folds one scored decision into a player's accumulators.
func (r *Roster) ApplyOutcome(id string, out scoring.Outcome) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return nil
	}
	p.Score += out.Points
	p.Streak = out.NextStreak
	if p.Streak > p.BestStreak {
		p.BestStreak = p.Streak
	}
	if out.Aligned {
		p.AlignCount++
	}
	if out.Disciplined {
		p.DisciplineCount++
	}
	return p
}

// ResetAll clears scores, streaks and counters but keeps membership,
// for a new run in the same room.
func (r *Roster) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		p.Score = 0
		p.Streak = 0
		p.BestStreak = 0
		p.AlignCount = 0
		p.DisciplineCount = 0
		p.Ready = false
	}
}
