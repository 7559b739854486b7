package settings

import "apexarena/internal/scenarios"

// VoteBox holds one full Settings vote per player. Resolution runs on
// every change, so the room's effective settings are live.
type VoteBox struct {
	votes map[string]Settings
}

func NewVoteBox() *VoteBox {
	return &VoteBox{votes: make(map[string]Settings)}
}

func (v *VoteBox) Cast(playerID string, s Settings) {
	v.votes[playerID] = s
}

// Discard drops a departed player's vote.
func (v *VoteBox) Discard(playerID string) {
	delete(v.votes, playerID)
}

func (v *VoteBox) Count() int {
	return len(v.votes)
}

// Votes returns a copy of the ballot, keyed by player ID.
func (v *VoteBox) Votes() map[string]Settings {
	out := make(map[string]Settings, len(v.votes))
	for id, s := range v.votes {
		out[id] = s
	}
	return out
}

// Resolve tallies each field independently across all votes and picks
// the value with the highest count. A tie for the top count keeps the
// room's current value for that field.
func (v *VoteBox) Resolve(current Settings) Settings {
	resolved := current

	counts := map[int]int{}
	diffs := map[scenarios.Difficulty]int{}
	types := map[scenarios.ContentType]int{}
	for _, vote := range v.votes {
		counts[vote.ScenariosCount]++
		diffs[vote.Difficulty]++
		types[vote.ContentType]++
	}

	if n, ok := majority(counts); ok {
		resolved.ScenariosCount = n
	}
	if d, ok := majority(diffs); ok {
		resolved.Difficulty = d
	}
	if ct, ok := majority(types); ok {
		resolved.ContentType = ct
	}
	return resolved
}

// majority returns the single value with the strictly highest count.
// ok is false when there are no votes or the top count is shared.
func majority[K comparable](counts map[K]int) (K, bool) {
	var (
		best    K
		bestN   int
		tiedTop bool
	)
	for value, n := range counts {
		switch {
		case n > bestN:
			best, bestN, tiedTop = value, n, false
		case n == bestN:
			tiedTop = true
		}
	}
	if bestN == 0 || tiedTop {
		var zero K
		return zero, false
	}
	return best, true
}
