package scenarios

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
)

//go:embed data/scenarios.json
var dataFS embed.FS

// Catalog is the immutable scenario data set. It is loaded once at
// startup and shared by every room.
type Catalog struct {
	scenarios []Scenario
}

func Load() (*Catalog, error) {
	raw, err := dataFS.ReadFile("data/scenarios.json")
	if err != nil {
		return nil, fmt.Errorf("reading scenario data: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var list []Scenario
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding scenario data: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("scenario data set is empty")
	}

	for i := range list {
		s := &list[i]
		decision, err := ParseDecision(string(s.GroundTruth.Decision))
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.ID, err)
		}
		s.GroundTruth.Decision = decision
		if !s.Difficulty.Valid() {
			return nil, fmt.Errorf("scenario %q: unknown difficulty %q", s.ID, s.Difficulty)
		}
		if !s.ContentType.Valid() {
			return nil, fmt.Errorf("scenario %q: unknown content type %q", s.ID, s.ContentType)
		}
	}
	return &Catalog{scenarios: list}, nil
}

func (c *Catalog) Len() int {
	return len(c.scenarios)
}

// Filter returns the scenarios matching both difficulty and content type.
func (c *Catalog) Filter(d Difficulty, ct ContentType) []Scenario {
	var out []Scenario
	for _, s := range c.scenarios {
		if s.Difficulty == d && s.ContentType == ct {
			out = append(out, s)
		}
	}
	return out
}

// Draw selects count scenarios for one game run: filter, fall back to
// the whole catalog if nothing matches, shuffle once, then fill the
// requested count by cycling over the shuffled pool. Every member of a
// room sees the resulting sequence in the same order.
func (c *Catalog) Draw(count int, d Difficulty, ct ContentType, rng *rand.Rand) []Scenario {
	pool := c.Filter(d, ct)
	if len(pool) == 0 {
		pool = make([]Scenario, len(c.scenarios))
		copy(pool, c.scenarios)
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	out := make([]Scenario, count)
	for i := range out {
		out[i] = pool[i%len(pool)]
	}
	return out
}
