package scenarios

import "fmt"

// Decision is the canonical three-way choice. The data set and some
// clients use the up/flat/down aliases; ParseDecision folds both
// vocabularies into this one.
type Decision string

const (
	DecisionBuy  = Decision("buy")
	DecisionHold = Decision("hold")
	DecisionSell = Decision("sell")
)

func ParseDecision(s string) (Decision, error) {
	switch s {
	case "buy", "up":
		return DecisionBuy, nil
	case "hold", "flat":
		return DecisionHold, nil
	case "sell", "down":
		return DecisionSell, nil
	}
	return "", fmt.Errorf("unknown decision: %q", s)
}

type Difficulty string

const (
	DifficultyBeginner     = Difficulty("beginner")
	DifficultyIntermediate = Difficulty("intermediate")
	DifficultyExpert       = Difficulty("expert")
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyExpert:
		return true
	}
	return false
}

type ContentType string

const (
	ContentCharts = ContentType("charts")
	ContentQuiz   = ContentType("quiz")
)

func (c ContentType) Valid() bool {
	return c == ContentCharts || c == ContentQuiz
}

// GroundTruth is the precomputed correct decision for a scenario, plus
// the explanation shown during the reveal phase.
type GroundTruth struct {
	Decision          Decision `json:"decision"`
	ActivatedNetworks []string `json:"activatedNetworks"`
	Rationale         string   `json:"rationale"`
	RiskComment       string   `json:"riskComment"`
}

type Scenario struct {
	ID            string      `json:"id"`
	Difficulty    Difficulty  `json:"difficulty"`
	ContentType   ContentType `json:"contentType"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	ChartSymbol   string      `json:"chartSymbol,omitempty"`
	Options       []string    `json:"options,omitempty"`
	CorrectOption int         `json:"correctOption,omitempty"`
	GroundTruth   GroundTruth `json:"groundTruth"`
}
