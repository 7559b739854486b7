package scoring

import "apexarena/internal/scenarios"

const (
	alignedBase      = 100
	streakBonus      = 20
	misalignedPoints = -50
	disciplineBonus  = 50
)

// Outcome is the result of scoring one decision against one scenario.
type Outcome struct {
	Points      int
	Aligned     bool
	Disciplined bool
	NextStreak  int
}

// Score evaluates a decision against the ground truth. Aligned decisions
// earn 100 plus 20 per point of streak carried in; misaligned decisions
// lose 50 and break the streak. Correctly choosing to do nothing earns
// an additional flat discipline bonus on top of the aligned payout.
func Score(decision, truth scenarios.Decision, streak int) Outcome {
	out := Outcome{}

	if decision == truth {
		out.Aligned = true
		out.Points = alignedBase + streakBonus*streak
		out.NextStreak = streak + 1
	} else {
		out.Points = misalignedPoints
		out.NextStreak = 0
	}

	if decision == scenarios.DecisionHold && truth == scenarios.DecisionHold {
		out.Disciplined = true
		out.Points += disciplineBonus
	}

	return out
}
