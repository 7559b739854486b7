package stats

type AccoladeID string

const (
	AccoladeFlawless       AccoladeID = "flawless"
	AccoladeHotStreak      AccoladeID = "hot_streak"
	AccoladeIronDiscipline AccoladeID = "iron_discipline"
	AccoladeHighRoller     AccoladeID = "high_roller"
	AccoladeUnstoppable    AccoladeID = "unstoppable"
	AccoladeVeteran        AccoladeID = "veteran"
)

type Accolade struct {
	ID          AccoladeID
	Name        string
	Description string
	Icon        string
}

var AllAccolades = map[AccoladeID]Accolade{
	AccoladeFlawless:       {ID: AccoladeFlawless, Name: "Flawless", Description: "Aligned with the market on every scenario in a match", Icon: "🎯"},
	AccoladeHotStreak:      {ID: AccoladeHotStreak, Name: "Hot Streak", Description: "5+ aligned decisions in a row", Icon: "🔥"},
	AccoladeIronDiscipline: {ID: AccoladeIronDiscipline, Name: "Iron Discipline", Description: "3+ discipline bonuses in a single match", Icon: "🧊"},
	AccoladeHighRoller:     {ID: AccoladeHighRoller, Name: "High Roller", Description: "500+ points in a single match", Icon: "💰"},
	AccoladeUnstoppable:    {ID: AccoladeUnstoppable, Name: "Unstoppable", Description: "3-match win streak", Icon: "🏆"},
	AccoladeVeteran:        {ID: AccoladeVeteran, Name: "Veteran", Description: "Played 10+ matches", Icon: "🎖️"},
}

// EvaluateMatchAccolades checks which accolades a player earned in a single match.
func EvaluateMatchAccolades(s PlayerMatchStats) []Accolade {
	var earned []Accolade

	// Flawless: aligned on every decision
	if s.Decisions > 0 && s.AlignCount == s.Decisions {
		earned = append(earned, AllAccolades[AccoladeFlawless])
	}

	// Hot Streak: 5+ aligned in a row
	if s.BestStreak >= 5 {
		earned = append(earned, AllAccolades[AccoladeHotStreak])
	}

	// Iron Discipline: 3+ discipline bonuses
	if s.DisciplineCount >= 3 {
		earned = append(earned, AllAccolades[AccoladeIronDiscipline])
	}

	// High Roller: 500+ points
	if s.Score >= 500 {
		earned = append(earned, AllAccolades[AccoladeHighRoller])
	}

	return earned
}

// EvaluateLifetimeAccolades checks which accolades a player earned across their career.
func EvaluateLifetimeAccolades(s PlayerLifetimeStats) []Accolade {
	var earned []Accolade

	// Unstoppable: 3-match win streak
	if s.WinStreak >= 3 {
		earned = append(earned, AllAccolades[AccoladeUnstoppable])
	}

	// Veteran: 10+ matches
	if s.MatchesPlayed >= 10 {
		earned = append(earned, AllAccolades[AccoladeVeteran])
	}

	return earned
}
