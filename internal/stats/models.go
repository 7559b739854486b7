package stats

import "time"

type PlayerMatchStats struct {
	PlayerID        string
	PlayerName      string
	PlayerColor     string
	MatchID         string
	Decisions       int
	Score           int
	AlignCount      int
	DisciplineCount int
	BestStreak      int
	AlignRate       float64 // percentage of aligned decisions
}

type PlayerLifetimeStats struct {
	PlayerID      string
	PlayerName    string
	PlayerColor   string
	MatchesPlayed int
	TotalScore    int
	BestMatch     int
	WinCount      int
	WinStreak     int
	Accolades     []Accolade
}

type LeaderboardEntry struct {
	PlayerID    string
	PlayerName  string
	PlayerColor string
	Value       int
	Rank        int
}

type MatchRecap struct {
	MatchID   string
	RoomCode  string
	StartedAt *time.Time
	EndedAt   *time.Time
	Players   []PlayerMatchStats
}
