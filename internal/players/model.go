package players

type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	IsHost          bool   `json:"isHost"`
	Score           int    `json:"score"`
	Streak          int    `json:"streak"`
	BestStreak      int    `json:"bestStreak"`
	AlignCount      int    `json:"alignCount"`
	DisciplineCount int    `json:"disciplineCount"`
	Ready           bool   `json:"ready"`
}
