package dto

type AwardInput struct {
	Kind     string
	SourceID string
}

type LedgerOutput struct {
	Experience        int
	MissionsCompleted int
	WorkoutsCompleted int
	Rank              string
	NextRank          string
	NextRankAt        int
	// Applied is false when the source had already been awarded.
	Applied bool
}

type StatsOutput struct {
	Ledger              LedgerOutput
	CurrentStreak       int
	LongestStreak       int
	TotalVolume         float64
	MissionsDone        int
	MissionsTotal       int
	CompletionRatio     float64
	CompletedByCategory map[string]int
}
