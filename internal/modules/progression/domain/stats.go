package domain

import (
	"sort"
	"time"
)

type Streak struct {
	Current int
	Longest int
}

// ComputeStreak counts consecutive calendar days (UTC) with at least one
// completion. The current streak stays alive through today until the day
// is over, so a streak ending yesterday still counts.
func ComputeStreak(completions []time.Time, today time.Time) Streak {
	if len(completions) == 0 {
		return Streak{}
	}
	seen := map[time.Time]struct{}{}
	days := make([]time.Time, 0, len(completions))
	for _, c := range completions {
		day := truncateDay(c)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	cursor := truncateDay(today)
	if _, ok := seen[cursor]; !ok {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for {
		if _, ok := seen[cursor]; !ok {
			break
		}
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return Streak{Current: current, Longest: longest}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type MissionTally struct {
	Done       int
	Total      int
	ByCategory map[string]int
}

// CompletionRatio is done over all missions, zero when there are none.
func (m MissionTally) CompletionRatio() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Done) / float64(m.Total)
}

type Stats struct {
	Standing        Standing
	Streak          Streak
	TotalVolume     float64
	Missions        MissionTally
	CompletionRatio float64
}
