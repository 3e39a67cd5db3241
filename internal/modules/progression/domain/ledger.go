package domain

import (
	"fmt"
	"sort"
	"time"
)

// Kind discriminates the work that earns experience. Awards are looked up
// from the kind, never spelled out at call sites.
type Kind string

const (
	KindMission Kind = "mission"
	KindWorkout Kind = "workout"
)

type Delta struct {
	Experience        int
	MissionsCompleted int
	WorkoutsCompleted int
}

var awards = map[Kind]Delta{
	KindMission: {Experience: 50, MissionsCompleted: 1},
	KindWorkout: {Experience: 150, WorkoutsCompleted: 1},
}

func (k Kind) Validate() error {
	if _, ok := awards[k]; !ok {
		return fmt.Errorf("unsupported work kind %q", string(k))
	}
	return nil
}

func AwardFor(kind Kind) (Delta, error) {
	delta, ok := awards[kind]
	if !ok {
		return Delta{}, fmt.Errorf("unsupported work kind %q", string(kind))
	}
	return delta, nil
}

// Award is one application of a Delta, keyed by the record that earned it
// so that it is applied at most once.
type Award struct {
	UserID    string
	Kind      Kind
	SourceID  string
	Delta     Delta
	AwardedAt time.Time
}

type Ledger struct {
	UserID            string
	Experience        int
	MissionsCompleted int
	WorkoutsCompleted int
	UpdatedAt         time.Time
}

type Rank struct {
	Title         string
	MinExperience int
}

// RankTable is ordered by ascending threshold and starts at zero.
type RankTable []Rank

func NewRankTable(ranks []Rank) (RankTable, error) {
	if len(ranks) == 0 {
		return nil, fmt.Errorf("rank table is empty")
	}
	out := make(RankTable, len(ranks))
	copy(out, ranks)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MinExperience < out[j].MinExperience })
	if out[0].MinExperience != 0 {
		return nil, fmt.Errorf("lowest rank must start at 0 experience")
	}
	return out, nil
}

// Resolve returns the rank held at experience and the next one, if any.
func (t RankTable) Resolve(experience int) (Rank, *Rank) {
	current := t[0]
	for i, rank := range t {
		if experience < rank.MinExperience {
			next := t[i]
			return current, &next
		}
		current = rank
	}
	return current, nil
}

// Standing is a ledger together with its derived rank.
type Standing struct {
	Ledger   Ledger
	Rank     Rank
	NextRank *Rank
}

func (t RankTable) Standing(ledger Ledger) Standing {
	rank, next := t.Resolve(ledger.Experience)
	return Standing{Ledger: ledger, Rank: rank, NextRank: next}
}
