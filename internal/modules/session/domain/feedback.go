package domain

import (
	"time"

	missiondomain "ascend/internal/modules/mission/domain"
)

// FeedbackPrompt is open between focus expiry (or early completion) and the
// user's submit or dismiss. It gates the mission's terminal transition.
type FeedbackPrompt struct {
	SessionID    string
	MissionID    string
	MissionTitle string
	OpenedAt     time.Time
	Difficulty   missiondomain.Difficulty
	EnergyAfter  int
}

func NewFeedbackPrompt(sessionID string, mission MissionRef, at time.Time) FeedbackPrompt {
	return FeedbackPrompt{
		SessionID:    sessionID,
		MissionID:    mission.ID,
		MissionTitle: mission.Title,
		OpenedAt:     at,
		Difficulty:   missiondomain.DifficultyNormal,
		EnergyAfter:  missiondomain.DefaultEnergy,
	}
}

// Answer fills unset fields from the prompt defaults and validates the result.
func (p FeedbackPrompt) Answer(difficulty missiondomain.Difficulty, energy int) (missiondomain.Feedback, error) {
	if difficulty == "" {
		difficulty = p.Difficulty
	}
	if energy == 0 {
		energy = p.EnergyAfter
	}
	fb := missiondomain.Feedback{Difficulty: difficulty, EnergyAfter: energy}
	if err := fb.Validate(); err != nil {
		return missiondomain.Feedback{}, err
	}
	return fb, nil
}
