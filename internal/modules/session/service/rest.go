package service

import (
	"time"

	"github.com/rs/zerolog"

	"ascend/internal/modules/session/domain"
)

// RestCoach starts a rest countdown whenever a set is completed.
type RestCoach struct {
	controller *Controller
	duration   time.Duration
	logger     zerolog.Logger
}

func NewRestCoach(controller *Controller, duration time.Duration, logger zerolog.Logger) *RestCoach {
	return &RestCoach{controller: controller, duration: duration, logger: logger.With().Str("component", "rest_coach").Logger()}
}

// Attach subscribes the coach to the controller's events.
func (r *RestCoach) Attach() {
	r.controller.Subscribe(r.Handle)
}

func (r *RestCoach) Handle(ev domain.Event) {
	if ev.Kind != domain.EventSetLogged {
		return
	}
	if err := r.controller.StartRest(ev.SessionID, r.duration); err != nil {
		r.logger.Debug().Err(err).Str("session_id", ev.SessionID).Msg("rest not started")
		return
	}
	r.logger.Debug().Str("session_id", ev.SessionID).Str("exercise_id", ev.ExerciseID).Dur("duration", r.duration).Msg("rest started")
}
