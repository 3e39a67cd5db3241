package usecase

import (
	"context"

	"ascend/internal/modules/routine/domain"
	"ascend/internal/modules/routine/dto"
	routinein "ascend/internal/modules/routine/port/in"
	"ascend/internal/modules/routine/service"
)

type Interactor struct {
	svc    *service.RoutineService
	userID string
}

func NewInteractor(svc *service.RoutineService, userID string) routinein.Usecase {
	return &Interactor{svc: svc, userID: userID}
}

func (i *Interactor) Save(ctx context.Context, input dto.SaveInput) (dto.RoutineOutput, error) {
	exercises := make([]domain.Exercise, 0, len(input.Exercises))
	for _, ex := range input.Exercises {
		exercises = append(exercises, domain.Exercise{
			ID:          ex.ID,
			Name:        ex.Name,
			MuscleGroup: ex.MuscleGroup,
			TargetSets:  ex.TargetSets,
			RepMin:      ex.RepMin,
			RepMax:      ex.RepMax,
		})
	}
	routine, err := i.svc.Save(ctx, i.userID, input.RoutineID, input.Name, exercises)
	if err != nil {
		return dto.RoutineOutput{}, err
	}
	return toOutput(routine), nil
}

func (i *Interactor) Get(ctx context.Context, routineID string) (dto.RoutineOutput, error) {
	routine, err := i.svc.Get(ctx, i.userID, routineID)
	if err != nil {
		return dto.RoutineOutput{}, err
	}
	return toOutput(routine), nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.RoutineOutput, error) {
	routines, err := i.svc.List(ctx, i.userID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoutineOutput, 0, len(routines))
	for _, r := range routines {
		out = append(out, toOutput(r))
	}
	return out, nil
}

func (i *Interactor) Delete(ctx context.Context, routineID string) error {
	return i.svc.Delete(ctx, i.userID, routineID)
}

func toOutput(r domain.Routine) dto.RoutineOutput {
	exercises := make([]dto.ExerciseOutput, 0, len(r.Exercises))
	for _, ex := range r.Exercises {
		exercises = append(exercises, dto.ExerciseOutput(ex))
	}
	return dto.RoutineOutput{ID: r.ID, Name: r.Name, Exercises: exercises, UpdatedAt: r.UpdatedAt}
}
