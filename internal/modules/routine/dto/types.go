package dto

import "time"

// ExerciseInput doubles as the YAML import shape.
type ExerciseInput struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	MuscleGroup string `yaml:"muscle_group"`
	TargetSets  int    `yaml:"target_sets"`
	RepMin      int    `yaml:"rep_min"`
	RepMax      int    `yaml:"rep_max"`
}

type SaveInput struct {
	// RoutineID is empty for a new routine.
	RoutineID string          `yaml:"id"`
	Name      string          `yaml:"name"`
	Exercises []ExerciseInput `yaml:"exercises"`
}

type ExerciseOutput struct {
	ID          string
	Name        string
	MuscleGroup string
	TargetSets  int
	RepMin      int
	RepMax      int
}

type RoutineOutput struct {
	ID        string
	Name      string
	Exercises []ExerciseOutput
	UpdatedAt time.Time
}
