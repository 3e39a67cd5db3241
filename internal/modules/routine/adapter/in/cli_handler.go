package in

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ascend/internal/modules/routine/dto"
	routinein "ascend/internal/modules/routine/port/in"
)

type CLIHandler struct {
	usecase routinein.Usecase
}

func NewCLIHandler(usecase routinein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

// Import reads a routine definition from a YAML file. A file carrying an id
// replaces that routine.
func (h CLIHandler) Import(ctx context.Context, path string) (dto.RoutineOutput, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dto.RoutineOutput{}, fmt.Errorf("read routine file: %w", err)
	}
	input, err := ParseRoutine(raw)
	if err != nil {
		return dto.RoutineOutput{}, fmt.Errorf("%s: %w", path, err)
	}
	return h.usecase.Save(ctx, input)
}

func ParseRoutine(raw []byte) (dto.SaveInput, error) {
	var input dto.SaveInput
	if err := yaml.Unmarshal(raw, &input); err != nil {
		return dto.SaveInput{}, fmt.Errorf("decode routine yaml: %w", err)
	}
	return input, nil
}

func (h CLIHandler) List(ctx context.Context) ([]dto.RoutineOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, routineID string) (dto.RoutineOutput, error) {
	return h.usecase.Get(ctx, routineID)
}

func (h CLIHandler) Delete(ctx context.Context, routineID string) error {
	return h.usecase.Delete(ctx, routineID)
}
