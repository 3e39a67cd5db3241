package in

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoutine(t *testing.T) {
	raw := []byte(`
name: Push day
exercises:
  - name: Bench press
    muscle_group: chest
    target_sets: 3
    rep_min: 6
    rep_max: 10
  - id: dips
    name: Dips
    target_sets: 2
    rep_min: 8
    rep_max: 12
`)
	input, err := ParseRoutine(raw)
	require.NoError(t, err)
	assert.Equal(t, "Push day", input.Name)
	assert.Empty(t, input.RoutineID)
	require.Len(t, input.Exercises, 2)
	assert.Equal(t, "chest", input.Exercises[0].MuscleGroup)
	assert.Equal(t, 3, input.Exercises[0].TargetSets)
	assert.Equal(t, "dips", input.Exercises[1].ID)
	assert.Equal(t, 12, input.Exercises[1].RepMax)
}

func TestParseRoutineRejectsMalformedYAML(t *testing.T) {
	_, err := ParseRoutine([]byte("name: [unterminated"))
	require.Error(t, err)
}
