package schedule

import (
	"context"
	"errors"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"
	"alcyxob/planforge/internal/service"
)

const maxExercisesPerWorkout = 5

// setsPerFocus prescribes working-set volume by phase focus.
var setsPerFocus = map[domain.PhaseFocus]int{
	domain.FocusFoundation:  3,
	domain.FocusDevelopment: 4,
	domain.FocusPeak:        5,
	domain.FocusMaintenance: 3,
	domain.FocusDeload:      2,
}

// LibraryPopulator fills workouts from the owner's exercise library,
// rotating the starting exercise with the workout sequence so sessions
// vary across the week. An empty library yields an empty workout rather
// than an error.
type LibraryPopulator struct {
	users repository.UserRepository
}

func NewLibraryPopulator(users repository.UserRepository) *LibraryPopulator {
	return &LibraryPopulator{users: users}
}

var _ service.ExercisePopulator = (*LibraryPopulator)(nil)

func (p *LibraryPopulator) PopulateWorkout(ctx context.Context, plan *domain.Plan, program *domain.Program, workout *domain.Workout) ([]service.PopulatedInstance, error) {
	if workout.IsCardio {
		// Cardio sessions are duration-based; no set prescription.
		return nil, nil
	}

	user, err := p.users.GetByID(ctx, plan.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	library := user.ExerciseLibraryIDs
	if len(library) == 0 {
		return nil, nil
	}

	count := maxExercisesPerWorkout
	if count > len(library) {
		count = len(library)
	}
	setCount := setsPerFocus[program.Focus]
	if setCount == 0 {
		setCount = 3
	}
	reps := repsForIntensity(program.Intensity.Upper)

	instances := make([]service.PopulatedInstance, 0, count)
	for i := 0; i < count; i++ {
		exerciseID := library[(workout.Sequence+i)%len(library)]
		inst := service.PopulatedInstance{
			Instance: domain.ExerciseInstance{
				WorkoutID:  workout.ID,
				ExerciseID: exerciseID,
				Sequence:   i + 1,
			},
		}
		for s := 1; s <= setCount; s++ {
			inst.Sets = append(inst.Sets, domain.ExerciseSet{
				Sequence:   s,
				TargetReps: reps,
			})
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

// repsForIntensity converts the phase's top working intensity into a rep
// target, following the usual percentage-of-max rep continuum.
func repsForIntensity(upper float64) int {
	switch {
	case upper >= 0.90:
		return 3
	case upper >= 0.85:
		return 4
	case upper >= 0.80:
		return 6
	case upper >= 0.75:
		return 8
	case upper >= 0.70:
		return 10
	case upper >= 0.60:
		return 12
	default:
		return 15
	}
}

// LibraryProtocolAssigner attaches protocols from the owner's protocol
// library, cycling through them in instance order. When the library is
// empty the instances keep a nil protocol, which readers treat as
// straight sets.
type LibraryProtocolAssigner struct {
	users repository.UserRepository
}

func NewLibraryProtocolAssigner(users repository.UserRepository) *LibraryProtocolAssigner {
	return &LibraryProtocolAssigner{users: users}
}

var _ service.ProtocolAssigner = (*LibraryProtocolAssigner)(nil)

func (a *LibraryProtocolAssigner) AssignProtocols(ctx context.Context, plan *domain.Plan, program *domain.Program, instances []service.PopulatedInstance) error {
	if len(instances) == 0 {
		return nil
	}
	user, err := a.users.GetByID(ctx, plan.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	protocols := user.ProtocolLibraryIDs
	if len(protocols) == 0 {
		return nil
	}
	for i := range instances {
		id := protocols[i%len(protocols)]
		instances[i].Instance.ProtocolID = &id
	}
	return nil
}
