package service

import (
	"context"
	"time"

	"alcyxob/planforge/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerateRequest carries everything a generator needs to lay out the
// workout skeleton for one program window.
type GenerateRequest struct {
	ProgramID     primitive.ObjectID
	PlanID        primitive.ObjectID
	OwnerID       primitive.ObjectID
	StartDate     time.Time
	EndDate       time.Time
	DaysPerWeek   int
	CardioDays    int
	Split         domain.SplitType
	PreferredDays []int
	// DayAssignments optionally pins a workout name to a weekday
	// (time.Weekday values as ints). Generators fall back to the split
	// rotation for unpinned days.
	DayAssignments map[int]string
}

// ScheduleGenerator produces unpersisted workout records for a program
// window. Implementations must not write to storage; callers persist the
// result.
type ScheduleGenerator interface {
	GenerateWorkouts(ctx context.Context, req GenerateRequest) ([]domain.Workout, error)
}

// PopulatedInstance is one exercise slot plus its prescribed sets, ready
// to be persisted under a workout.
type PopulatedInstance struct {
	Instance domain.ExerciseInstance
	Sets     []domain.ExerciseSet
}

// ExercisePopulator fills a generated workout with exercise instances.
// The program is passed so populators can prescribe volume from the
// phase the workout falls in.
type ExercisePopulator interface {
	PopulateWorkout(ctx context.Context, plan *domain.Plan, program *domain.Program, workout *domain.Workout) ([]PopulatedInstance, error)
}

// ProtocolAssigner attaches rep/intensity protocols to populated
// instances in place.
type ProtocolAssigner interface {
	AssignProtocols(ctx context.Context, plan *domain.Plan, program *domain.Program, instances []PopulatedInstance) error
}
