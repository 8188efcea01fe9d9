package repository

import (
	"alcyxob/planforge/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// Library additions are additive and idempotent: IDs already present
	// are not duplicated.
	AddExercisesToLibrary(ctx context.Context, ownerID primitive.ObjectID, exerciseIDs []primitive.ObjectID) error
	AddProtocolsToLibrary(ctx context.Context, ownerID primitive.ObjectID, protocolIDs []primitive.ObjectID) error
}

// PlanRepository defines the interface for interacting with plan data.
type PlanRepository interface {
	Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Plan, error)
	// GetByTrainerID returns plans naming the trainer as co-owner.
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error)
	Update(ctx context.Context, plan *domain.Plan) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgramRepository defines the interface for interacting with program data.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutRepository defines the interface for interacting with workout data.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.Workout, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// InstanceRepository defines the interface for exercise instances under a workout.
type InstanceRepository interface {
	Create(ctx context.Context, instance *domain.ExerciseInstance) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseInstance, error)
	GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.ExerciseInstance, error)
	Update(ctx context.Context, instance *domain.ExerciseInstance) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SetRepository defines the interface for sets under an exercise instance.
type SetRepository interface {
	Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error)
	GetByInstanceID(ctx context.Context, instanceID primitive.ObjectID) ([]domain.ExerciseSet, error)
	Update(ctx context.Context, set *domain.ExerciseSet) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
