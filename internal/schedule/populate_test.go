package schedule

import (
	"context"
	"testing"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"
	"alcyxob/planforge/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUserRepo struct {
	user *domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if r.user == nil || r.user.ID != id {
		return nil, repository.ErrNotFound
	}
	return r.user, nil
}

func (r *fakeUserRepo) AddExercisesToLibrary(ctx context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) error {
	return nil
}

func (r *fakeUserRepo) AddProtocolsToLibrary(ctx context.Context, ownerID primitive.ObjectID, ids []primitive.ObjectID) error {
	return nil
}

func objectIDs(n int) []primitive.ObjectID {
	out := make([]primitive.ObjectID, n)
	for i := range out {
		out[i] = primitive.NewObjectID()
	}
	return out
}

func TestLibraryPopulator(t *testing.T) {
	ctx := context.Background()
	ownerID := primitive.NewObjectID()
	plan := &domain.Plan{OwnerID: ownerID}

	t.Run("prescribes sets and reps from the phase", func(t *testing.T) {
		repo := &fakeUserRepo{user: &domain.User{ID: ownerID, ExerciseLibraryIDs: objectIDs(8)}}
		pop := NewLibraryPopulator(repo)
		program := &domain.Program{
			Focus:     domain.FocusPeak,
			Intensity: domain.IntensityRange{Lower: 0.85, Upper: 0.95},
		}
		workout := &domain.Workout{ID: primitive.NewObjectID(), Sequence: 1}

		instances, err := pop.PopulateWorkout(ctx, plan, program, workout)
		require.NoError(t, err)
		require.Len(t, instances, 5, "capped at five exercises")

		for i, inst := range instances {
			assert.Equal(t, i+1, inst.Instance.Sequence)
			assert.Equal(t, workout.ID, inst.Instance.WorkoutID)
			require.Len(t, inst.Sets, 5, "peak phases get five sets")
			assert.Equal(t, 3, inst.Sets[0].TargetReps, "90%+ intensity means triples")
		}
	})

	t.Run("small library is used in full", func(t *testing.T) {
		repo := &fakeUserRepo{user: &domain.User{ID: ownerID, ExerciseLibraryIDs: objectIDs(2)}}
		pop := NewLibraryPopulator(repo)
		program := &domain.Program{Focus: domain.FocusFoundation, Intensity: domain.IntensityRange{Lower: 0.55, Upper: 0.65}}
		workout := &domain.Workout{ID: primitive.NewObjectID()}

		instances, err := pop.PopulateWorkout(ctx, plan, program, workout)
		require.NoError(t, err)
		assert.Len(t, instances, 2)
		assert.Len(t, instances[0].Sets, 3)
		assert.Equal(t, 12, instances[0].Sets[0].TargetReps)
	})

	t.Run("empty library yields an empty workout", func(t *testing.T) {
		repo := &fakeUserRepo{user: &domain.User{ID: ownerID}}
		pop := NewLibraryPopulator(repo)
		workout := &domain.Workout{ID: primitive.NewObjectID()}

		instances, err := pop.PopulateWorkout(ctx, plan, &domain.Program{}, workout)
		require.NoError(t, err)
		assert.Empty(t, instances)
	})

	t.Run("cardio workouts get no strength content", func(t *testing.T) {
		repo := &fakeUserRepo{user: &domain.User{ID: ownerID, ExerciseLibraryIDs: objectIDs(5)}}
		pop := NewLibraryPopulator(repo)
		workout := &domain.Workout{ID: primitive.NewObjectID(), IsCardio: true}

		instances, err := pop.PopulateWorkout(ctx, plan, &domain.Program{}, workout)
		require.NoError(t, err)
		assert.Empty(t, instances)
	})
}

func TestLibraryProtocolAssigner(t *testing.T) {
	ctx := context.Background()
	ownerID := primitive.NewObjectID()
	plan := &domain.Plan{OwnerID: ownerID}
	program := &domain.Program{}

	instances := func(n int) []service.PopulatedInstance {
		out := make([]service.PopulatedInstance, n)
		for i := range out {
			out[i].Instance = domain.ExerciseInstance{Sequence: i + 1}
		}
		return out
	}

	t.Run("cycles through the protocol library", func(t *testing.T) {
		protocols := objectIDs(2)
		repo := &fakeUserRepo{user: &domain.User{ID: ownerID, ProtocolLibraryIDs: protocols}}
		assigner := NewLibraryProtocolAssigner(repo)

		insts := instances(3)
		require.NoError(t, assigner.AssignProtocols(ctx, plan, program, insts))

		require.NotNil(t, insts[0].Instance.ProtocolID)
		assert.Equal(t, protocols[0], *insts[0].Instance.ProtocolID)
		assert.Equal(t, protocols[1], *insts[1].Instance.ProtocolID)
		assert.Equal(t, protocols[0], *insts[2].Instance.ProtocolID)
	})

	t.Run("empty protocol library leaves instances bare", func(t *testing.T) {
		repo := &fakeUserRepo{user: &domain.User{ID: ownerID}}
		assigner := NewLibraryProtocolAssigner(repo)

		insts := instances(2)
		require.NoError(t, assigner.AssignProtocols(ctx, plan, program, insts))
		assert.Nil(t, insts[0].Instance.ProtocolID)
	})
}
