package service

import (
	"testing"

	"alcyxob/planforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strengthParams(f *fixture) CreatePlanParams {
	return CreatePlanParams{
		Name:              "Strength Block",
		Goal:              domain.GoalStrength,
		TotalWeeks:        10,
		Style:             domain.StyleAuto,
		StartDate:         f.day(0),
		WeightliftingDays: 3,
		Split:             domain.SplitFullBody,
	}
}

func TestCreatePlan(t *testing.T) {
	t.Run("builds the full tree as a draft", func(t *testing.T) {
		f := newFixture(t)
		f.populator.perWorkout = 1
		f.populator.setsPer = 2

		plan, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, strengthParams(f))
		require.NoError(t, err)

		assert.Equal(t, domain.PlanStatusDraft, plan.Status)
		assert.Equal(t, f.day(0), plan.StartDate)
		assert.Equal(t, f.day(69), plan.EndDate, "10 weeks is 70 days inclusive")

		// Auto strength at 10 weeks resolves to a development and a peak
		// phase, one program per phase.
		programs, err := f.programs.GetByPlanID(f.ctx, plan.ID)
		require.NoError(t, err)
		require.Len(t, programs, 2)

		assert.Equal(t, domain.FocusDevelopment, programs[0].Focus)
		assert.Equal(t, f.day(0), programs[0].StartDate)
		assert.Equal(t, f.day(48), programs[0].EndDate)

		assert.Equal(t, domain.FocusPeak, programs[1].Focus)
		assert.Equal(t, f.day(49), programs[1].StartDate)
		assert.Equal(t, f.day(69), programs[1].EndDate)

		// Program windows tile the plan window exactly.
		assert.Equal(t, plan.StartDate, programs[0].StartDate)
		assert.Equal(t, plan.EndDate, programs[1].EndDate)
		assert.Equal(t, programs[0].EndDate.AddDate(0, 0, 1), programs[1].StartDate)

		workouts, err := f.workouts.GetByPlanID(f.ctx, plan.ID)
		require.NoError(t, err)
		assert.Len(t, workouts, 2, "stub generator emits one workout per program")

		for _, w := range workouts {
			instances, err := f.instances.GetByWorkoutID(f.ctx, w.ID)
			require.NoError(t, err)
			require.Len(t, instances, 1)
			sets, err := f.sets.GetByInstanceID(f.ctx, instances[0].ID)
			require.NoError(t, err)
			assert.Len(t, sets, 2)
		}
	})

	t.Run("program names carry the phase sequence and focus", func(t *testing.T) {
		f := newFixture(t)
		plan, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, strengthParams(f))
		require.NoError(t, err)

		programs, err := f.programs.GetByPlanID(f.ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, "Phase 1: Development", programs[0].Name)
		assert.Equal(t, "Phase 2: Peak", programs[1].Name)
		assert.Equal(t, 1, programs[0].Sequence)
		assert.Equal(t, 2, programs[1].Sequence)
	})

	t.Run("single workout plan keeps one workout and one day", func(t *testing.T) {
		f := newFixture(t)
		params := strengthParams(f)
		params.TotalWeeks = 1
		params.SingleWorkout = true

		plan, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		require.NoError(t, err)
		assert.Equal(t, plan.StartDate, plan.EndDate)

		workouts, err := f.workouts.GetByPlanID(f.ctx, plan.ID)
		require.NoError(t, err)
		assert.Len(t, workouts, 1)
	})

	t.Run("same day single workout plan stays draft and activates", func(t *testing.T) {
		f := newFixture(t)
		params := strengthParams(f)
		params.TotalWeeks = 1
		params.SingleWorkout = true

		plan, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		require.NoError(t, err)

		// The fixture clock sits at midday of the start day; the plan must
		// read as draft for the whole of its end date, not expire at its
		// first midnight.
		got, err := f.planSvc.GetPlan(f.ctx, plan.ID, f.ownerID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusDraft, got.EffectiveStatus)

		_, err = f.lifecycle.Activate(f.ctx, plan.ID, f.ownerID)
		assert.NoError(t, err)
	})

	t.Run("single workout window follows the generated workout", func(t *testing.T) {
		f := newFixture(t)
		f.generator.offsetDays = 2 // the workout lands two days into the window
		params := strengthParams(f)
		params.TotalWeeks = 1
		params.SingleWorkout = true

		plan, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		require.NoError(t, err)

		stored, err := f.plans.GetByID(f.ctx, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, f.day(0), stored.StartDate)
		assert.Equal(t, f.day(2), stored.EndDate, "window must cover the workout's day")

		programs, err := f.programs.GetByPlanID(f.ctx, plan.ID)
		require.NoError(t, err)
		require.Len(t, programs, 1)
		assert.Equal(t, f.day(2), programs[0].EndDate)
	})

	t.Run("rejects a client account as trainer co-owner", func(t *testing.T) {
		f := newFixture(t)
		params := strengthParams(f)
		params.TrainerID = &f.ownerID // fixture owner is a client

		_, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		assert.ErrorIs(t, err, ErrInvalidPlanParams)
	})

	t.Run("accepts a trainer account as co-owner", func(t *testing.T) {
		f := newFixture(t)
		trainerID := f.seedTrainer(t)
		params := strengthParams(f)
		params.TrainerID = &trainerID

		plan, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		require.NoError(t, err)
		require.NotNil(t, plan.TrainerID)
		assert.Equal(t, trainerID, *plan.TrainerID)
	})

	t.Run("rejects bad parameters", func(t *testing.T) {
		f := newFixture(t)

		params := strengthParams(f)
		params.Name = ""
		_, err := f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		assert.ErrorIs(t, err, ErrInvalidPlanParams)

		params = strengthParams(f)
		params.WeightliftingDays = 0
		_, err = f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		assert.ErrorIs(t, err, ErrInvalidPlanParams)

		params = strengthParams(f)
		params.TotalWeeks = 0
		_, err = f.planSvc.CreatePlan(f.ctx, f.ownerID, params)
		assert.Error(t, err)
	})
}

func TestGetPlanAndList(t *testing.T) {
	f := newFixture(t)

	// An active plan whose end date has passed reads as completed.
	expired := f.seedPlan(t, domain.PlanStatusActive, f.day(-60), f.day(-10))
	current := f.seedPlan(t, domain.PlanStatusActive, f.day(-5), f.day(30))

	got, err := f.planSvc.GetPlan(f.ctx, expired.ID, f.ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusActive, got.Plan.Status, "stored status untouched")
	assert.Equal(t, domain.PlanStatusCompleted, got.EffectiveStatus)

	list, err := f.planSvc.ListPlans(f.ctx, f.ownerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	byID := map[string]PlanWithStatus{}
	for _, p := range list {
		byID[p.Plan.ID.Hex()] = p
	}
	assert.Equal(t, domain.PlanStatusCompleted, byID[expired.ID.Hex()].EffectiveStatus)
	assert.Equal(t, domain.PlanStatusActive, byID[current.ID.Hex()].EffectiveStatus)

	t.Run("foreign owner is denied", func(t *testing.T) {
		other := &domain.User{Name: "Other", Email: "other@example.com", Role: domain.RoleClient}
		otherID, err := f.users.Create(f.ctx, other)
		require.NoError(t, err)
		_, err = f.planSvc.GetPlan(f.ctx, current.ID, otherID)
		assert.ErrorIs(t, err, ErrPlanAccessDenied)
	})
}

func TestListCoachedPlans(t *testing.T) {
	t.Run("returns plans naming the trainer as co-owner", func(t *testing.T) {
		f := newFixture(t)
		trainerID := f.seedTrainer(t)

		coached := f.seedPlan(t, domain.PlanStatusActive, f.day(-5), f.day(30))
		coached.TrainerID = &trainerID
		require.NoError(t, f.plans.Update(f.ctx, coached))
		f.seedPlan(t, domain.PlanStatusDraft, f.day(40), f.day(60)) // no trainer

		list, err := f.planSvc.ListCoachedPlans(f.ctx, trainerID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, coached.ID, list[0].Plan.ID)
		assert.Equal(t, domain.PlanStatusActive, list[0].EffectiveStatus)
	})

	t.Run("client accounts are rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.planSvc.ListCoachedPlans(f.ctx, f.ownerID)
		assert.ErrorIs(t, err, ErrPlanAccessDenied)
	})

	t.Run("unknown callers are rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.planSvc.ListCoachedPlans(f.ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrPlanAccessDenied)
	})
}

func TestPreviewPhases(t *testing.T) {
	f := newFixture(t)
	preview, err := f.planSvc.PreviewPhases(strengthParams(f))
	require.NoError(t, err)

	require.Len(t, preview.Phases, 2)
	assert.Equal(t, domain.StyleLinear, preview.ResolvedStyle)
	assert.NotEmpty(t, preview.Explanation)
	require.Len(t, preview.WeekRanges, 2)
	assert.Equal(t, 1, preview.WeekRanges[0].Start)
	assert.Equal(t, 7, preview.WeekRanges[0].End)
	assert.Equal(t, 10, preview.WeekRanges[1].End)

	// Nothing persisted.
	plans, err := f.plans.GetByOwnerID(f.ctx, f.ownerID)
	require.NoError(t, err)
	assert.Empty(t, plans)
}
