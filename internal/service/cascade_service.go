package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrCannotDeleteActive = errors.New("cannot delete an active plan; deactivate it first")

// DeleteSummary counts every record a plan delete touches, bottom-up.
type DeleteSummary struct {
	Programs  int `json:"programs"`
	Workouts  int `json:"workouts"`
	Instances int `json:"instances"`
	Sets      int `json:"sets"`
}

// ScheduleParams are the scheduling knobs a reschedule may change.
// Nil fields keep the plan's current value.
type ScheduleParams struct {
	WeightliftingDays *int
	CardioDays        *int
	Split             *domain.SplitType
	PreferredDays     []int
	DayAssignments    map[int]string
}

// RescheduleResult reports what a reschedule preserved and rebuilt.
type RescheduleResult struct {
	PreservedWorkouts   int `json:"preservedWorkouts"`
	DeletedWorkouts     int `json:"deletedWorkouts"`
	RegeneratedWorkouts int `json:"regeneratedWorkouts"`
	SkippedPrograms     int `json:"skippedPrograms"`
}

// CascadeService performs the multi-collection rewrites that follow a
// plan mutation: full delete, schedule regeneration, and abandonment.
// All writes are sequential without a transaction; per-owner locking
// keeps concurrent cascades from interleaving.
type CascadeService struct {
	plans     repository.PlanRepository
	programs  repository.ProgramRepository
	workouts  repository.WorkoutRepository
	instances repository.InstanceRepository
	sets      repository.SetRepository
	generator ScheduleGenerator
	populator ExercisePopulator
	protocols ProtocolAssigner
	locks     *OwnerLocks
	mirror    *SnapshotMirror
	now       func() time.Time
}

func NewCascadeService(
	plans repository.PlanRepository,
	programs repository.ProgramRepository,
	workouts repository.WorkoutRepository,
	instances repository.InstanceRepository,
	sets repository.SetRepository,
	generator ScheduleGenerator,
	populator ExercisePopulator,
	protocols ProtocolAssigner,
	locks *OwnerLocks,
	mirror *SnapshotMirror,
) *CascadeService {
	return &CascadeService{
		plans:     plans,
		programs:  programs,
		workouts:  workouts,
		instances: instances,
		sets:      sets,
		generator: generator,
		populator: populator,
		protocols: protocols,
		locks:     locks,
		mirror:    mirror,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PreviewDelete counts what Delete would remove without touching
// anything.
func (s *CascadeService) PreviewDelete(ctx context.Context, planID, ownerID primitive.ObjectID) (*DeleteSummary, error) {
	plan, err := s.getOwnedPlan(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}

	summary := &DeleteSummary{}
	programs, err := s.programs.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	summary.Programs = len(programs)

	workouts, err := s.workouts.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	summary.Workouts = len(workouts)

	for _, w := range workouts {
		instances, err := s.instances.GetByWorkoutID(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		summary.Instances += len(instances)
		for _, inst := range instances {
			sets, err := s.sets.GetByInstanceID(ctx, inst.ID)
			if err != nil {
				return nil, err
			}
			summary.Sets += len(sets)
		}
	}
	return summary, nil
}

// Delete removes a plan and everything under it, leaf records first so a
// partial failure never strands children without parents. Active plans
// are refused.
func (s *CascadeService) Delete(ctx context.Context, planID, ownerID primitive.ObjectID) (*DeleteSummary, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	plan, err := s.getOwnedPlan(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}
	if plan.EffectiveStatus(s.now()) == domain.PlanStatusActive {
		return nil, ErrCannotDeleteActive
	}

	summary := &DeleteSummary{}
	workouts, err := s.workouts.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		deleted, err := s.deleteWorkoutTree(ctx, &workouts[i])
		if err != nil {
			return nil, err
		}
		summary.Workouts++
		summary.Instances += deleted.Instances
		summary.Sets += deleted.Sets
	}

	programs, err := s.programs.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		if err := s.programs.Delete(ctx, p.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: delete program %s: %v", ErrPersistence, p.ID.Hex(), err)
		}
		summary.Programs++
	}

	if err := s.plans.Delete(ctx, plan.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: delete plan: %v", ErrPersistence, err)
	}

	s.mirror.RemoveAsync(plan.ID)
	return summary, nil
}

// deleteWorkoutTree removes one workout with its instances and sets,
// deepest records first.
func (s *CascadeService) deleteWorkoutTree(ctx context.Context, workout *domain.Workout) (*DeleteSummary, error) {
	summary := &DeleteSummary{}
	instances, err := s.instances.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return nil, err
	}
	for _, inst := range instances {
		sets, err := s.sets.GetByInstanceID(ctx, inst.ID)
		if err != nil {
			return nil, err
		}
		for _, set := range sets {
			if err := s.sets.Delete(ctx, set.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: delete set %s: %v", ErrPersistence, set.ID.Hex(), err)
			}
			summary.Sets++
		}
		if err := s.instances.Delete(ctx, inst.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: delete instance %s: %v", ErrPersistence, inst.ID.Hex(), err)
		}
		summary.Instances++
	}
	if err := s.workouts.Delete(ctx, workout.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: delete workout %s: %v", ErrPersistence, workout.ID.Hex(), err)
	}
	return summary, nil
}

// Reschedule rebuilds the remaining schedule of a plan under new
// scheduling parameters. Completed and in-progress workouts are kept
// untouched; scheduled and skipped ones are regenerated from today
// forward. Programs that ended entirely in the past are left alone.
func (s *CascadeService) Reschedule(ctx context.Context, planID, ownerID primitive.ObjectID, params ScheduleParams) (*RescheduleResult, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	plan, err := s.getOwnedPlan(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if plan.EffectiveStatus(now) == domain.PlanStatusCompleted {
		return nil, ErrInvalidTransition
	}

	applyScheduleParams(plan, params)
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	today := startOfDay(now)
	result := &RescheduleResult{}
	programs, err := s.programs.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	for i := range programs {
		program := &programs[i]
		if program.EndDate.Before(today) {
			result.SkippedPrograms++
			continue
		}
		if err := s.rescheduleProgram(ctx, plan, program, today, params.DayAssignments, result); err != nil {
			return nil, err
		}
	}

	s.mirror.MirrorAsync(plan.ID, "reschedule")
	return result, nil
}

func (s *CascadeService) rescheduleProgram(ctx context.Context, plan *domain.Plan, program *domain.Program, today time.Time, dayAssignments map[int]string, result *RescheduleResult) error {
	workouts, err := s.workouts.GetByProgramID(ctx, program.ID)
	if err != nil {
		return err
	}

	maxSequence := 0
	for i := range workouts {
		w := &workouts[i]
		if w.IsPreserved() {
			result.PreservedWorkouts++
			if w.Sequence > maxSequence {
				maxSequence = w.Sequence
			}
			continue
		}
		if _, err := s.deleteWorkoutTree(ctx, w); err != nil {
			return err
		}
		result.DeletedWorkouts++
	}

	regenStart := program.StartDate
	if today.After(regenStart) {
		regenStart = today
	}
	if regenStart.After(program.EndDate) {
		return nil
	}

	generated, err := s.generator.GenerateWorkouts(ctx, GenerateRequest{
		ProgramID:      program.ID,
		PlanID:         plan.ID,
		OwnerID:        plan.OwnerID,
		StartDate:      regenStart,
		EndDate:        program.EndDate,
		DaysPerWeek:    plan.WeightliftingDays,
		CardioDays:     plan.CardioDays,
		Split:          plan.Split,
		PreferredDays:  plan.PreferredDays,
		DayAssignments: dayAssignments,
	})
	if err != nil {
		return fmt.Errorf("generate workouts for program %s: %w", program.ID.Hex(), err)
	}

	for i := range generated {
		w := &generated[i]
		w.Sequence += maxSequence
		if err := s.persistGeneratedWorkout(ctx, plan, program, w); err != nil {
			return err
		}
		result.RegeneratedWorkouts++
	}
	return nil
}

// persistGeneratedWorkout stores one generated workout and runs the
// populate and protocol steps over it.
func (s *CascadeService) persistGeneratedWorkout(ctx context.Context, plan *domain.Plan, program *domain.Program, workout *domain.Workout) error {
	workoutID, err := s.workouts.Create(ctx, workout)
	if err != nil {
		return fmt.Errorf("%w: create workout: %v", ErrPersistence, err)
	}
	workout.ID = workoutID

	populated, err := s.populator.PopulateWorkout(ctx, plan, program, workout)
	if err != nil {
		return fmt.Errorf("populate workout %s: %w", workoutID.Hex(), err)
	}
	if err := s.protocols.AssignProtocols(ctx, plan, program, populated); err != nil {
		return fmt.Errorf("assign protocols for workout %s: %w", workoutID.Hex(), err)
	}

	for i := range populated {
		inst := &populated[i].Instance
		inst.WorkoutID = workoutID
		instanceID, err := s.instances.Create(ctx, inst)
		if err != nil {
			return fmt.Errorf("%w: create instance: %v", ErrPersistence, err)
		}
		for j := range populated[i].Sets {
			set := &populated[i].Sets[j]
			set.InstanceID = instanceID
			if _, err := s.sets.Create(ctx, set); err != nil {
				return fmt.Errorf("%w: create set: %v", ErrPersistence, err)
			}
		}
	}
	return nil
}

// Abandon completes an active plan early, marking its future scheduled
// workouts skipped. Returns the number of workouts cancelled.
func (s *CascadeService) Abandon(ctx context.Context, planID, ownerID primitive.ObjectID) (int, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	plan, err := s.getOwnedPlan(ctx, planID, ownerID)
	if err != nil {
		return 0, err
	}
	cancelled, err := s.abandonLocked(ctx, plan)
	if err != nil {
		return 0, err
	}
	s.mirror.MirrorAsync(plan.ID, "abandon")
	return cancelled, nil
}

// abandonLocked assumes the caller holds the owner lock.
func (s *CascadeService) abandonLocked(ctx context.Context, plan *domain.Plan) (int, error) {
	now := s.now()
	if plan.EffectiveStatus(now) != domain.PlanStatusActive {
		return 0, ErrNotActive
	}

	plan.Status = domain.PlanStatusCompleted
	if err := s.plans.Update(ctx, plan); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	workouts, err := s.workouts.GetByPlanID(ctx, plan.ID)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range workouts {
		w := &workouts[i]
		if w.Status != domain.WorkoutStatusScheduled || !w.ScheduledDate.After(now) {
			continue
		}
		w.Status = domain.WorkoutStatusSkipped
		if err := s.workouts.Update(ctx, w); err != nil {
			return cancelled, fmt.Errorf("%w: skip workout %s: %v", ErrPersistence, w.ID.Hex(), err)
		}
		cancelled++
	}
	return cancelled, nil
}

func (s *CascadeService) getOwnedPlan(ctx context.Context, planID, ownerID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

func applyScheduleParams(plan *domain.Plan, params ScheduleParams) {
	if params.WeightliftingDays != nil {
		plan.WeightliftingDays = *params.WeightliftingDays
	}
	if params.CardioDays != nil {
		plan.CardioDays = *params.CardioDays
	}
	if params.Split != nil {
		plan.Split = *params.Split
	}
	if params.PreferredDays != nil {
		plan.PreferredDays = params.PreferredDays
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
