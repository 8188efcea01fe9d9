package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound      = errors.New("plan not found")
	ErrPlanAccessDenied  = errors.New("access denied to this plan")
	ErrAlreadyActive     = errors.New("plan is already active")
	ErrInvalidTransition = errors.New("invalid plan status transition")
	ErrCannotActivate    = errors.New("plan has no executable content to activate")
	ErrOverlapDetected   = errors.New("plan dates overlap an active plan")
	ErrNotActive         = errors.New("plan is not active")
	ErrPersistence       = errors.New("failed to persist plan changes")
)

// OverlapError identifies the active plan whose window collides with the
// one being activated. It unwraps to ErrOverlapDetected.
type OverlapError struct {
	ConflictingPlanID primitive.ObjectID
	ConflictingName   string
	StartDate         time.Time
	EndDate           time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("plan dates overlap active plan %q (%s to %s)",
		e.ConflictingName,
		e.StartDate.Format("2006-01-02"),
		e.EndDate.Format("2006-01-02"))
}

func (e *OverlapError) Unwrap() error { return ErrOverlapDetected }

// ActivationResult reports what an activation did, including any plan
// abandoned on the caller's behalf.
type ActivationResult struct {
	Plan              *domain.Plan
	DeactivatedPlanID *primitive.ObjectID
	CancelledWorkouts int
}

// LifecycleService owns the plan status state machine. Stored status only
// moves draft -> active -> completed; reads derive an effective status
// from dates without writing it back.
type LifecycleService struct {
	plans     repository.PlanRepository
	programs  repository.ProgramRepository
	workouts  repository.WorkoutRepository
	instances repository.InstanceRepository
	users     repository.UserRepository
	cascade   *CascadeService
	locks     *OwnerLocks
	mirror    *SnapshotMirror
	now       func() time.Time
}

func NewLifecycleService(
	plans repository.PlanRepository,
	programs repository.ProgramRepository,
	workouts repository.WorkoutRepository,
	instances repository.InstanceRepository,
	users repository.UserRepository,
	cascade *CascadeService,
	locks *OwnerLocks,
	mirror *SnapshotMirror,
) *LifecycleService {
	return &LifecycleService{
		plans:     plans,
		programs:  programs,
		workouts:  workouts,
		instances: instances,
		users:     users,
		cascade:   cascade,
		locks:     locks,
		mirror:    mirror,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Activate transitions a draft plan to active. It fails with an
// OverlapError if another of the owner's plans is active over an
// intersecting date window.
func (s *LifecycleService) Activate(ctx context.Context, planID, ownerID primitive.ObjectID) (*domain.Plan, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	plan, err := s.activateLocked(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}
	s.mirror.MirrorAsync(planID, "activate")
	return plan, nil
}

// ActivateWithAutoDeactivate behaves like Activate, but when exactly the
// overlap check would fail it first abandons the conflicting active plan
// and reports how many of its future workouts were cancelled.
func (s *LifecycleService) ActivateWithAutoDeactivate(ctx context.Context, planID, ownerID primitive.ObjectID) (*ActivationResult, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	result := &ActivationResult{}
	plan, err := s.activateLocked(ctx, planID, ownerID)
	var overlap *OverlapError
	if errors.As(err, &overlap) {
		conflicting, getErr := s.plans.GetByID(ctx, overlap.ConflictingPlanID)
		if getErr != nil {
			return nil, fmt.Errorf("load overlapping plan: %w", getErr)
		}
		cancelled, abandonErr := s.cascade.abandonLocked(ctx, conflicting)
		if abandonErr != nil {
			return nil, abandonErr
		}
		result.DeactivatedPlanID = &conflicting.ID
		result.CancelledWorkouts = cancelled

		// Retry once; the conflicting plan is completed now, so a second
		// overlap means another active plan also collides.
		plan, err = s.activateLocked(ctx, planID, ownerID)
	}
	if err != nil {
		return nil, err
	}

	result.Plan = plan
	if result.DeactivatedPlanID != nil {
		s.mirror.MirrorAsync(*result.DeactivatedPlanID, "auto-deactivate")
	}
	s.mirror.MirrorAsync(planID, "activate")
	return result, nil
}

func (s *LifecycleService) activateLocked(ctx context.Context, planID, ownerID primitive.ObjectID) (*domain.Plan, error) {
	plan, err := s.getOwnedPlan(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch plan.EffectiveStatus(now) {
	case domain.PlanStatusActive:
		return nil, ErrAlreadyActive
	case domain.PlanStatusDraft:
		// proceed
	default:
		return nil, ErrInvalidTransition
	}

	programs, err := s.programs.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(programs) == 0 {
		return nil, ErrCannotActivate
	}
	workouts, err := s.workouts.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if len(workouts) == 0 {
		return nil, ErrCannotActivate
	}

	if !plan.SingleWorkout {
		overlapping, err := s.findOverlapping(ctx, plan, now)
		if err != nil {
			return nil, err
		}
		if len(overlapping) > 0 {
			first := overlapping[0]
			return nil, &OverlapError{
				ConflictingPlanID: first.ID,
				ConflictingName:   first.Name,
				StartDate:         first.StartDate,
				EndDate:           first.EndDate,
			}
		}
	}

	plan.Status = domain.PlanStatusActive
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.absorbIntoLibrary(ctx, plan, workouts)
	return plan, nil
}

// Deactivate moves an active plan to the given terminal status. Only
// active -> completed is legal.
func (s *LifecycleService) Deactivate(ctx context.Context, planID, ownerID primitive.ObjectID, target domain.PlanStatus) (*domain.Plan, error) {
	unlock := s.locks.Lock(ownerID)
	defer unlock()

	plan, err := s.getOwnedPlan(ctx, planID, ownerID)
	if err != nil {
		return nil, err
	}
	if target != domain.PlanStatusCompleted {
		return nil, ErrInvalidTransition
	}
	if plan.EffectiveStatus(s.now()) != domain.PlanStatusActive {
		return nil, ErrInvalidTransition
	}

	plan.Status = domain.PlanStatusCompleted
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.mirror.MirrorAsync(planID, "deactivate")
	return plan, nil
}

// FindOverlappingActivePlans returns the owner's other plans that are
// effectively active over a window intersecting the given plan's.
func (s *LifecycleService) FindOverlappingActivePlans(ctx context.Context, plan *domain.Plan) ([]domain.Plan, error) {
	return s.findOverlapping(ctx, plan, s.now())
}

func (s *LifecycleService) findOverlapping(ctx context.Context, plan *domain.Plan, now time.Time) ([]domain.Plan, error) {
	all, err := s.plans.GetByOwnerID(ctx, plan.OwnerID)
	if err != nil {
		return nil, err
	}
	var overlapping []domain.Plan
	for i := range all {
		other := &all[i]
		if other.ID == plan.ID {
			continue
		}
		if other.EffectiveStatus(now) != domain.PlanStatusActive {
			continue
		}
		if plan.Overlaps(other) {
			overlapping = append(overlapping, *other)
		}
	}
	return overlapping, nil
}

// absorbIntoLibrary adds every exercise and protocol referenced by the
// plan to the owner's personal library. Library writes are best-effort;
// a failure never blocks activation.
func (s *LifecycleService) absorbIntoLibrary(ctx context.Context, plan *domain.Plan, workouts []domain.Workout) {
	seenExercises := make(map[primitive.ObjectID]struct{})
	seenProtocols := make(map[primitive.ObjectID]struct{})
	var exerciseIDs, protocolIDs []primitive.ObjectID

	for _, w := range workouts {
		instances, err := s.instances.GetByWorkoutID(ctx, w.ID)
		if err != nil {
			log.Printf("WARN: library sync skipped workout %s for plan %s: %v", w.ID.Hex(), plan.ID.Hex(), err)
			continue
		}
		for _, inst := range instances {
			if _, ok := seenExercises[inst.ExerciseID]; !ok {
				seenExercises[inst.ExerciseID] = struct{}{}
				exerciseIDs = append(exerciseIDs, inst.ExerciseID)
			}
			if inst.ProtocolID != nil {
				if _, ok := seenProtocols[*inst.ProtocolID]; !ok {
					seenProtocols[*inst.ProtocolID] = struct{}{}
					protocolIDs = append(protocolIDs, *inst.ProtocolID)
				}
			}
		}
	}

	if len(exerciseIDs) > 0 {
		if err := s.users.AddExercisesToLibrary(ctx, plan.OwnerID, exerciseIDs); err != nil {
			log.Printf("WARN: failed to add %d exercises to library for user %s: %v", len(exerciseIDs), plan.OwnerID.Hex(), err)
		}
	}
	if len(protocolIDs) > 0 {
		if err := s.users.AddProtocolsToLibrary(ctx, plan.OwnerID, protocolIDs); err != nil {
			log.Printf("WARN: failed to add %d protocols to library for user %s: %v", len(protocolIDs), plan.OwnerID.Hex(), err)
		}
	}
}

func (s *LifecycleService) getOwnedPlan(ctx context.Context, planID, ownerID primitive.ObjectID) (*domain.Plan, error) {
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
