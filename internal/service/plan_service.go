package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/periodization"
	"alcyxob/planforge/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidPlanParams = errors.New("invalid plan parameters")

// CreatePlanParams carries everything needed to build a plan tree.
type CreatePlanParams struct {
	Name                 string
	Goal                 domain.Goal
	TotalWeeks           int
	Style                domain.PeriodizationStyle
	IncludeDeloads       bool
	DeloadFrequencyWeeks int
	CustomIntensityStart *float64
	CustomIntensityEnd   *float64
	StartDate            time.Time
	WeightliftingDays    int
	CardioDays           int
	Split                domain.SplitType
	PreferredDays        []int
	DayAssignments       map[int]string
	EmphasizedGroups     []string
	ExcludedGroups       []string
	GoalWeight           *float64
	ExperienceOverride   string
	TrainerID            *primitive.ObjectID
	SingleWorkout        bool
}

// PlanWithStatus pairs a stored plan with the status derived from its
// dates at read time.
type PlanWithStatus struct {
	Plan            *domain.Plan      `json:"plan"`
	EffectiveStatus domain.PlanStatus `json:"effectiveStatus"`
}

// PhasePreview is the dry-run output of the periodization engine for a
// set of plan parameters. Nothing is persisted.
type PhasePreview struct {
	Phases        []domain.Phase            `json:"phases"`
	WeekRanges    []periodization.WeekRange `json:"weekRanges"`
	ResolvedStyle domain.PeriodizationStyle `json:"resolvedStyle"`
	Explanation   string                    `json:"explanation"`
}

// PlanService builds and reads plan trees. Status mutations live in
// LifecycleService; structural rewrites in CascadeService.
type PlanService struct {
	plans     repository.PlanRepository
	programs  repository.ProgramRepository
	workouts  repository.WorkoutRepository
	users     repository.UserRepository
	generator ScheduleGenerator
	populator ExercisePopulator
	protocols ProtocolAssigner
	cascade   *CascadeService
	mirror    *SnapshotMirror
	now       func() time.Time
}

func NewPlanService(
	plans repository.PlanRepository,
	programs repository.ProgramRepository,
	workouts repository.WorkoutRepository,
	users repository.UserRepository,
	generator ScheduleGenerator,
	populator ExercisePopulator,
	protocols ProtocolAssigner,
	cascade *CascadeService,
	mirror *SnapshotMirror,
) *PlanService {
	return &PlanService{
		plans:     plans,
		programs:  programs,
		workouts:  workouts,
		users:     users,
		generator: generator,
		populator: populator,
		protocols: protocols,
		cascade:   cascade,
		mirror:    mirror,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreatePlan runs the full build pipeline: engine phases, program
// windows, workout skeleton, exercise population, protocol assignment.
// The plan is persisted in draft status.
func (s *PlanService) CreatePlan(ctx context.Context, ownerID primitive.ObjectID, params CreatePlanParams) (*domain.Plan, error) {
	if params.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidPlanParams)
	}
	if params.WeightliftingDays < 1 || params.WeightliftingDays > 7 {
		return nil, fmt.Errorf("%w: weightlifting days must be between 1 and 7", ErrInvalidPlanParams)
	}
	if params.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidPlanParams)
	}
	if params.TrainerID != nil {
		trainer, err := s.users.GetByID(ctx, *params.TrainerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: trainer not found", ErrInvalidPlanParams)
			}
			return nil, err
		}
		if !trainer.IsTrainer() {
			return nil, fmt.Errorf("%w: co-owner must be a trainer account", ErrInvalidPlanParams)
		}
	}

	phases, err := periodization.CalculatePhases(periodization.Params{
		Goal:                 params.Goal,
		TotalWeeks:           params.TotalWeeks,
		Style:                params.Style,
		IncludeDeloads:       params.IncludeDeloads,
		DeloadFrequencyWeeks: params.DeloadFrequencyWeeks,
		CustomIntensityStart: params.CustomIntensityStart,
		CustomIntensityEnd:   params.CustomIntensityEnd,
	})
	if err != nil {
		return nil, err
	}

	startDate := startOfDay(params.StartDate)
	endDate := startDate.AddDate(0, 0, params.TotalWeeks*7-1)
	if params.SingleWorkout {
		endDate = startDate
	}

	plan := &domain.Plan{
		OwnerID:                ownerID,
		TrainerID:              params.TrainerID,
		Name:                   params.Name,
		Goal:                   params.Goal,
		Status:                 domain.PlanStatusDraft,
		StartDate:              startDate,
		EndDate:                endDate,
		WeightliftingDays:      params.WeightliftingDays,
		CardioDays:             params.CardioDays,
		Split:                  params.Split,
		PreferredDays:          params.PreferredDays,
		EmphasizedMuscleGroups: params.EmphasizedGroups,
		ExcludedMuscleGroups:   params.ExcludedGroups,
		GoalWeight:             params.GoalWeight,
		ExperienceOverride:     params.ExperienceOverride,
		SingleWorkout:          params.SingleWorkout,
	}
	planID, err := s.plans.Create(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("%w: create plan: %v", ErrPersistence, err)
	}
	plan.ID = planID

	if err := s.buildPrograms(ctx, plan, phases, params.DayAssignments); err != nil {
		return nil, err
	}

	s.mirror.MirrorAsync(planID, "create")
	return plan, nil
}

// buildPrograms materializes one program per phase with consecutive
// date windows, then generates and populates each program's workouts.
func (s *PlanService) buildPrograms(ctx context.Context, plan *domain.Plan, phases []domain.Phase, dayAssignments map[int]string) error {
	cursor := plan.StartDate
	for i, phase := range phases {
		progStart := cursor
		progEnd := progStart.AddDate(0, 0, phase.Weeks*7-1)
		cursor = progEnd.AddDate(0, 0, 1)

		program := &domain.Program{
			PlanID:      plan.ID,
			OwnerID:     plan.OwnerID,
			Name:        fmt.Sprintf("Phase %d: %s", i+1, periodization.PhaseTitle(phase.Focus)),
			Sequence:    i + 1,
			Focus:       phase.Focus,
			Weeks:       phase.Weeks,
			Intensity:   phase.Intensity,
			Progression: phase.Progression,
			Rationale:   phase.Rationale,
			StartDate:   progStart,
			EndDate:     progEnd,
		}
		programID, err := s.programs.Create(ctx, program)
		if err != nil {
			return fmt.Errorf("%w: create program %d: %v", ErrPersistence, i+1, err)
		}
		program.ID = programID

		generated, err := s.generator.GenerateWorkouts(ctx, GenerateRequest{
			ProgramID:      programID,
			PlanID:         plan.ID,
			OwnerID:        plan.OwnerID,
			StartDate:      progStart,
			EndDate:        progEnd,
			DaysPerWeek:    plan.WeightliftingDays,
			CardioDays:     plan.CardioDays,
			Split:          plan.Split,
			PreferredDays:  plan.PreferredDays,
			DayAssignments: dayAssignments,
		})
		if err != nil {
			return fmt.Errorf("generate workouts for program %d: %w", i+1, err)
		}
		for j := range generated {
			if err := s.cascade.persistGeneratedWorkout(ctx, plan, program, &generated[j]); err != nil {
				return err
			}
			if plan.SingleWorkout {
				return s.clampSingleWorkoutWindow(ctx, plan, program, generated[j].ScheduledDate)
			}
		}
		if plan.SingleWorkout {
			break
		}
	}
	return nil
}

// clampSingleWorkoutWindow shrinks a single-workout plan and its program
// to the day the one workout actually landed on. The generator walks the
// program window for a matching weekday, so that day can fall after the
// nominal start.
func (s *PlanService) clampSingleWorkoutWindow(ctx context.Context, plan *domain.Plan, program *domain.Program, scheduled time.Time) error {
	day := startOfDay(scheduled)
	if day.After(plan.EndDate) {
		plan.EndDate = day
		if err := s.plans.Update(ctx, plan); err != nil {
			return fmt.Errorf("%w: clamp plan window: %v", ErrPersistence, err)
		}
	}
	program.EndDate = day
	if err := s.programs.Update(ctx, program); err != nil {
		return fmt.Errorf("%w: clamp program window: %v", ErrPersistence, err)
	}
	return nil
}

// GetPlan returns an owned plan with its derived status.
func (s *PlanService) GetPlan(ctx context.Context, planID, ownerID primitive.ObjectID) (*PlanWithStatus, error) {
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
	return &PlanWithStatus{Plan: plan, EffectiveStatus: plan.EffectiveStatus(s.now())}, nil
}

// ListPlans returns all of the owner's plans, newest first, each with
// its derived status.
func (s *PlanService) ListPlans(ctx context.Context, ownerID primitive.ObjectID) ([]PlanWithStatus, error) {
	plans, err := s.plans.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PlanWithStatus, 0, len(plans))
	for i := range plans {
		out = append(out, PlanWithStatus{Plan: &plans[i], EffectiveStatus: plans[i].EffectiveStatus(now)})
	}
	return out, nil
}

// ListCoachedPlans returns every plan naming the caller as trainer
// co-owner, newest first. Only trainer accounts may call this.
func (s *PlanService) ListCoachedPlans(ctx context.Context, trainerID primitive.ObjectID) ([]PlanWithStatus, error) {
	trainer, err := s.users.GetByID(ctx, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanAccessDenied
		}
		return nil, err
	}
	if !trainer.IsTrainer() {
		return nil, ErrPlanAccessDenied
	}

	plans, err := s.plans.GetByTrainerID(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]PlanWithStatus, 0, len(plans))
	for i := range plans {
		out = append(out, PlanWithStatus{Plan: &plans[i], EffectiveStatus: plans[i].EffectiveStatus(now)})
	}
	return out, nil
}

// GetPrograms returns an owned plan's programs in sequence order.
func (s *PlanService) GetPrograms(ctx context.Context, planID, ownerID primitive.ObjectID) ([]domain.Program, error) {
	if _, err := s.GetPlan(ctx, planID, ownerID); err != nil {
		return nil, err
	}
	return s.programs.GetByPlanID(ctx, planID)
}

// GetWorkouts returns an owned plan's workouts in schedule order.
func (s *PlanService) GetWorkouts(ctx context.Context, planID, ownerID primitive.ObjectID) ([]domain.Workout, error) {
	if _, err := s.GetPlan(ctx, planID, ownerID); err != nil {
		return nil, err
	}
	return s.workouts.GetByPlanID(ctx, planID)
}

// PreviewPhases runs the periodization engine without persisting
// anything, so clients can show the phase layout before creation.
func (s *PlanService) PreviewPhases(params CreatePlanParams) (*PhasePreview, error) {
	phases, err := periodization.CalculatePhases(periodization.Params{
		Goal:                 params.Goal,
		TotalWeeks:           params.TotalWeeks,
		Style:                params.Style,
		IncludeDeloads:       params.IncludeDeloads,
		DeloadFrequencyWeeks: params.DeloadFrequencyWeeks,
		CustomIntensityStart: params.CustomIntensityStart,
		CustomIntensityEnd:   params.CustomIntensityEnd,
	})
	if err != nil {
		return nil, err
	}
	return &PhasePreview{
		Phases:        phases,
		WeekRanges:    periodization.WeekRanges(phases),
		ResolvedStyle: periodization.ResolveStyle(params.Goal, params.Style, params.TotalWeeks),
		Explanation:   periodization.Explain(phases),
	}, nil
}
