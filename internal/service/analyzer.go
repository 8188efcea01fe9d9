package service

import (
	"context"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RemedialAction is a suggested fix for a plan that has drifted off its
// schedule, ordered most-recommended first in a diagnosis.
type RemedialAction string

const (
	ActionContinueFromHere  RemedialAction = "continue_from_here"
	ActionMarkMissedSkipped RemedialAction = "mark_missed_skipped"
	ActionReschedule        RemedialAction = "reschedule"
	ActionCreateNewPlan     RemedialAction = "create_new_plan"
)

// ScheduleDiagnosis describes how far a plan's execution has drifted
// from its schedule and what to do about it.
type ScheduleDiagnosis struct {
	TotalWorkouts    int              `json:"totalWorkouts"`
	ExpectedByNow    int              `json:"expectedByNow"`
	CompletedCount   int              `json:"completedCount"`
	SkippedCount     int              `json:"skippedCount"`
	MissedCount      int              `json:"missedCount"`
	DaysBehind       int              `json:"daysBehind"`
	IsBehindSchedule bool             `json:"isBehindSchedule"`
	SuggestedActions []RemedialAction `json:"suggestedActions"`
}

// ScheduleAnalyzer diagnoses schedule drift for a plan. It only reads;
// remediation is carried out by the cascade operations.
type ScheduleAnalyzer struct {
	workouts repository.WorkoutRepository
	now      func() time.Time
}

func NewScheduleAnalyzer(workouts repository.WorkoutRepository) *ScheduleAnalyzer {
	return &ScheduleAnalyzer{
		workouts: workouts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Analyze loads the plan's workouts and diagnoses its schedule drift.
func (a *ScheduleAnalyzer) Analyze(ctx context.Context, planID primitive.ObjectID) (*ScheduleDiagnosis, error) {
	workouts, err := a.workouts.GetByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	return DiagnoseSchedule(workouts, a.now()), nil
}

// DiagnoseSchedule computes schedule drift from a plan's workouts.
// Missed work is what the calendar expected by now minus what was
// resolved either way; a skipped workout is resolved, not missed.
func DiagnoseSchedule(workouts []domain.Workout, now time.Time) *ScheduleDiagnosis {
	d := &ScheduleDiagnosis{TotalWorkouts: len(workouts)}

	var earliestOverdue time.Time
	for i := range workouts {
		w := &workouts[i]
		switch w.Status {
		case domain.WorkoutStatusCompleted:
			d.CompletedCount++
		case domain.WorkoutStatusSkipped:
			d.SkippedCount++
		}
		if !w.ScheduledDate.After(now) {
			d.ExpectedByNow++
			incomplete := w.Status == domain.WorkoutStatusScheduled || w.Status == domain.WorkoutStatusInProgress
			if incomplete && (earliestOverdue.IsZero() || w.ScheduledDate.Before(earliestOverdue)) {
				earliestOverdue = w.ScheduledDate
			}
		}
	}

	d.MissedCount = d.ExpectedByNow - (d.CompletedCount + d.SkippedCount)
	if d.MissedCount < 0 {
		d.MissedCount = 0
	}
	if !earliestOverdue.IsZero() {
		d.DaysBehind = int(now.Sub(earliestOverdue).Hours() / 24)
	}

	d.SuggestedActions = suggestActions(d.MissedCount, d.DaysBehind)
	d.IsBehindSchedule = d.MissedCount >= 3 || d.DaysBehind >= 7
	return d
}

// suggestActions ranks remedies by how badly the schedule has slipped.
// A long gap pushes toward rebuilding; a short one toward tidying up.
func suggestActions(missed, daysBehind int) []RemedialAction {
	switch {
	case missed >= 10 || daysBehind >= 21:
		return []RemedialAction{ActionCreateNewPlan, ActionReschedule}
	case missed >= 5 || daysBehind >= 14:
		return []RemedialAction{ActionReschedule, ActionCreateNewPlan}
	case missed >= 3 || daysBehind >= 7:
		return []RemedialAction{ActionContinueFromHere, ActionMarkMissedSkipped, ActionReschedule}
	case missed >= 1:
		return []RemedialAction{ActionContinueFromHere, ActionMarkMissedSkipped}
	default:
		return nil
	}
}
