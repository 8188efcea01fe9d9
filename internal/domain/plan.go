// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanStatus type for the plan lifecycle.
type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
)

// SplitType describes how weightlifting days are organized within a week.
type SplitType string

const (
	SplitFullBody     SplitType = "full_body"
	SplitUpperLower   SplitType = "upper_lower"
	SplitPushPullLegs SplitType = "push_pull_legs"
	SplitBodyPart     SplitType = "body_part"
)

// Plan is the root of the plan -> program -> workout -> instance -> set tree.
// OwnerID is the client the plan belongs to; TrainerID is an optional co-owner.
type Plan struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID  `bson:"ownerId" json:"ownerId"`
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	Name      string              `bson:"name" json:"name"`
	Goal      Goal                `bson:"goal" json:"goal"`
	Status    PlanStatus          `bson:"status" json:"status"`

	// Schedule parameters.
	StartDate          time.Time `bson:"startDate" json:"startDate"`
	EndDate            time.Time `bson:"endDate" json:"endDate"`
	WeightliftingDays  int       `bson:"weightliftingDays" json:"weightliftingDays"`
	CardioDays         int       `bson:"cardioDays" json:"cardioDays"`
	Split              SplitType `bson:"split" json:"split"`
	PreferredDays      []int     `bson:"preferredDays,omitempty" json:"preferredDays,omitempty"` // time.Weekday values, 0 (Sun) - 6 (Sat)

	// Training constraints.
	EmphasizedMuscleGroups []string `bson:"emphasizedMuscleGroups,omitempty" json:"emphasizedMuscleGroups,omitempty"`
	ExcludedMuscleGroups   []string `bson:"excludedMuscleGroups,omitempty" json:"excludedMuscleGroups,omitempty"`
	GoalWeight             *float64 `bson:"goalWeight,omitempty" json:"goalWeight,omitempty"`
	ExperienceOverride     string   `bson:"experienceOverride,omitempty" json:"experienceOverride,omitempty"`

	// SingleWorkout plans are exempt from overlap checks.
	SingleWorkout bool `bson:"singleWorkout" json:"singleWorkout"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EffectiveStatus derives the read-time status from the stored status, the
// plan's dates and the current time. The stored field is never written back
// from here; every query path must call this instead of reading Status raw.
//
// Rules:
//   - manual completed is authoritative, regardless of dates
//   - draft whose end day has fully passed resolves to completed (never
//     activated in time)
//   - active whose end day has fully passed resolves to completed
//   - active before the start date stays active (manual activation is honored)
//
// A plan remains current through the whole of its end date; expiry happens
// at the first midnight after it. A plan whose start and end fall on today
// is therefore still draft (or active) all day.
func (p *Plan) EffectiveStatus(now time.Time) PlanStatus {
	switch p.Status {
	case PlanStatusCompleted:
		return PlanStatusCompleted
	case PlanStatusDraft:
		if p.expired(now) {
			return PlanStatusCompleted
		}
		return PlanStatusDraft
	case PlanStatusActive:
		if p.expired(now) {
			return PlanStatusCompleted
		}
		return PlanStatusActive
	default:
		return p.Status
	}
}

// expired reports whether now is past the last midnight of the end date's
// calendar day.
func (p *Plan) expired(now time.Time) bool {
	end := time.Date(p.EndDate.Year(), p.EndDate.Month(), p.EndDate.Day(), 0, 0, 0, 0, p.EndDate.Location())
	return !now.Before(end.AddDate(0, 0, 1))
}

// Overlaps reports whether the two plans' date ranges intersect inclusively.
// Single-workout plans never overlap with anything.
func (p *Plan) Overlaps(other *Plan) bool {
	if p.SingleWorkout || other.SingleWorkout {
		return false
	}
	return !(p.EndDate.Before(other.StartDate) || p.StartDate.After(other.EndDate))
}
