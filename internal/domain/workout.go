package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus type for the workout lifecycle.
type WorkoutStatus string

const (
	WorkoutStatusScheduled  WorkoutStatus = "scheduled"
	WorkoutStatusInProgress WorkoutStatus = "in_progress"
	WorkoutStatusCompleted  WorkoutStatus = "completed"
	WorkoutStatusSkipped    WorkoutStatus = "skipped"
)

// Workout represents a single session within a Program. Exercise content
// hangs off it as ExerciseInstances.
type Workout struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID     primitive.ObjectID `bson:"programId" json:"programId"`
	PlanID        primitive.ObjectID `bson:"planId" json:"planId"`   // Denormalized for plan-wide queries
	OwnerID       primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Denormalized
	Name          string             `bson:"name" json:"name"`       // e.g., "Week 2 Day 1: Upper Body"
	Status        WorkoutStatus      `bson:"status" json:"status"`
	ScheduledDate time.Time          `bson:"scheduledDate" json:"scheduledDate"`
	Sequence      int                `bson:"sequence" json:"sequence"`
	IsCardio      bool               `bson:"isCardio" json:"isCardio"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsPreserved reports whether the workout carries logged effort and must
// survive a reschedule untouched.
func (w *Workout) IsPreserved() bool {
	return w.Status == WorkoutStatusCompleted || w.Status == WorkoutStatusInProgress
}
