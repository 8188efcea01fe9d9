// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseInstance is one exercise slot inside a Workout. ExerciseID and
// ProtocolID are foreign-key style references into the exercise/protocol
// catalogs; the instance owns nothing but its sets.
type ExerciseInstance struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	WorkoutID  primitive.ObjectID  `bson:"workoutId" json:"workoutId"`
	ExerciseID primitive.ObjectID  `bson:"exerciseId" json:"exerciseId"`
	ProtocolID *primitive.ObjectID `bson:"protocolId,omitempty" json:"protocolId,omitempty"`
	Sequence   int                 `bson:"sequence" json:"sequence"`
	Notes      string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseSet is the leaf of the plan tree: one prescribed (and optionally
// logged) set under an ExerciseInstance.
type ExerciseSet struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InstanceID   primitive.ObjectID `bson:"instanceId" json:"instanceId"`
	Sequence     int                `bson:"sequence" json:"sequence"`
	TargetReps   int                `bson:"targetReps" json:"targetReps"`
	TargetWeight float64            `bson:"targetWeight,omitempty" json:"targetWeight,omitempty"`
	Reps         int                `bson:"reps,omitempty" json:"reps,omitempty"`     // Logged
	Weight       float64            `bson:"weight,omitempty" json:"weight,omitempty"` // Logged
	Completed    bool               `bson:"completed" json:"completed"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
