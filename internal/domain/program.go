// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a persisted Phase. It owns an ordered list of Workouts and has
// its own date window derived from cumulative phase week offsets inside the
// parent plan.
type Program struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Denormalized for query/auth
	Name        string             `bson:"name" json:"name"`
	Sequence    int                `bson:"sequence" json:"sequence"`
	Focus       PhaseFocus         `bson:"focus" json:"focus"`
	Weeks       int                `bson:"weeks" json:"weeks"`
	Intensity   IntensityRange     `bson:"intensity" json:"intensity"`
	Progression ProgressionType    `bson:"progression" json:"progression"`
	Rationale   string             `bson:"rationale,omitempty" json:"rationale,omitempty"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
