package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleTrainer Role = "trainer"
	RoleClient  Role = "client"
)

// User represents a user in the system (either a Trainer or a Client).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Trainer-specific ---
	// Stores ObjectIDs of Clients managed by this Trainer.
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	// The Trainer co-owning this client's plans, if any.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`

	// Personal library. Plan activation adds every exercise/protocol the
	// plan references that is not already here (additive, deduped).
	ExerciseLibraryIDs []primitive.ObjectID `bson:"exerciseLibraryIds,omitempty" json:"exerciseLibraryIds,omitempty"`
	ProtocolLibraryIDs []primitive.ObjectID `bson:"protocolLibraryIds,omitempty" json:"protocolLibraryIds,omitempty"`
}

// IsTrainer reports whether this account may be named as a plan co-owner.
func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}
