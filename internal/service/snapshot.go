package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"
	"alcyxob/planforge/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const snapshotTimeout = 30 * time.Second

// planSnapshot is the JSON document mirrored to object storage after a
// lifecycle or cascade mutation. It captures the full plan tree so a
// lost database can be reconciled from the archive.
type planSnapshot struct {
	SnapshotID string                    `json:"snapshotId"`
	TakenAt    time.Time                 `json:"takenAt"`
	Reason     string                    `json:"reason"`
	Plan       *domain.Plan              `json:"plan"`
	Programs   []domain.Program          `json:"programs"`
	Workouts   []domain.Workout          `json:"workouts"`
	Instances  []domain.ExerciseInstance `json:"instances,omitempty"`
	Sets       []domain.ExerciseSet      `json:"sets,omitempty"`
}

// SnapshotMirror archives plan trees to object storage. Mirroring is
// fire-and-forget: failures are logged and never surfaced to the caller,
// and no database write is ever rolled back because of the archive.
type SnapshotMirror struct {
	store     storage.ArchiveStorage
	plans     repository.PlanRepository
	programs  repository.ProgramRepository
	workouts  repository.WorkoutRepository
	instances repository.InstanceRepository
	sets      repository.SetRepository
}

func NewSnapshotMirror(
	store storage.ArchiveStorage,
	plans repository.PlanRepository,
	programs repository.ProgramRepository,
	workouts repository.WorkoutRepository,
	instances repository.InstanceRepository,
	sets repository.SetRepository,
) *SnapshotMirror {
	return &SnapshotMirror{
		store:     store,
		plans:     plans,
		programs:  programs,
		workouts:  workouts,
		instances: instances,
		sets:      sets,
	}
}

// MirrorAsync snapshots the plan tree in the background. Safe to call on
// a nil mirror (archiving disabled).
func (m *SnapshotMirror) MirrorAsync(planID primitive.ObjectID, reason string) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := m.mirror(ctx, planID, reason); err != nil {
			log.Printf("WARN: snapshot mirror failed for plan %s (%s): %v", planID.Hex(), reason, err)
		}
	}()
}

// RemoveAsync deletes the archived snapshot after a plan is destroyed.
func (m *SnapshotMirror) RemoveAsync(planID primitive.ObjectID) {
	if m == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
		defer cancel()
		if err := m.store.DeleteObject(ctx, latestSnapshotKey(planID)); err != nil {
			log.Printf("WARN: snapshot removal failed for plan %s: %v", planID.Hex(), err)
		}
	}()
}

func (m *SnapshotMirror) mirror(ctx context.Context, planID primitive.ObjectID, reason string) error {
	plan, err := m.plans.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}

	snap := planSnapshot{
		SnapshotID: uuid.NewString(),
		TakenAt:    time.Now().UTC(),
		Reason:     reason,
		Plan:       plan,
	}
	if snap.Programs, err = m.programs.GetByPlanID(ctx, planID); err != nil {
		return fmt.Errorf("load programs: %w", err)
	}
	if snap.Workouts, err = m.workouts.GetByPlanID(ctx, planID); err != nil {
		return fmt.Errorf("load workouts: %w", err)
	}
	for _, w := range snap.Workouts {
		instances, err := m.instances.GetByWorkoutID(ctx, w.ID)
		if err != nil {
			return fmt.Errorf("load instances for workout %s: %w", w.ID.Hex(), err)
		}
		snap.Instances = append(snap.Instances, instances...)
		for _, inst := range instances {
			sets, err := m.sets.GetByInstanceID(ctx, inst.ID)
			if err != nil {
				return fmt.Errorf("load sets for instance %s: %w", inst.ID.Hex(), err)
			}
			snap.Sets = append(snap.Sets, sets...)
		}
	}

	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	versionedKey := fmt.Sprintf("plans/%s/%s.json", planID.Hex(), snap.SnapshotID)
	if err := m.store.PutSnapshot(ctx, versionedKey, "application/json", bytes.NewReader(body)); err != nil {
		return fmt.Errorf("put versioned snapshot: %w", err)
	}
	if err := m.store.PutSnapshot(ctx, latestSnapshotKey(planID), "application/json", bytes.NewReader(body)); err != nil {
		return fmt.Errorf("put latest snapshot: %w", err)
	}
	return nil
}

func latestSnapshotKey(planID primitive.ObjectID) string {
	return fmt.Sprintf("plans/%s/latest.json", planID.Hex())
}

// SnapshotDownloadURL returns a presigned URL for the most recent
// archived snapshot of the plan.
func (m *SnapshotMirror) SnapshotDownloadURL(ctx context.Context, planID primitive.ObjectID) (string, error) {
	if m == nil {
		return "", fmt.Errorf("snapshot archiving is not configured")
	}
	return m.store.GeneratePresignedDownloadURL(ctx, latestSnapshotKey(planID), storage.DefaultPresignedURLExpiry)
}
