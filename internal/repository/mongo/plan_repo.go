// internal/repository/mongo/plan_repo.go
package mongo

import (
	"alcyxob/planforge/internal/domain"
	"alcyxob/planforge/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan. New plans always start in draft.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires ownerId and name")
	}
	if plan.Status == "" {
		plan.Status = domain.PlanStatusDraft
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByOwnerID retrieves all plans belonging to an owner, newest first.
// Status stored here is raw; callers derive the effective status themselves.
func (r *mongoPlanRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID})
}

// GetByTrainerID retrieves all plans naming the trainer as co-owner,
// newest first.
func (r *mongoPlanRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID})
}

func (r *mongoPlanRepository) find(ctx context.Context, filter bson.M) ([]domain.Plan, error) {
	var plans []domain.Plan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Return empty slice if no plans found (not an error)
	return plans, nil
}

// Update persists the mutable plan fields. OwnerID and CreatedAt are never
// touched by a plain update.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.Plan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("plan ID is required for update")
	}

	filter := bson.M{"_id": plan.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"trainerId":              plan.TrainerID,
			"name":                   plan.Name,
			"goal":                   plan.Goal,
			"status":                 plan.Status,
			"startDate":              plan.StartDate,
			"endDate":                plan.EndDate,
			"weightliftingDays":      plan.WeightliftingDays,
			"cardioDays":             plan.CardioDays,
			"split":                  plan.Split,
			"preferredDays":          plan.PreferredDays,
			"emphasizedMuscleGroups": plan.EmphasizedMuscleGroups,
			"excludedMuscleGroups":   plan.ExcludedMuscleGroups,
			"goalWeight":             plan.GoalWeight,
			"experienceOverride":     plan.ExperienceOverride,
			"singleWorkout":          plan.SingleWorkout,
			"updatedAt":              time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUpdateFailed, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the plan document only. Child programs/workouts are removed
// by the cascade service before this is called.
func (r *mongoPlanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id == primitive.NilObjectID {
		return errors.New("plan ID is required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("%w: %v", repository.ErrDeleteFailed, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: an owner's plans filtered by status
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// Overlap checks scan an owner's plans by date range
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Trainer co-owner listing
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
