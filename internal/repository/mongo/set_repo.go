// internal/repository/mongo/set_repo.go
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

const setCollectionName = "exercise_sets"

// mongoSetRepository implements repository.SetRepository
type mongoSetRepository struct {
	collection *mongo.Collection
}

// NewMongoSetRepository creates a new ExerciseSet repository.
func NewMongoSetRepository(db *mongo.Database) repository.SetRepository {
	return &mongoSetRepository{
		collection: db.Collection(setCollectionName),
	}
}

// Create inserts a new set.
func (r *mongoSetRepository) Create(ctx context.Context, set *domain.ExerciseSet) (primitive.ObjectID, error) {
	if set.InstanceID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("set requires instanceId")
	}
	set.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted set ID")
	}
	return insertedID, nil
}

// GetByInstanceID retrieves all sets of an exercise instance in order.
func (r *mongoSetRepository) GetByInstanceID(ctx context.Context, instanceID primitive.ObjectID) ([]domain.ExerciseSet, error) {
	var sets []domain.ExerciseSet
	filter := bson.M{"instanceId": instanceID}
	findOptions := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *mongoSetRepository) Update(ctx context.Context, set *domain.ExerciseSet) error {
	if set.ID == primitive.NilObjectID {
		return errors.New("set ID is required for update")
	}

	filter := bson.M{"_id": set.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"sequence":     set.Sequence,
			"targetReps":   set.TargetReps,
			"targetWeight": set.TargetWeight,
			"reps":         set.Reps,
			"weight":       set.Weight,
			"completed":    set.Completed,
			"updatedAt":    time.Now().UTC(),
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

func (r *mongoSetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id == primitive.NilObjectID {
		return errors.New("set ID is required for deletion")
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

// EnsureSetIndexes creates necessary indexes. Call during startup.
func EnsureSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "instanceId", Value: 1}, {Key: "sequence", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
