// internal/repository/mongo/instance_repo.go
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

const instanceCollectionName = "exercise_instances"

// mongoInstanceRepository implements repository.InstanceRepository
type mongoInstanceRepository struct {
	collection *mongo.Collection
}

// NewMongoInstanceRepository creates a new ExerciseInstance repository.
func NewMongoInstanceRepository(db *mongo.Database) repository.InstanceRepository {
	return &mongoInstanceRepository{
		collection: db.Collection(instanceCollectionName),
	}
}

// Create inserts a new exercise instance.
func (r *mongoInstanceRepository) Create(ctx context.Context, instance *domain.ExerciseInstance) (primitive.ObjectID, error) {
	if instance.WorkoutID == primitive.NilObjectID || instance.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("instance requires workoutId and exerciseId")
	}
	instance.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	instance.CreatedAt = now
	instance.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, instance)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted instance ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single exercise instance.
func (r *mongoInstanceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseInstance, error) {
	var instance domain.ExerciseInstance
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&instance)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &instance, nil
}

// GetByWorkoutID retrieves all instances of a workout in sequence order.
func (r *mongoInstanceRepository) GetByWorkoutID(ctx context.Context, workoutID primitive.ObjectID) ([]domain.ExerciseInstance, error) {
	var instances []domain.ExerciseInstance
	filter := bson.M{"workoutId": workoutID}
	findOptions := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return instances, nil
}

func (r *mongoInstanceRepository) Update(ctx context.Context, instance *domain.ExerciseInstance) error {
	if instance.ID == primitive.NilObjectID {
		return errors.New("instance ID is required for update")
	}

	filter := bson.M{"_id": instance.ID}
	updateDoc := bson.M{
		"$set": bson.M{
			"exerciseId": instance.ExerciseID,
			"protocolId": instance.ProtocolID,
			"sequence":   instance.Sequence,
			"notes":      instance.Notes,
			"updatedAt":  time.Now().UTC(),
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

func (r *mongoInstanceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id == primitive.NilObjectID {
		return errors.New("instance ID is required for deletion")
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

// EnsureInstanceIndexes creates necessary indexes. Call during startup.
func EnsureInstanceIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "workoutId", Value: 1}, {Key: "sequence", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
