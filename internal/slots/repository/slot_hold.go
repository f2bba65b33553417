package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	slotserrors "courtside/internal/slots/errors"
	"courtside/pkg/config"
	"courtside/pkg/model"
)

const (
	CollectionName = "Slot_holds"
)

type SlotHoldRepository interface {
	Insert(ctx context.Context, hold *model.SlotHold) error
	FindByToken(ctx context.Context, token string) (*model.SlotHold, error)
	FindByResourceDate(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error)
	Commit(ctx context.Context, token string) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoSlotHoldRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotHoldRepository(cfg *config.Config) SlotHoldRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotHoldRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSlotHoldRepository) Insert(ctx context.Context, hold *model.SlotHold) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	hold.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, hold); err != nil {
		return fmt.Errorf("failed to insert slot hold: %w", err)
	}
	return nil
}

func (r *mongoSlotHoldRepository) FindByToken(ctx context.Context, token string) (*model.SlotHold, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var hold model.SlotHold
	err := r.collection.FindOne(ctx, bson.M{"_id": token}).Decode(&hold)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, slotserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find slot hold: %w", err)
	}
	return &hold, nil
}

func (r *mongoSlotHoldRepository) FindByResourceDate(ctx context.Context, resourceID, date string) ([]*model.SlotHold, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{
		"resource_id": resourceID,
		"date":        date,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slot holds: %w", err)
	}
	defer cursor.Close(ctx)

	var holds []*model.SlotHold
	if err = cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode slot holds: %w", err)
	}
	return holds, nil
}

// Commit promotes a HELD entry to COMMITTED and drops its expiry. The filter
// requires the entry to still exist; an entry removed by release or sweep
// reports not found.
func (r *mongoSlotHoldRepository) Commit(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": token, "state": model.SlotHeld},
		bson.M{
			"$set":   bson.M{"state": model.SlotCommitted},
			"$unset": bson.M{"expires_at": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to commit slot hold: %w", err)
	}
	if result.MatchedCount == 0 {
		return slotserrors.ErrNotFound
	}
	return nil
}

func (r *mongoSlotHoldRepository) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": token}); err != nil {
		return fmt.Errorf("failed to delete slot hold: %w", err)
	}
	return nil
}

func (r *mongoSlotHoldRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"state":      model.SlotHeld,
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired slot holds: %w", err)
	}
	return result.DeletedCount, nil
}
