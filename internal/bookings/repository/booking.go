package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "courtside/internal/bookings/errors"
	"courtside/pkg/config"
	"courtside/pkg/model"
)

const CollectionName = "Bookings"

// BookingRepository persists bookings and performs their status transitions.
// Every transition is a conditional single-document update: the filter names
// the statuses the move may start from, so two concurrent writers (say the
// sweeper and a settlement callback) cannot both win.
type BookingRepository interface {
	Insert(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	Confirm(ctx context.Context, id, checkInCode string) (*model.Booking, error)
	Cancel(ctx context.Context, id string, from []model.BookingStatus) (*model.Booking, error)
	Start(ctx context.Context, id string) (*model.Booking, error)
	Complete(ctx context.Context, id string) (*model.Booking, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]*model.Booking, error)
	FindElapsedInProgress(ctx context.Context, now time.Time) ([]*model.Booking, error)
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) Confirm(ctx context.Context, id, checkInCode string) (*model.Booking, error) {
	return r.transition(ctx, id,
		[]model.BookingStatus{model.BookingPendingPayment},
		bson.M{
			"$set": bson.M{
				"status":        model.BookingConfirmed,
				"check_in_code": checkInCode,
				"updated_at":    time.Now().UTC(),
			},
			"$unset": bson.M{"hold_expires_at": ""},
		},
	)
}

func (r *mongoBookingRepository) Cancel(ctx context.Context, id string, from []model.BookingStatus) (*model.Booking, error) {
	return r.transition(ctx, id, from,
		bson.M{
			"$set": bson.M{
				"status":     model.BookingCancelled,
				"updated_at": time.Now().UTC(),
			},
			"$unset": bson.M{"hold_expires_at": ""},
		},
	)
}

func (r *mongoBookingRepository) Start(ctx context.Context, id string) (*model.Booking, error) {
	return r.transition(ctx, id,
		[]model.BookingStatus{model.BookingConfirmed},
		bson.M{
			"$set": bson.M{
				"status":     model.BookingInProgress,
				"updated_at": time.Now().UTC(),
			},
		},
	)
}

func (r *mongoBookingRepository) Complete(ctx context.Context, id string) (*model.Booking, error) {
	return r.transition(ctx, id,
		[]model.BookingStatus{model.BookingInProgress},
		bson.M{
			"$set": bson.M{
				"status":     model.BookingCompleted,
				"updated_at": time.Now().UTC(),
			},
		},
	)
}

func (r *mongoBookingRepository) transition(ctx context.Context, id string, from []model.BookingStatus, update bson.M) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": from},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to transition booking: %w", err)
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, bookingserrors.ErrStateMismatch
}

func (r *mongoBookingRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	return r.findAll(ctx, bson.M{
		"status":          model.BookingPendingPayment,
		"hold_expires_at": bson.M{"$lte": now},
	})
}

func (r *mongoBookingRepository) FindElapsedInProgress(ctx context.Context, now time.Time) ([]*model.Booking, error) {
	return r.findAll(ctx, bson.M{
		"status":   model.BookingInProgress,
		"end_time": bson.M{"$lte": now},
	})
}

func (r *mongoBookingRepository) findAll(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
