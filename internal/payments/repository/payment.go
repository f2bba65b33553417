package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	paymentserrors "courtside/internal/payments/errors"
	"courtside/pkg/config"
	"courtside/pkg/model"
)

// Payment records are embedded in the booking document, so this repository
// reads and writes the Bookings collection. The positional updates below are
// single-document operations, which keeps each settlement atomic without a
// transaction.
const CollectionName = "Bookings"

type PaymentRepository interface {
	FindByPaymentID(ctx context.Context, paymentID string) (*model.Booking, error)
	TransitionPayment(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error)
}

type mongoPaymentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPaymentRepository(cfg *config.Config) PaymentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPaymentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"payments.id": paymentID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, paymentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking by payment id: %w", err)
	}
	return &booking, nil
}

// TransitionPayment moves one payment record from one status to another and
// returns the booking as it looks after the update. The elemMatch filter
// makes the transition conditional: a record already past the expected
// status does not match, so replayed callbacks fall through to
// ErrStateMismatch instead of double-applying.
func (r *mongoPaymentRepository) TransitionPayment(ctx context.Context, paymentID string, from, to model.PaymentStatus, failureReason string) (*model.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()

	filter := bson.M{
		"payments": bson.M{
			"$elemMatch": bson.M{
				"id":     paymentID,
				"status": from,
			},
		},
	}

	set := bson.M{
		"payments.$.status":     to,
		"payments.$.settled_at": now,
		"updated_at":            now,
	}
	if failureReason != "" {
		set["payments.$.failure_reason"] = failureReason
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to transition payment: %w", err)
	}

	// Nothing matched: either the record does not exist at all, or it is
	// not in the expected status.
	if _, findErr := r.FindByPaymentID(ctx, paymentID); findErr != nil {
		return nil, findErr
	}
	return nil, paymentserrors.ErrStateMismatch
}
