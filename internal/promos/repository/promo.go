package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	promoserrors "courtside/internal/promos/errors"
	"courtside/pkg/config"
	mongotx "courtside/pkg/db/mongo"
	"courtside/pkg/model"
)

const (
	CollectionName           = "PromoCodes"
	RedemptionCollectionName = "PromoRedemptions"
)

type PromoRepository interface {
	Create(ctx context.Context, promo *model.PromoCode) error
	Update(ctx context.Context, promo *model.PromoCode) error
	FindByCode(ctx context.Context, code string) (*model.PromoCode, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error)
	SetActive(ctx context.Context, code string, active bool) error
	Redeem(ctx context.Context, redemption *model.PromoRedemption) error
	CountUserRedemptions(ctx context.Context, code, userID string) (int64, error)
}

type mongoPromoRepository struct {
	cfg         *config.Config
	promos      *mongo.Collection
	redemptions *mongo.Collection
	txManager   mongotx.TransactionManager
}

func NewMongoPromoRepository(cfg *config.Config) PromoRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPromoRepository{
		cfg:         cfg,
		promos:      db.Collection(CollectionName),
		redemptions: db.Collection(RedemptionCollectionName),
		txManager:   mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	promo.CreatedAt = now
	promo.UpdatedAt = now

	_, err := r.promos.InsertOne(ctx, promo)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return promoserrors.ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert promo code: %w", err)
	}
	return nil
}

func (r *mongoPromoRepository) Update(ctx context.Context, promo *model.PromoCode) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	promo.UpdatedAt = time.Now().UTC()

	result, err := r.promos.ReplaceOne(ctx, bson.M{"_id": promo.Code}, promo)
	if err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	if result.MatchedCount == 0 {
		return promoserrors.ErrNotFound
	}
	return nil
}

func (r *mongoPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promo model.PromoCode
	err := r.promos.FindOne(ctx, bson.M{"_id": code}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, promoserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find promo code: %w", err)
	}
	return &promo, nil
}

func (r *mongoPromoRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.PromoCode, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	total, err := r.promos.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count promo codes: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.promos.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find promo codes: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []*model.PromoCode
	if err = cursor.All(ctx, &promos); err != nil {
		return nil, 0, fmt.Errorf("failed to decode promo codes: %w", err)
	}
	return promos, total, nil
}

func (r *mongoPromoRepository) SetActive(ctx context.Context, code string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.promos.UpdateOne(ctx, bson.M{"_id": code}, bson.M{
		"$set": bson.M{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update promo code: %w", err)
	}
	if result.MatchedCount == 0 {
		return promoserrors.ErrNotFound
	}
	return nil
}

// Redeem consumes one use of the total cap and records the redemption in
// a single transaction. The increment filter only matches while the counter
// is below the cap (or no cap is set), so concurrent redeemers past the
// limit fail with ErrUsageExhausted instead of over-counting.
func (r *mongoPromoRepository) Redeem(ctx context.Context, redemption *model.PromoRedemption) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id": redemption.Code,
		"$or": []bson.M{
			{"max_usage_total": bson.M{"$exists": false}},
			{"$expr": bson.M{"$lt": bson.A{"$usage_count", "$max_usage_total"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"usage_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}

	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		result, err := r.promos.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return fmt.Errorf("failed to increment promo usage: %w", err)
		}
		if result.MatchedCount == 0 {
			return promoserrors.ErrUsageExhausted
		}

		if _, err := r.redemptions.InsertOne(sessCtx, redemption); err != nil {
			return fmt.Errorf("failed to insert promo redemption: %w", err)
		}
		return nil
	})
}

func (r *mongoPromoRepository) CountUserRedemptions(ctx context.Context, code, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.redemptions.CountDocuments(ctx, bson.M{
		"code":    code,
		"user_id": userID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count promo redemptions: %w", err)
	}
	return count, nil
}
