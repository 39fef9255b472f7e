package mongodb

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const reviewCollectionName = "reviews"

// ReviewRepository reads and bulk-deletes reviews. Reviews are written by
// another service.
type ReviewRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewReviewRepository(db *mongo.Database, log *logger.Logger) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection(reviewCollectionName),
		logger:     log.Named("ReviewRepository"),
	}
}

// FindByIDs returns the reviews that exist among ids. Malformed ids are
// skipped.
func (r *ReviewRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Review, error) {
	objIDs, dropped := validObjectIDs(ids)
	if dropped > 0 {
		r.logger.Warn("Skipping malformed review ids", zap.Int("dropped", dropped))
	}
	if len(objIDs) == 0 {
		return []*domain.Review{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		r.logger.Error("Failed to find reviews by ids", zap.Int("count", len(objIDs)), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode reviews", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	reviews := make([]*domain.Review, 0, len(docs))
	for _, doc := range docs {
		reviews = append(reviews, doc.toDomainReview())
	}
	return reviews, nil
}

// DeleteByIDs removes every review in ids in a single statement and returns
// the number deleted.
func (r *ReviewRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	objIDs, dropped := validObjectIDs(ids)
	if dropped > 0 {
		r.logger.Warn("Skipping malformed review ids on delete", zap.Int("dropped", dropped))
	}
	if len(objIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		r.logger.Error("Failed to delete reviews", zap.Int("count", len(objIDs)), zap.Error(err))
		return 0, fmt.Errorf("db delete many failed: %w", err)
	}
	r.logger.Info("Reviews deleted", zap.Int64("deleted", result.DeletedCount), zap.Int("requested", len(objIDs)))
	return result.DeletedCount, nil
}
