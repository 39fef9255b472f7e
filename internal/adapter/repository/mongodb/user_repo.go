package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type UserRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewUserRepository(db *mongo.Database, log *logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		logger:     log.Named("UserRepository"),
	}
}

// userProjection keeps password hashes and salts out of memory.
var userProjection = bson.M{"username": 1, "email": 1}

// FindByID returns the user with id, or ErrUserNotFound.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		r.logger.Warn("FindByID: invalid user id", zap.String("user_id", id))
		return nil, domain.ErrUserNotFound
	}

	var doc userDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}, options.FindOne().SetProjection(userProjection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Info("FindByID: user not found", zap.String("user_id", id))
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("FindByID: failed to find user", zap.String("user_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomainUser(), nil
}

// FindByIDs returns the users that exist among ids.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	objIDs, dropped := validObjectIDs(ids)
	if dropped > 0 {
		r.logger.Warn("Skipping malformed user ids", zap.Int("dropped", dropped))
	}
	if len(objIDs) == 0 {
		return []*domain.User{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}}, options.Find().SetProjection(userProjection))
	if err != nil {
		r.logger.Error("Failed to find users by ids", zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toDomainUser())
	}
	return users, nil
}
