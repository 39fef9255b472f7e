package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository on MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewListingRepository ensures the listing indexes and returns the repository.
// Index failures are logged, not fatal: the indexes may already exist.
func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "geometry", Value: "2dsphere"}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}
}

// Create inserts listing and writes the assigned ID and timestamps back.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		r.logger.Error("Failed to convert listing for Create", zap.Error(err))
		return err
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	if doc.Reviews == nil {
		doc.Reviews = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing into DB", zap.Error(err))
		return fmt.Errorf("db insert failed: %w", err)
	}

	listing.ID = doc.ID.Hex()
	listing.CreatedAt = now
	listing.UpdatedAt = now
	r.logger.Debug("Listing created in DB", zap.String("listing_id", listing.ID))
	return nil
}

// Update overwrites the editable fields. Owner and review references are
// never written here.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		r.logger.Error("Failed to convert listing for Update", zap.Error(err))
		return err
	}
	if doc.ID.IsZero() {
		return errors.New("cannot update listing without ID")
	}
	doc.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"title":       doc.Title,
			"description": doc.Description,
			"image":       doc.Image,
			"price":       doc.Price,
			"location":    doc.Location,
			"country":     doc.Country,
			"geometry":    doc.Geometry,
			"type":        doc.Type,
			"updated_at":  doc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update listing in DB", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("db update failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	listing.UpdatedAt = doc.UpdatedAt
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		r.logger.Error("Failed to delete listing from DB", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

// FindByID treats a malformed id like an unknown one.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		r.logger.Debug("Malformed listing id", zap.String("listing_id", id))
		return nil, domain.ErrListingNotFound
	}

	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing by ID from DB", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomainListing(), nil
}

// FindAll returns every listing in natural order.
func (r *ListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{})
}

// FindByType returns listings whose type equals category exactly.
func (r *ListingRepository) FindByType(ctx context.Context, category domain.Category) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{"type": string(category)})
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("db cursor all failed: %w", err)
	}
	return toDomainListings(docs), nil
}

// Ping checks the database connection; used by readiness.
func (r *ListingRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, nil)
}
