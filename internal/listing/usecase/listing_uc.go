package usecase

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/Abdurahmanit/wanderlust/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("listing-service/usecase")

// NATS subjects for listing lifecycle events.
const (
	SubjectListingCreated = "listing.created"
	SubjectListingUpdated = "listing.updated"
	SubjectListingDeleted = "listing.deleted"
)

const (
	geocodeLimit         = 1
	defaultNotifyTimeout = 30 * time.Second
	cacheEpochStripes    = 64
)

// ListingUsecase implements the listing lifecycle: create, read, update,
// delete, search and category filter.
type ListingUsecase struct {
	repo     domain.ListingRepository
	reviews  domain.ReviewRepository
	users    domain.UserRepository
	geocoder domain.Geocoder
	logger   *logger.Logger

	cache         domain.ListingCache
	publisher     domain.EventPublisher
	notifier      domain.Notifier
	metrics       *metrics.MetricsManager
	notifyTimeout time.Duration

	// cacheEpochs is bumped on every invalidation. A storage read only
	// repopulates the cache if its stripe did not move while it was in
	// flight, so a read racing an update cannot put the old state back.
	cacheEpochs [cacheEpochStripes]atomic.Uint64
}

type Option func(*ListingUsecase)

func WithCache(c domain.ListingCache) Option {
	return func(uc *ListingUsecase) { uc.cache = c }
}

func WithPublisher(p domain.EventPublisher) Option {
	return func(uc *ListingUsecase) { uc.publisher = p }
}

func WithNotifier(n domain.Notifier) Option {
	return func(uc *ListingUsecase) { uc.notifier = n }
}

func WithMetrics(m *metrics.MetricsManager) Option {
	return func(uc *ListingUsecase) { uc.metrics = m }
}

func NewListingUsecase(
	repo domain.ListingRepository,
	reviews domain.ReviewRepository,
	users domain.UserRepository,
	geocoder domain.Geocoder,
	log *logger.Logger,
	opts ...Option,
) *ListingUsecase {
	uc := &ListingUsecase{
		repo:          repo,
		reviews:       reviews,
		users:         users,
		geocoder:      geocoder,
		logger:        log.Named("ListingUsecase"),
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListListings returns every listing in storage order.
func (uc *ListingUsecase) ListListings(ctx context.Context) ([]*domain.Listing, error) {
	listings, err := uc.repo.FindAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to list listings", zap.Error(err))
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// GetListing returns the listing with its owner and reviews (with authors).
func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.ListingDetails, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetListing", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	// Reviews are attached by another service directly in storage, so the
	// detail view never trusts a cached review set.
	listing, err := uc.loadListing(ctx, id)
	if err != nil {
		return nil, err
	}

	var reviews []*domain.Review
	if len(listing.ReviewIDs) > 0 {
		reviews, err = uc.reviews.FindByIDs(ctx, listing.ReviewIDs)
		if err != nil {
			uc.logger.Error("Failed to load listing reviews", zap.String("listing_id", id), zap.Error(err))
			span.RecordError(err)
			return nil, fmt.Errorf("load reviews of listing %s: %w", id, err)
		}
	}

	userIDs := make([]string, 0, len(reviews)+1)
	seen := make(map[string]struct{}, len(reviews)+1)
	for _, uid := range append([]string{listing.OwnerID}, authorIDs(reviews)...) {
		if uid == "" {
			continue
		}
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		userIDs = append(userIDs, uid)
	}

	usersByID := make(map[string]*domain.User, len(userIDs))
	if len(userIDs) > 0 {
		users, err := uc.users.FindByIDs(ctx, userIDs)
		if err != nil {
			uc.logger.Error("Failed to resolve listing users", zap.String("listing_id", id), zap.Error(err))
			span.RecordError(err)
			return nil, fmt.Errorf("resolve users of listing %s: %w", id, err)
		}
		for _, u := range users {
			usersByID[u.ID] = u
		}
	}

	details := &domain.ListingDetails{
		Listing: listing,
		Owner:   usersByID[listing.OwnerID],
		Reviews: make([]domain.ReviewWithAuthor, 0, len(reviews)),
	}
	for _, r := range reviews {
		details.Reviews = append(details.Reviews, domain.ReviewWithAuthor{Review: *r, Author: usersByID[r.AuthorID]})
	}
	return details, nil
}

// GetListingForEdit returns the bare listing for the edit form. It may be
// served from the cache.
func (uc *ListingUsecase) GetListingForEdit(ctx context.Context, id string) (*domain.Listing, error) {
	return uc.findListing(ctx, id)
}

// OwnerOf returns the owner id of a listing. Used by the ownership gate.
func (uc *ListingUsecase) OwnerOf(ctx context.Context, id string) (string, error) {
	listing, err := uc.findListing(ctx, id)
	if err != nil {
		return "", err
	}
	return listing.OwnerID, nil
}

// CreateListing geocodes the location, assigns the owner and image and
// persists the listing. A failed or empty geocode never blocks creation: the
// listing gets the [0,0] sentinel instead.
func (uc *ListingUsecase) CreateListing(ctx context.Context, ownerID string, in domain.ListingInput, image domain.Image) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.CreateListing", oteltrace.WithAttributes(
		attribute.String("owner_id", ownerID),
		attribute.String("type", string(in.Type)),
	))
	defer span.End()

	uc.logger.Info("Creating listing", zap.String("owner_id", ownerID), zap.String("title", in.Title), zap.String("type", string(in.Type)))

	geometry, err := uc.resolveGeometry(ctx, "create", in.Location)
	if err != nil {
		uc.logger.Warn("Geocoding failed, using unknown point", zap.String("location", in.Location), zap.Error(err))
		span.RecordError(err)
		geometry = domain.UnknownPoint()
	}

	listing := &domain.Listing{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Country:     in.Country,
		Price:       in.Price,
		Type:        in.Type,
		Image:       image,
		Geometry:    geometry,
		ReviewIDs:   []string{},
	}
	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing", zap.String("owner_id", ownerID), zap.Error(err))
		span.RecordError(err)
		return nil, fmt.Errorf("create listing: %w", err)
	}
	span.SetAttributes(attribute.String("listing_id", listing.ID))

	if uc.metrics != nil {
		uc.metrics.ListingsCreatedTotal.Inc()
	}
	uc.setCache(ctx, listing)
	uc.publish(ctx, SubjectListingCreated, map[string]interface{}{
		"id":       listing.ID,
		"owner_id": listing.OwnerID,
		"type":     listing.Type,
	})
	uc.notifyOwner(ctx, listing)

	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", ownerID))
	return listing, nil
}

// UpdateListing applies patch to the stored listing. The previous state is
// read before the overwrite so the location comparison sees the old text.
// Geometry is recomputed only when the location changed; the image only when
// a new one is supplied. The result is written once.
func (uc *ListingUsecase) UpdateListing(ctx context.Context, id string, patch domain.ListingPatch, image *domain.Image) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.UpdateListing", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	snapshot, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Error("Failed to load listing for update", zap.String("listing_id", id), zap.Error(err))
			span.RecordError(err)
		}
		return nil, err
	}

	updated := snapshot.Clone()
	patch.Apply(updated)

	locationChanged := updated.Location != snapshot.Location
	if locationChanged {
		geometry, err := uc.resolveGeometry(ctx, "update", updated.Location)
		if err != nil {
			uc.logger.Warn("Geocoding failed on update, keeping previous geometry",
				zap.String("listing_id", id), zap.String("location", updated.Location), zap.Error(err))
			span.RecordError(err)
		} else {
			updated.Geometry = geometry
		}
	} else {
		uc.observeGeocode("update", metrics.GeocodeSkipped)
	}

	if image != nil && !image.IsZero() {
		updated.Image = *image
	}

	if err := uc.repo.Update(ctx, updated); err != nil {
		uc.logger.Error("Failed to update listing", zap.String("listing_id", id), zap.Error(err))
		span.RecordError(err)
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update listing %s: %w", id, err)
	}

	if uc.metrics != nil {
		uc.metrics.ListingUpdatesTotal.Inc()
	}
	uc.invalidateCache(ctx, id)
	uc.publish(ctx, SubjectListingUpdated, map[string]interface{}{
		"id":               updated.ID,
		"owner_id":         updated.OwnerID,
		"type":             updated.Type,
		"location_changed": locationChanged,
	})

	uc.logger.Info("Listing updated", zap.String("listing_id", id), zap.Bool("location_changed", locationChanged))
	return updated, nil
}

// DeleteListing removes the listing's reviews and then the listing. The
// listing is only removed once the review cleanup succeeded; a failed cleanup
// returns ErrCascadeDelete and leaves the listing in place. A missing listing
// returns ErrListingNotFound without touching storage.
func (uc *ListingUsecase) DeleteListing(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "ListingUsecase.DeleteListing", oteltrace.WithAttributes(attribute.String("listing_id", id)))
	defer span.End()

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Info("Delete requested for missing listing", zap.String("listing_id", id))
			return err
		}
		uc.logger.Error("Failed to load listing for delete", zap.String("listing_id", id), zap.Error(err))
		span.RecordError(err)
		return fmt.Errorf("load listing %s: %w", id, err)
	}

	var reviewsDeleted int64
	if len(listing.ReviewIDs) > 0 {
		reviewsDeleted, err = uc.reviews.DeleteByIDs(ctx, listing.ReviewIDs)
		if err != nil {
			uc.logger.Error("Review cleanup failed, listing kept",
				zap.String("listing_id", id), zap.Int("review_count", len(listing.ReviewIDs)), zap.Error(err))
			span.RecordError(err)
			return fmt.Errorf("%w: listing %s: %v", domain.ErrCascadeDelete, id, err)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Error("Failed to delete listing after review cleanup",
				zap.String("listing_id", id), zap.Int64("reviews_deleted", reviewsDeleted), zap.Error(err))
			span.RecordError(err)
			return fmt.Errorf("delete listing %s: %w", id, err)
		}
		uc.logger.Warn("Listing disappeared during delete", zap.String("listing_id", id))
	}

	if uc.metrics != nil {
		uc.metrics.ListingDeletesTotal.Inc()
	}
	uc.invalidateCache(ctx, id)
	uc.publish(ctx, SubjectListingDeleted, map[string]interface{}{
		"id":              id,
		"owner_id":        listing.OwnerID,
		"type":            listing.Type,
		"reviews_deleted": reviewsDeleted,
	})

	uc.logger.Info("Listing deleted", zap.String("listing_id", id), zap.Int64("reviews_deleted", reviewsDeleted))
	return nil
}

// resolveGeometry asks the geocoder for one match. No match yields the
// sentinel; a gateway error is returned wrapped in ErrGeocoding.
func (uc *ListingUsecase) resolveGeometry(ctx context.Context, operation, location string) (domain.Point, error) {
	features, err := uc.geocoder.ForwardGeocode(ctx, location, geocodeLimit)
	if err != nil {
		uc.observeGeocode(operation, metrics.GeocodeFailed)
		return domain.Point{}, fmt.Errorf("%w: %v", domain.ErrGeocoding, err)
	}
	if len(features) == 0 {
		uc.observeGeocode(operation, metrics.GeocodeNoMatch)
		uc.logger.Warn("Geocoding returned no match", zap.String("location", location))
		return domain.UnknownPoint(), nil
	}
	uc.observeGeocode(operation, metrics.GeocodeMatched)
	geometry := features[0].Geometry
	if geometry.Type == "" {
		geometry.Type = domain.PointType
	}
	return geometry, nil
}

// findListing reads through the cache. Cache failures fall back to storage.
func (uc *ListingUsecase) findListing(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("Listing cache read failed", zap.String("listing_id", id), zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}
	return uc.loadListing(ctx, id)
}

// loadListing reads from storage and refreshes the cache.
func (uc *ListingUsecase) loadListing(ctx context.Context, id string) (*domain.Listing, error) {
	epoch := uc.cacheEpoch(id).Load()

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Debug("Listing not found", zap.String("listing_id", id))
			return nil, err
		}
		uc.logger.Error("Failed to load listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("load listing %s: %w", id, err)
	}

	if uc.cacheEpoch(id).Load() != epoch {
		uc.logger.Debug("Listing changed during read, not caching", zap.String("listing_id", id))
		return listing, nil
	}
	uc.setCache(ctx, listing)
	return listing, nil
}

func (uc *ListingUsecase) cacheEpoch(id string) *atomic.Uint64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &uc.cacheEpochs[h.Sum32()%cacheEpochStripes]
}

func (uc *ListingUsecase) setCache(ctx context.Context, listing *domain.Listing) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetListing(ctx, listing); err != nil {
		uc.logger.Warn("Listing cache write failed", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *ListingUsecase) invalidateCache(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	uc.cacheEpoch(id).Add(1)
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("Listing cache invalidation failed", zap.String("listing_id", id), zap.Error(err))
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, payload map[string]interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, payload); err != nil {
		uc.logger.Warn("Failed to publish listing event", zap.String("subject", subject), zap.Error(err))
	}
}

// notifyOwner mails the owner in the background; the request does not wait.
func (uc *ListingUsecase) notifyOwner(ctx context.Context, listing *domain.Listing) {
	if uc.notifier == nil {
		return
	}
	ownerID, title := listing.OwnerID, listing.Title
	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.notifyTimeout)
		defer cancel()

		owner, err := uc.users.FindByID(nctx, ownerID)
		if err != nil {
			uc.logger.Warn("Cannot notify owner: lookup failed", zap.String("owner_id", ownerID), zap.Error(err))
			return
		}
		if owner.Email == "" {
			uc.logger.Debug("Owner has no email, skipping notification", zap.String("owner_id", ownerID))
			return
		}
		if err := uc.notifier.SendListingCreatedEmail(owner.Email, title); err != nil {
			uc.logger.Warn("Failed to send listing created email", zap.String("owner_id", ownerID), zap.Error(err))
		}
	}()
}

func (uc *ListingUsecase) observeGeocode(operation, outcome string) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.GeocodeResults.WithLabelValues(operation, outcome).Inc()
}

func authorIDs(reviews []*domain.Review) []string {
	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.AuthorID)
	}
	return ids
}
