package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
)

// memListingRepo is an in-memory ListingRepository for round-trip tests.
type memListingRepo struct {
	mu       sync.Mutex
	seq      int
	listings map[string]*domain.Listing
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{listings: make(map[string]*domain.Listing)}
}

func (r *memListingRepo) Create(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	listing.ID = fmt.Sprintf("listing-%d", r.seq)
	r.listings[listing.ID] = listing.Clone()
	return nil
}

func (r *memListingRepo) Update(_ context.Context, listing *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; !ok {
		return domain.ErrListingNotFound
	}
	r.listings[listing.ID] = listing.Clone()
	return nil
}

func (r *memListingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *memListingRepo) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return l.Clone(), nil
}

func (r *memListingRepo) FindAll(_ context.Context) ([]*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		out = append(out, l.Clone())
	}
	return out, nil
}

func (r *memListingRepo) FindByType(_ context.Context, category domain.Category) ([]*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Listing
	for _, l := range r.listings {
		if l.Type == category {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func (r *memListingRepo) appendReview(listingID, reviewID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.listings[listingID]
	l.ReviewIDs = append(l.ReviewIDs, reviewID)
}

// interleavedRepo runs a callback right after the next FindByID has read,
// before the caller sees the result.
type interleavedRepo struct {
	*memListingRepo
	hookMu sync.Mutex
	hook   func()
}

func (r *interleavedRepo) afterNextFind(fn func()) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.hook = fn
}

func (r *interleavedRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := r.memListingRepo.FindByID(ctx, id)

	r.hookMu.Lock()
	hook := r.hook
	r.hook = nil
	r.hookMu.Unlock()
	if hook != nil {
		hook()
	}
	return l, err
}

// memListingCache is an in-memory ListingCache.
type memListingCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Listing
}

func newMemListingCache() *memListingCache {
	return &memListingCache{entries: make(map[string]*domain.Listing)}
}

func (c *memListingCache) GetListing(_ context.Context, id string) (*domain.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id].Clone(), nil
}

func (c *memListingCache) SetListing(_ context.Context, listing *domain.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[listing.ID] = listing.Clone()
	return nil
}

func (c *memListingCache) DeleteListing(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

func (c *memListingCache) get(id string) *domain.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id].Clone()
}

// memReviewRepo is an in-memory ReviewRepository.
type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*domain.Review
}

func newMemReviewRepo(reviews ...*domain.Review) *memReviewRepo {
	r := &memReviewRepo{reviews: make(map[string]*domain.Review)}
	for _, rv := range reviews {
		r.reviews[rv.ID] = rv
	}
	return r
}

func (r *memReviewRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Review
	for _, id := range ids {
		if rv, ok := r.reviews[id]; ok {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *memReviewRepo) DeleteByIDs(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.reviews[id]; ok {
			delete(r.reviews, id)
			n++
		}
	}
	return n, nil
}

func (r *memReviewRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reviews)
}
