package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"go.uber.org/zap"
)

// SearchListings matches the lowercased query exactly against the listing
// type. It returns ErrEmptySearchQuery without touching storage for a blank
// query and ErrNoResults when nothing matched.
func (uc *ListingUsecase) SearchListings(ctx context.Context, query string) ([]*domain.Listing, error) {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil, domain.ErrEmptySearchQuery
	}

	listings, err := uc.repo.FindByType(ctx, domain.Category(term))
	if err != nil {
		uc.logger.Error("Search failed", zap.String("term", term), zap.Error(err))
		return nil, fmt.Errorf("search listings %q: %w", term, err)
	}
	if len(listings) == 0 {
		uc.logger.Debug("Search returned no listings", zap.String("term", term))
		return nil, domain.ErrNoResults
	}
	return listings, nil
}

// FilterListings maps the path segment through the category table and lists
// the listings of that type. Storage failures are reported as
// ErrCategoryLookup, which callers keep apart from ErrNoResults.
func (uc *ListingUsecase) FilterListings(ctx context.Context, segment string) ([]*domain.Listing, error) {
	if strings.TrimSpace(segment) == "" {
		return nil, domain.ErrInvalidFilter
	}

	category, known := domain.CanonicalCategory(segment)
	if !known {
		uc.logger.Debug("Filter segment is not a known category", zap.String("segment", segment))
	}

	listings, err := uc.repo.FindByType(ctx, category)
	if err != nil {
		uc.logger.Error("Category lookup failed", zap.String("category", string(category)), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCategoryLookup, category, err)
	}
	if len(listings) == 0 {
		return nil, domain.ErrNoResults
	}
	return listings, nil
}
