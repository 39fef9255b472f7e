package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSearchListings(t *testing.T) {
	rooms := []*domain.Listing{{ID: "l1", Type: domain.CategoryRooms}}

	tests := []struct {
		name    string
		query   string
		setup   func(repo *MockListingRepository)
		want    []*domain.Listing
		wantErr error
	}{
		{
			name:    "empty query",
			query:   "",
			wantErr: domain.ErrEmptySearchQuery,
		},
		{
			name:    "whitespace query",
			query:   "   ",
			wantErr: domain.ErrEmptySearchQuery,
		},
		{
			name:  "case insensitive exact type match",
			query: "Rooms",
			setup: func(repo *MockListingRepository) {
				repo.On("FindByType", mock.Anything, domain.CategoryRooms).Return(rooms, nil).Once()
			},
			want: rooms,
		},
		{
			name:  "no matches",
			query: "treehouse",
			setup: func(repo *MockListingRepository) {
				repo.On("FindByType", mock.Anything, domain.Category("treehouse")).Return([]*domain.Listing{}, nil).Once()
			},
			wantErr: domain.ErrNoResults,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, d := newTestUsecase()
			if tt.setup != nil {
				tt.setup(d.repo)
			}

			got, err := uc.SearchListings(context.Background(), tt.query)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			if tt.setup == nil {
				d.repo.AssertNotCalled(t, "FindByType", mock.Anything, mock.Anything)
			}
			d.repo.AssertExpectations(t)
		})
	}
}

func TestSearchListings_RepositoryError(t *testing.T) {
	uc, d := newTestUsecase()
	dbErr := errors.New("mongo down")
	d.repo.On("FindByType", mock.Anything, domain.CategoryCities).Return(nil, dbErr).Once()

	_, err := uc.SearchListings(context.Background(), "cities")

	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, domain.ErrNoResults)
}

func TestFilterListings(t *testing.T) {
	boats := []*domain.Listing{{ID: "l2", Type: domain.CategoryBoats}}

	t.Run("missing segment", func(t *testing.T) {
		uc, d := newTestUsecase()
		_, err := uc.FilterListings(context.Background(), "")
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
		d.repo.AssertNotCalled(t, "FindByType", mock.Anything, mock.Anything)
	})

	t.Run("known category", func(t *testing.T) {
		uc, d := newTestUsecase()
		d.repo.On("FindByType", mock.Anything, domain.CategoryBoats).Return(boats, nil).Once()

		got, err := uc.FilterListings(context.Background(), "Boats")

		require.NoError(t, err)
		assert.Equal(t, boats, got)
	})

	t.Run("unknown category with no listings", func(t *testing.T) {
		uc, d := newTestUsecase()
		d.repo.On("FindByType", mock.Anything, domain.Category("spaceships")).Return([]*domain.Listing{}, nil).Once()

		_, err := uc.FilterListings(context.Background(), "spaceships")

		assert.ErrorIs(t, err, domain.ErrNoResults)
	})

	t.Run("lookup failure is not an empty result", func(t *testing.T) {
		uc, d := newTestUsecase()
		d.repo.On("FindByType", mock.Anything, domain.CategoryFarms).Return(nil, errors.New("cursor killed")).Once()

		_, err := uc.FilterListings(context.Background(), "farms")

		assert.ErrorIs(t, err, domain.ErrCategoryLookup)
		assert.NotErrorIs(t, err, domain.ErrNoResults)
	})
}

func TestListListings(t *testing.T) {
	uc, d := newTestUsecase()
	all := []*domain.Listing{{ID: "l1"}, {ID: "l2"}}
	d.repo.On("FindAll", mock.Anything).Return(all, nil).Once()

	got, err := uc.ListListings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, all, got)
}
