package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestListingPatch_Apply(t *testing.T) {
	price := 250.0
	rooms := CategoryRooms
	l := &Listing{Title: "Old", Description: "desc", Location: "Goa", Country: "India", Price: 100, Type: CategoryPools}

	ListingPatch{Title: strPtr("New"), Price: &price, Type: &rooms}.Apply(l)

	assert.Equal(t, "New", l.Title)
	assert.Equal(t, "desc", l.Description)
	assert.Equal(t, "Goa", l.Location)
	assert.Equal(t, 250.0, l.Price)
	assert.Equal(t, CategoryRooms, l.Type)
}

func TestListing_CloneIsIndependent(t *testing.T) {
	orig := &Listing{Location: "Goa", ReviewIDs: []string{"a", "b"}}
	c := orig.Clone()
	c.Location = "Manali"
	c.ReviewIDs[0] = "z"

	assert.Equal(t, "Goa", orig.Location)
	assert.Equal(t, "a", orig.ReviewIDs[0])
	assert.Nil(t, (*Listing)(nil).Clone())
}

func TestUnknownPoint(t *testing.T) {
	p := UnknownPoint()
	assert.Equal(t, PointType, p.Type)
	assert.True(t, p.IsUnknown())
	assert.False(t, Point{Type: PointType, Coordinates: [2]float64{73.8, 15.5}}.IsUnknown())
}

func TestValidationError(t *testing.T) {
	var ve ValidationError
	require.NoError(t, ve.ErrOrNil())

	ve.Add("listing[price]", "must be greater than or equal to 0")
	err := ve.ErrOrNil()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidListing))
	assert.Contains(t, err.Error(), "listing[price]")

	ve.Add("listing[type]", "is not a known category")
	assert.Contains(t, ve.Error(), "2 errors")
}
