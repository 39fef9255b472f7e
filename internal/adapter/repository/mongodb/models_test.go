package mongodb

import (
	"testing"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListingDocument_RoundTrip(t *testing.T) {
	owner := primitive.NewObjectID()
	review := primitive.NewObjectID()
	in := &domain.Listing{
		OwnerID:   owner.Hex(),
		Title:     "Lake house",
		Location:  "Como",
		Country:   "Italy",
		Price:     320,
		Type:      domain.CategoryPools,
		Image:     domain.Image{URL: "http://img/a.jpg", Filename: "listings/a.jpg"},
		Geometry:  domain.Point{Type: domain.PointType, Coordinates: [2]float64{9.08, 45.81}},
		ReviewIDs: []string{review.Hex()},
	}

	doc, err := toListingDocument(in)
	require.NoError(t, err)
	assert.True(t, doc.ID.IsZero())
	assert.Equal(t, owner, doc.Owner)
	assert.Equal(t, []float64{9.08, 45.81}, doc.Geometry.Coordinates)
	assert.Equal(t, "pools", doc.Type)

	doc.ID = primitive.NewObjectID()
	out := doc.toDomainListing()
	assert.Equal(t, doc.ID.Hex(), out.ID)
	assert.Equal(t, in.OwnerID, out.OwnerID)
	assert.Equal(t, in.Geometry, out.Geometry)
	assert.Equal(t, in.ReviewIDs, out.ReviewIDs)
	assert.Equal(t, in.Image, out.Image)
}

func TestToListingDocument_RejectsBadOwner(t *testing.T) {
	_, err := toListingDocument(&domain.Listing{OwnerID: "not-an-object-id"})
	assert.ErrorIs(t, err, domain.ErrInvalidListing)
}

func TestToListingDocument_MissingGeometryBecomesSentinel(t *testing.T) {
	doc, err := toListingDocument(&domain.Listing{OwnerID: primitive.NewObjectID().Hex()})
	require.NoError(t, err)
	assert.Equal(t, domain.PointType, doc.Geometry.Type)
	assert.Equal(t, []float64{0, 0}, doc.Geometry.Coordinates)
}

func TestToDomainListing_MissingGeometryIsNeverNull(t *testing.T) {
	doc := &listingDocument{ID: primitive.NewObjectID()}
	out := doc.toDomainListing()
	assert.Equal(t, domain.UnknownPoint(), out.Geometry)
	assert.Empty(t, out.OwnerID)
	assert.NotNil(t, out.ReviewIDs)
}

func TestValidObjectIDs(t *testing.T) {
	good := primitive.NewObjectID()
	ids, dropped := validObjectIDs([]string{good.Hex(), "bad", ""})
	assert.Equal(t, []primitive.ObjectID{good}, ids)
	assert.Equal(t, 2, dropped)
}
