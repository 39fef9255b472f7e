package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument is the stored form of a Listing. Geometry is GeoJSON so the
// 2dsphere index can cover it.
type listingDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Image       imageDocument        `bson:"image"`
	Price       float64              `bson:"price"`
	Location    string               `bson:"location"`
	Country     string               `bson:"country"`
	Reviews     []primitive.ObjectID `bson:"reviews"`
	Owner       primitive.ObjectID   `bson:"owner"`
	Geometry    geometryDocument     `bson:"geometry"`
	Type        string               `bson:"type"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

type imageDocument struct {
	URL      string `bson:"url"`
	Filename string `bson:"filename"`
}

type geometryDocument struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type reviewDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Rating    int                `bson:"rating"`
	Comment   string             `bson:"comment"`
	Author    primitive.ObjectID `bson:"author"`
	CreatedAt time.Time          `bson:"created_at"`
}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
}

// toListingDocument converts a domain listing. An empty ID leaves _id unset
// so the repository assigns one.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	var docID primitive.ObjectID
	if l.ID != "" {
		id, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid listing id %q: %w", l.ID, err)
		}
		docID = id
	}

	owner, err := primitive.ObjectIDFromHex(l.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid owner id %q", domain.ErrInvalidListing, l.OwnerID)
	}

	reviews, err := toObjectIDs(l.ReviewIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidListing, err)
	}

	geometry := l.Geometry
	if geometry.Type == "" {
		geometry = domain.UnknownPoint()
	}

	return &listingDocument{
		ID:          docID,
		Title:       l.Title,
		Description: l.Description,
		Image:       imageDocument{URL: l.Image.URL, Filename: l.Image.Filename},
		Price:       l.Price,
		Location:    l.Location,
		Country:     l.Country,
		Reviews:     reviews,
		Owner:       owner,
		Geometry:    geometryDocument{Type: geometry.Type, Coordinates: []float64{geometry.Coordinates[0], geometry.Coordinates[1]}},
		Type:        string(l.Type),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}, nil
}

func (d *listingDocument) toDomainListing() *domain.Listing {
	geometry := domain.UnknownPoint()
	if len(d.Geometry.Coordinates) >= 2 {
		geometry.Coordinates = [2]float64{d.Geometry.Coordinates[0], d.Geometry.Coordinates[1]}
	}
	if d.Geometry.Type != "" {
		geometry.Type = d.Geometry.Type
	}

	reviewIDs := make([]string, 0, len(d.Reviews))
	for _, id := range d.Reviews {
		reviewIDs = append(reviewIDs, id.Hex())
	}

	var owner string
	if !d.Owner.IsZero() {
		owner = d.Owner.Hex()
	}

	return &domain.Listing{
		ID:          d.ID.Hex(),
		OwnerID:     owner,
		Title:       d.Title,
		Description: d.Description,
		Location:    d.Location,
		Country:     d.Country,
		Price:       d.Price,
		Type:        domain.Category(d.Type),
		Image:       domain.Image{URL: d.Image.URL, Filename: d.Image.Filename},
		Geometry:    geometry,
		ReviewIDs:   reviewIDs,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	listings := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		listings = append(listings, doc.toDomainListing())
	}
	return listings
}

func (d *reviewDocument) toDomainReview() *domain.Review {
	var author string
	if !d.Author.IsZero() {
		author = d.Author.Hex()
	}
	return &domain.Review{
		ID:        d.ID.Hex(),
		Rating:    d.Rating,
		Comment:   d.Comment,
		AuthorID:  author,
		CreatedAt: d.CreatedAt,
	}
}

func (d *userDocument) toDomainUser() *domain.User {
	return &domain.User{
		ID:       d.ID.Hex(),
		Username: d.Username,
		Email:    d.Email,
	}
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("invalid object id %q: %w", id, err)
		}
		out = append(out, oid)
	}
	return out, nil
}

// validObjectIDs converts the parseable ids and reports how many were dropped.
func validObjectIDs(ids []string) ([]primitive.ObjectID, int) {
	out := make([]primitive.ObjectID, 0, len(ids))
	dropped := 0
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			dropped++
			continue
		}
		out = append(out, oid)
	}
	return out, dropped
}
