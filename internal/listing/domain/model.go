package domain

import "time"

// PointType is the GeoJSON type tag stored with every geometry.
const PointType = "Point"

// Point is a GeoJSON point. Coordinates are [longitude, latitude].
type Point struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// UnknownPoint is the [0,0] sentinel used when a location could not be geocoded.
func UnknownPoint() Point {
	return Point{Type: PointType, Coordinates: [2]float64{0, 0}}
}

// IsUnknown reports whether p is the unresolved sentinel.
func (p Point) IsUnknown() bool {
	return p.Coordinates == [2]float64{0, 0}
}

// Image is the metadata returned by the image store for an uploaded file.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// IsZero reports whether no image was supplied.
func (i Image) IsZero() bool {
	return i.URL == "" && i.Filename == ""
}

type Listing struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Country     string    `json:"country"`
	Price       float64   `json:"price"`
	Type        Category  `json:"type"`
	Image       Image     `json:"image"`
	Geometry    Point     `json:"geometry"`
	ReviewIDs   []string  `json:"reviews"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a deep copy, so a snapshot survives mutation of the copy.
func (l *Listing) Clone() *Listing {
	if l == nil {
		return nil
	}
	c := *l
	if l.ReviewIDs != nil {
		c.ReviewIDs = append([]string(nil), l.ReviewIDs...)
	}
	return &c
}

type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// ReviewWithAuthor is a review with its author resolved. Author is nil when
// the user record no longer exists.
type ReviewWithAuthor struct {
	Review
	Author *User `json:"author"`
}

// ListingDetails is the listing as shown on its detail page.
type ListingDetails struct {
	Listing *Listing           `json:"listing"`
	Owner   *User              `json:"owner"`
	Reviews []ReviewWithAuthor `json:"reviews"`
}

// ListingInput holds validated fields for a new listing.
type ListingInput struct {
	Title       string
	Description string
	Location    string
	Country     string
	Price       float64
	Type        Category
}

// ListingPatch is a field overwrite set. Nil fields are left untouched.
type ListingPatch struct {
	Title       *string
	Description *string
	Location    *string
	Country     *string
	Price       *float64
	Type        *Category
}

// Apply overwrites the non-nil fields of p onto l.
func (p ListingPatch) Apply(l *Listing) {
	if p.Title != nil {
		l.Title = *p.Title
	}
	if p.Description != nil {
		l.Description = *p.Description
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Country != nil {
		l.Country = *p.Country
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	if p.Type != nil {
		l.Type = *p.Type
	}
}

// Feature is one forward-geocoding candidate.
type Feature struct {
	PlaceName string
	Geometry  Point
}
