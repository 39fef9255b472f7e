package domain

import (
	"context"
	"io"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindAll(ctx context.Context) ([]*Listing, error)
	FindByType(ctx context.Context, category Category) ([]*Listing, error)
}

type ReviewRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]*Review, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*User, error)
}

// Geocoder resolves free text to candidate features. An empty result is not
// an error.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, query string, limit int) ([]Feature, error)
}

// Storage stores uploaded listing images.
type Storage interface {
	Upload(ctx context.Context, originalFileName string, r io.Reader, size int64, contentType string) (Image, error)
	Remove(ctx context.Context, filename string) error
}

type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

type Notifier interface {
	SendListingCreatedEmail(toEmail, listingTitle string) error
}

// FlashStore keeps one-time notices per browser session.
type FlashStore interface {
	AddFlash(ctx context.Context, sessionID string, kind FlashKind, message string) error
	PopFlash(ctx context.Context, sessionID string) (Flash, error)
}
