package domain

import (
	"context"
	"time"
)

// ListingRepository persists listings. FindByID and DeleteByID return
// ErrListingNotFound for unknown ids.
type ListingRepository interface {
	FindAll(ctx context.Context) ([]*Listing, error)
	FindByCategory(ctx context.Context, category string) ([]*Listing, error)
	FindByTitle(ctx context.Context, title string) ([]*Listing, error)
	FindByID(ctx context.Context, id string) (*Listing, error)
	Save(ctx context.Context, listing *Listing) (*Listing, error)
	DeleteByID(ctx context.Context, id string) error
}

// ListingCache is a best-effort read cache. A miss is (nil, nil).
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*Listing, error)
	SetListing(ctx context.Context, listing *Listing) error
	DeleteListing(ctx context.Context, id string) error
}

type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	PresignedPut(ctx context.Context, bucket, key string, expiry time.Duration, contentType string) (string, error)
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Remove(ctx context.Context, bucket, key string) error
}

// ModerationOracle answers whether content is acceptable.
type ModerationOracle interface {
	CheckText(ctx context.Context, text string) (bool, error)
	CheckImage(ctx context.Context, data []byte) (bool, error)
}

type EmailRelay interface {
	Send(ctx context.Context, email Email) error
}

type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}
