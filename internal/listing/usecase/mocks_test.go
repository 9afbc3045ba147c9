package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Listing, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByTitle(ctx context.Context, title string) ([]*domain.Listing, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) Save(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	args := m.Called(ctx, listing)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Listing) *domain.Listing); ok {
		return fn(ctx, listing), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockListingCache struct{ mock.Mock }

func (m *MockListingCache) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingCache) SetListing(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingCache) DeleteListing(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockObjectStore struct{ mock.Mock }

func (m *MockObjectStore) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	args := m.Called(ctx, bucket, key, data, contentType)
	return args.Error(0)
}
func (m *MockObjectStore) PresignedPut(ctx context.Context, bucket, key string, expiry time.Duration, contentType string) (string, error) {
	args := m.Called(ctx, bucket, key, expiry, contentType)
	return args.String(0), args.Error(1)
}
func (m *MockObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockObjectStore) Remove(ctx context.Context, bucket, key string) error {
	args := m.Called(ctx, bucket, key)
	return args.Error(0)
}

type MockModerationOracle struct{ mock.Mock }

func (m *MockModerationOracle) CheckText(ctx context.Context, text string) (bool, error) {
	args := m.Called(ctx, text)
	return args.Bool(0), args.Error(1)
}
func (m *MockModerationOracle) CheckImage(ctx context.Context, data []byte) (bool, error) {
	args := m.Called(ctx, data)
	return args.Bool(0), args.Error(1)
}

type MockEmailRelay struct{ mock.Mock }

func (m *MockEmailRelay) Send(ctx context.Context, email domain.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

// unsignedToken builds header.payload.signature with an arbitrary payload.
func unsignedToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".c2lnbmF0dXJl"
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}
