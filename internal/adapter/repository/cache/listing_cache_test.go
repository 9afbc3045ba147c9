package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListingCache_UnreachableHost(t *testing.T) {
	_, err := NewListingCache(context.Background(), Options{Addr: "localhost:19999"}, logger.NewNop())
	assert.Error(t, err)
}

// Integration tests run only when REDIS_ADDRESS points at a live server.
func TestListingCache_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set; skipping integration tests")
	}
	ctx := context.Background()

	c, err := NewListingCache(ctx, Options{Addr: addr, TTL: time.Minute}, logger.NewNop())
	require.NoError(t, err)
	defer c.Close() //nolint:errcheck

	listing := &domain.Listing{ID: "cache-test-1", Title: "Lamp", Price: "5", CreatedAt: time.Now().UTC().Truncate(time.Second)}

	require.NoError(t, c.SetListing(ctx, listing))
	got, err := c.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.Title, got.Title)
	assert.True(t, listing.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.DeleteListing(ctx, listing.ID))
	miss, err := c.GetListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Nil(t, miss)
}
