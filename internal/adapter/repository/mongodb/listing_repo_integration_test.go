package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// startMongo runs a throwaway MongoDB container. The test is skipped when
// Docker is not reachable.
func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() || os.Getenv("SKIP_DOCKER_TESTS") != "" {
		t.Skip("skipping MongoDB integration test")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	pool.MaxWait = 90 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "7.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))
	var client *mongo.Client
	require.NoError(t, pool.Retry(func() error {
		var errRetry error
		client, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if errRetry != nil {
			return errRetry
		}
		return client.Ping(context.Background(), nil)
	}))
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return client.Database("marketplace_test")
}

func TestListingRepository_Integration(t *testing.T) {
	db := startMongo(t)
	ctx := context.Background()

	repo, err := NewListingRepository(db, "listings", logger.NewNop())
	require.NoError(t, err)

	saved, err := repo.Save(ctx, &domain.Listing{
		OwnerID:      "owner-1",
		OwnerContact: "a@b.com",
		Title:        "Desk lamp",
		Category:     "Furniture",
		Price:        "10",
		ContactLink:  "https://groupme.com/join_group/x",
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	fetched, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Title, fetched.Title)
	assert.Equal(t, saved.OwnerID, fetched.OwnerID)
	assert.True(t, saved.CreatedAt.Equal(fetched.CreatedAt))

	byCategory, err := repo.FindByCategory(ctx, "Furniture")
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)

	byTitle, err := repo.FindByTitle(ctx, "desk lamp")
	require.NoError(t, err)
	assert.Empty(t, byTitle, "title lookup is an exact match")

	t.Run("legacy string id", func(t *testing.T) {
		_, err := db.Collection("listings").InsertOne(ctx, bson.M{"_id": "1", "title": "Sample Title", "userName": "Sample User"})
		require.NoError(t, err)

		legacy, err := repo.FindByID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "1", legacy.ID)
		assert.Empty(t, legacy.OwnerID)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, repo.DeleteByID(ctx, "1"))
	})

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))
	assert.ErrorIs(t, repo.DeleteByID(ctx, saved.ID), domain.ErrListingNotFound)

	_, err = repo.FindByID(ctx, saved.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}
