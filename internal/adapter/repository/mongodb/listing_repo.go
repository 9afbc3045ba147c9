package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const defaultCollectionName = "listings"

// ListingRepository implements domain.ListingRepository on MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, collectionName string, log *logger.Logger) (*ListingRepository, error) {
	if collectionName == "" {
		collectionName = defaultCollectionName
	}
	collection := db.Collection(collectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// indexes may already exist with other options; queries still work without them
		log.Warn("Failed to ensure indexes for listings collection", zap.String("collection", collectionName), zap.Error(err))
	} else {
		log.Info("Ensured indexes for listings collection", zap.String("collection", collectionName))
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}, nil
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{})
}

func (r *ListingRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{"category": category})
}

func (r *ListingRepository) FindByTitle(ctx context.Context, title string) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{"title": title})
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Find failed", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("db find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode listings", zap.Error(err))
		return nil, fmt.Errorf("db cursor decode failed: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	var doc listingDocument
	err := r.collection.FindOne(ctx, idFilter(id)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Debug("Listing not found", zap.String("listing_id", id))
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("FindOne failed", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("db findone failed: %w", err)
	}
	return doc.toDomain(), nil
}

// Save inserts listings without an id and replaces the others. The caller's
// listing is not modified; the stored version is returned.
func (r *ListingRepository) Save(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	doc := toListingDocument(listing)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}

	if doc.ID == nil {
		doc.ID = primitive.NewObjectID()
		if _, err := r.collection.InsertOne(ctx, doc); err != nil {
			r.logger.Error("InsertOne failed", zap.Error(err))
			return nil, fmt.Errorf("db insert failed: %w", err)
		}
		r.logger.Info("Listing inserted", zap.String("listing_id", idString(doc.ID)))
		return doc.toDomain(), nil
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		r.logger.Error("ReplaceOne failed", zap.String("listing_id", listing.ID), zap.Error(err))
		return nil, fmt.Errorf("db replace failed: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ListingRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, idFilter(id))
	if err != nil {
		r.logger.Error("DeleteOne failed", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("db delete failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	r.logger.Info("Listing deleted", zap.String("listing_id", id))
	return nil
}
