package mongodb

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument keeps the field names of the existing listings collection.
// _id is an ObjectID for new records but may be a plain string for records
// seeded before ids were generated by the database.
type listingDocument struct {
	ID           interface{} `bson:"_id,omitempty"`
	OwnerID      string      `bson:"userId,omitempty"`
	OwnerContact string      `bson:"userName"`
	Title        string      `bson:"title"`
	Description  string      `bson:"description"`
	Category     string      `bson:"category"`
	ImageURL     string      `bson:"imageUrl,omitempty"`
	Price        string      `bson:"price"`
	Condition    string      `bson:"condition"`
	ContactLink  string      `bson:"groupMeLink"`
	CreatedAt    time.Time   `bson:"createdAt,omitempty"`
}

func toListingDocument(l *domain.Listing) *listingDocument {
	return &listingDocument{
		ID:           documentID(l.ID),
		OwnerID:      l.OwnerID,
		OwnerContact: l.OwnerContact,
		Title:        l.Title,
		Description:  l.Description,
		Category:     l.Category,
		ImageURL:     l.ImageURL,
		Price:        l.Price,
		Condition:    l.Condition,
		ContactLink:  l.ContactLink,
		CreatedAt:    l.CreatedAt,
	}
}

func (d *listingDocument) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:           idString(d.ID),
		OwnerID:      d.OwnerID,
		OwnerContact: d.OwnerContact,
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		ImageURL:     d.ImageURL,
		Price:        d.Price,
		Condition:    d.Condition,
		ContactLink:  d.ContactLink,
		CreatedAt:    d.CreatedAt,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toDomain())
	}
	return out
}

// documentID maps an API id to the stored _id value. Empty means "not assigned".
func documentID(id string) interface{} {
	if id == "" {
		return nil
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// idFilter matches a listing whose _id was stored either as an ObjectID or as
// the raw string.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}
