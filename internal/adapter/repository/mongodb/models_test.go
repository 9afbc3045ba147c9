package mongodb

import (
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListingDocument_Conversion(t *testing.T) {
	oid := primitive.NewObjectID()
	listing := &domain.Listing{
		ID:           oid.Hex(),
		OwnerID:      "owner-1",
		OwnerContact: "a@b.com",
		Title:        "Lamp",
		Category:     "Furniture",
		Price:        "5",
		ContactLink:  "https://groupme.com/join_group/x",
		CreatedAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	doc := toListingDocument(listing)
	assert.Equal(t, oid, doc.ID)
	assert.Equal(t, listing, doc.toDomain())
}

func TestDocumentID_LegacyStringIDs(t *testing.T) {
	assert.Nil(t, documentID(""))
	assert.Equal(t, "1", documentID("1"))
	assert.Equal(t, "1", idString("1"))
	assert.Equal(t, "", idString(nil))

	assert.Equal(t, bson.M{"_id": "1"}, idFilter("1"))

	oid := primitive.NewObjectID()
	assert.Equal(t, bson.M{"_id": bson.M{"$in": bson.A{oid, oid.Hex()}}}, idFilter(oid.Hex()))
}

func TestListingDocument_BSONFieldNames(t *testing.T) {
	raw, err := bson.Marshal(toListingDocument(&domain.Listing{OwnerContact: "a@b.com", ContactLink: "groupme"}))
	assert.NoError(t, err)

	var m bson.M
	assert.NoError(t, bson.Unmarshal(raw, &m))
	assert.Equal(t, "a@b.com", m["userName"])
	assert.Equal(t, "groupme", m["groupMeLink"])
	assert.NotContains(t, m, "_id")
	assert.NotContains(t, m, "imageUrl")
}
