package domain

import (
	"encoding/json"
	"time"
)

// Listing is a classified advertisement. Price is free text shown as entered.
type Listing struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId,omitempty"`
	OwnerContact string    `json:"ownerContact"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	Price        string    `json:"price"`
	Condition    string    `json:"condition"`
	ContactLink  string    `json:"contactLink"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MarshalJSON leaves createdAt out for records stored without one.
func (l Listing) MarshalJSON() ([]byte, error) {
	type plain Listing
	out := struct {
		plain
		CreatedAt *time.Time `json:"createdAt,omitempty"`
	}{plain: plain(l)}
	if !l.CreatedAt.IsZero() {
		out.CreatedAt = &l.CreatedAt
	}
	return json.Marshal(out)
}

// ActorClaims is what the service knows about the caller. Empty means absent.
type ActorClaims struct {
	SubjectID string
	Email     string
}

// Authenticated reports whether both identity fields are present.
func (c ActorClaims) Authenticated() bool {
	return c.SubjectID != "" && c.Email != ""
}

// ImageUpload is an image submitted together with a listing.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// Empty reports whether there is nothing to upload.
func (u *ImageUpload) Empty() bool {
	return u == nil || len(u.Data) == 0
}

// UploadAuthorization lets a client PUT an image directly to the object store.
type UploadAuthorization struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
}

// Email is a single plain-text message handed to the email relay.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Event subjects published after successful mutations.
const (
	SubjectListingCreated   = "listing.created"
	SubjectListingDeleted   = "listing.deleted"
	SubjectListingContacted = "listing.contacted"
)

type ListingCreatedEvent struct {
	ListingID string `json:"id"`
	OwnerID   string `json:"owner_id,omitempty"`
	Category  string `json:"category"`
}

type ListingDeletedEvent struct {
	ListingID string `json:"id"`
	ActorID   string `json:"actor_id"`
}

type ListingContactedEvent struct {
	ListingID  string `json:"id"`
	BuyerEmail string `json:"buyer_email"`
}
