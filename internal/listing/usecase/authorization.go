package usecase

import (
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
)

// AuthorizationPolicy decides who may delete a listing: its owner, or the
// single configured administrator.
type AuthorizationPolicy struct {
	adminEmail string
}

func NewAuthorizationPolicy(adminEmail string) AuthorizationPolicy {
	return AuthorizationPolicy{adminEmail: strings.TrimSpace(adminEmail)}
}

// CanDelete reports ErrListingNotFound for a nil listing before looking at
// the actor, and ErrForbidden when neither admission rule holds.
func (p AuthorizationPolicy) CanDelete(actor domain.ActorClaims, listing *domain.Listing) error {
	if listing == nil {
		return domain.ErrListingNotFound
	}
	if p.IsAdmin(actor.Email) {
		return nil
	}
	// ids are opaque tokens and compare case-sensitively
	if listing.OwnerID != "" && listing.OwnerID == actor.SubjectID {
		return nil
	}
	return domain.ErrForbidden
}

func (p AuthorizationPolicy) IsAdmin(email string) bool {
	return p.adminEmail != "" && email != "" && strings.EqualFold(email, p.adminEmail)
}
