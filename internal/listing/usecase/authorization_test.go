package usecase

import (
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizationPolicy_CanDelete(t *testing.T) {
	policy := NewAuthorizationPolicy("admin@gustavus.edu")
	listing := &domain.Listing{ID: "l1", OwnerID: "owner-1"}

	tests := []struct {
		name    string
		actor   domain.ActorClaims
		listing *domain.Listing
		want    error
	}{
		{"missing listing is not found first", domain.ActorClaims{SubjectID: "owner-1", Email: "admin@gustavus.edu"}, nil, domain.ErrListingNotFound},
		{"owner regardless of email", domain.ActorClaims{SubjectID: "owner-1", Email: "someone@else.com"}, listing, nil},
		{"admin regardless of ownership", domain.ActorClaims{SubjectID: "x", Email: "ADMIN@Gustavus.edu"}, listing, nil},
		{"owner id is case-sensitive", domain.ActorClaims{SubjectID: "OWNER-1", Email: "o@x.com"}, listing, domain.ErrForbidden},
		{"stranger", domain.ActorClaims{SubjectID: "other", Email: "o@x.com"}, listing, domain.ErrForbidden},
		{"legacy listing without owner", domain.ActorClaims{SubjectID: "", Email: "o@x.com"}, &domain.Listing{ID: "1"}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CanDelete(tt.actor, tt.listing)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthorizationPolicy_NoAdminConfigured(t *testing.T) {
	policy := NewAuthorizationPolicy("")
	assert.False(t, policy.IsAdmin(""))
	assert.ErrorIs(t, policy.CanDelete(domain.ActorClaims{SubjectID: "a", Email: ""}, &domain.Listing{OwnerID: "b"}), domain.ErrForbidden)
}
