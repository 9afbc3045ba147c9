package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

const (
	contactLinkMarker  = "groupme"
	contactLinkExample = "https://groupme.com/join_group/12345678/AbCdEf"
)

// ListingValidator checks the contact fields of a listing. The email check
// always runs before the link check.
type ListingValidator struct{}

func (ListingValidator) Validate(ownerContact, contactLink string) error {
	if err := ValidateEmail(ownerContact); err != nil {
		return err
	}
	return ValidateContactLink(contactLink)
}

// ValidateEmail rejects empty or malformed addresses, naming the value.
func ValidateEmail(email string) error {
	if email == "" || !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address %q", domain.ErrValidationFailed, email)
	}
	return nil
}

// ValidateContactLink requires a GroupMe link.
func ValidateContactLink(link string) error {
	trimmed := strings.TrimSpace(link)
	if trimmed == "" || !strings.Contains(strings.ToLower(trimmed), contactLinkMarker) {
		return fmt.Errorf("%w: invalid GroupMe link %q, expected something like %s",
			domain.ErrValidationFailed, link, contactLinkExample)
	}
	return nil
}
