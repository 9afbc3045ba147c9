package usecase

import (
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
)

const contactBodyTemplate = `Hello,

You have received a new message from a buyer interested in your listing.

Listing: %s
Buyer: %s (%s)

Message:
%s

You can reply directly to this email to contact the buyer.`

func composeContactEmail(listing *domain.Listing, buyerEmail, buyerName, message string) domain.Email {
	name := strings.TrimSpace(buyerName)
	if name == "" {
		name = "A buyer"
	}
	return domain.Email{
		To:      listing.OwnerContact,
		ReplyTo: buyerEmail,
		Subject: "New Message About Your Listing: " + listing.Title,
		Body:    fmt.Sprintf(contactBodyTemplate, listing.Title, name, buyerEmail, message),
	}
}
