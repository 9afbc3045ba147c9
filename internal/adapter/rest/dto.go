package rest

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/usecase"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// createListingRequest accepts both current and legacy field names
// (userName, groupMeLink, imgUrl).
type createListingRequest struct {
	OwnerContact string `json:"ownerContact" validate:"max=254"`
	UserName     string `json:"userName" validate:"max=254"`
	Title        string `json:"title" validate:"max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Category     string `json:"category" validate:"max=100"`
	Price        string `json:"price" validate:"max=64"`
	Condition    string `json:"condition" validate:"max=100"`
	ContactLink  string `json:"contactLink" validate:"max=2048"`
	GroupMeLink  string `json:"groupMeLink" validate:"max=2048"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url,max=2048"`
	ImgURL       string `json:"imgUrl" validate:"omitempty,url,max=2048"`
}

func (r createListingRequest) toInput(image *domain.ImageUpload) usecase.CreateListingInput {
	return usecase.CreateListingInput{
		OwnerContact: firstNonEmpty(r.OwnerContact, r.UserName),
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Price:        r.Price,
		Condition:    r.Condition,
		ContactLink:  firstNonEmpty(r.ContactLink, r.GroupMeLink),
		Image:        image,
		ImageURL:     firstNonEmpty(r.ImageURL, r.ImgURL),
	}
}

type contactSellerRequest struct {
	BuyerName string `json:"buyerName" validate:"max=200"`
	Message   string `json:"message" validate:"max=5000"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// validateRequest wraps schema violations as validation failures.
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldMessage(fe))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", domain.ErrValidationFailed, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s: maximum length is %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s: must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s: failed on '%s'", fe.Field(), fe.Tag())
	}
}
