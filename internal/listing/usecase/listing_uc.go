package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("marketplace-service/listing-usecase")

// CreateListingInput carries the raw fields of a new listing. Image takes
// precedence over ImageURL; ImageURL must come from PresignUpload.
type CreateListingInput struct {
	OwnerContact string
	Title        string
	Description  string
	Category     string
	Price        string
	Condition    string
	ContactLink  string
	Image        *domain.ImageUpload
	ImageURL     string
}

type ContactSellerInput struct {
	ListingID string
	BuyerName string
	Message   string
}

// Deps groups the collaborators of ListingUsecase. Cache, Publisher and Mailer
// may be nil.
type Deps struct {
	Repo      domain.ListingRepository
	Cache     domain.ListingCache
	Claims    ClaimExtractor
	Gate      *ModerationGate
	Uploader  *UploadCoordinator
	Policy    AuthorizationPolicy
	Mailer    domain.EmailRelay
	Publisher domain.EventPublisher
}

type ListingUsecase struct {
	repo      domain.ListingRepository
	cache     domain.ListingCache
	claims    ClaimExtractor
	validator ListingValidator
	gate      *ModerationGate
	uploader  *UploadCoordinator
	policy    AuthorizationPolicy
	mailer    domain.EmailRelay
	publisher domain.EventPublisher
	logger    *logger.Logger
}

func NewListingUsecase(deps Deps, log *logger.Logger) *ListingUsecase {
	claims := deps.Claims
	if claims == nil {
		claims = UnverifiedClaimExtractor{}
	}
	return &ListingUsecase{
		repo:      deps.Repo,
		cache:     deps.Cache,
		claims:    claims,
		gate:      deps.Gate,
		uploader:  deps.Uploader,
		policy:    deps.Policy,
		mailer:    deps.Mailer,
		publisher: deps.Publisher,
		logger:    log.Named("ListingUsecase"),
	}
}

// Create runs validation, text moderation, the optional image upload and only
// then persists the listing. Any failed step leaves nothing written.
func (uc *ListingUsecase) Create(ctx context.Context, token string, in CreateListingInput) (_ *domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Create")
	defer func() { endSpan(span, err) }()

	actor := uc.claims.Extract(token)
	span.SetAttributes(attribute.String("actor.id", actor.SubjectID), attribute.String("listing.category", in.Category))

	if err := uc.validator.Validate(in.OwnerContact, in.ContactLink); err != nil {
		uc.logger.Warn("ListingUsecase.Create: validation failed", zap.Error(err))
		return nil, err
	}

	if err := uc.gate.CheckText(ctx, in.Title, in.Description); err != nil {
		return nil, err
	}

	imageURL, err := uc.resolveImage(ctx, in)
	if err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		OwnerID:      actor.SubjectID,
		OwnerContact: in.OwnerContact,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		ImageURL:     imageURL,
		Price:        in.Price,
		Condition:    in.Condition,
		ContactLink:  strings.TrimSpace(in.ContactLink),
	}

	saved, err := uc.repo.Save(ctx, listing)
	if err != nil {
		uc.logger.Error("ListingUsecase.Create: failed to save listing", zap.String("owner_id", actor.SubjectID), zap.Error(err))
		return nil, fmt.Errorf("%w: save listing: %v", domain.ErrUpstream, err)
	}

	uc.logger.Info("ListingUsecase.Create: listing created",
		zap.String("listing_id", saved.ID), zap.String("owner_id", saved.OwnerID), zap.Bool("has_image", saved.ImageURL != ""))

	uc.cacheListing(ctx, saved)
	uc.publish(ctx, domain.SubjectListingCreated, domain.ListingCreatedEvent{
		ListingID: saved.ID,
		OwnerID:   saved.OwnerID,
		Category:  saved.Category,
	})
	return saved, nil
}

func (uc *ListingUsecase) resolveImage(ctx context.Context, in CreateListingInput) (string, error) {
	if !in.Image.Empty() {
		return uc.uploader.Upload(ctx, in.Image)
	}
	return uc.uploader.AttachUploaded(ctx, strings.TrimSpace(in.ImageURL))
}

// Delete removes a listing on behalf of its owner or the administrator.
func (uc *ListingUsecase) Delete(ctx context.Context, token, id string) (err error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.Delete", trace.WithAttributes(attribute.String("listing.id", id)))
	defer func() { endSpan(span, err) }()

	if token == "" {
		return fmt.Errorf("%w: no token provided", domain.ErrUnauthenticated)
	}
	actor := uc.claims.Extract(token)
	if !actor.Authenticated() {
		return fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	listing, err := uc.findByID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
		return err
	}

	if err := uc.policy.CanDelete(actor, listing); err != nil {
		uc.logger.Warn("ListingUsecase.Delete: rejected",
			zap.String("listing_id", id), zap.String("actor_id", actor.SubjectID), zap.Error(err))
		return fmt.Errorf("delete listing %s: %w", id, err)
	}

	if err := uc.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return fmt.Errorf("delete listing %s: %w", id, domain.ErrListingNotFound)
		}
		uc.logger.Error("ListingUsecase.Delete: failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("%w: delete listing: %v", domain.ErrUpstream, err)
	}

	uc.logger.Info("ListingUsecase.Delete: listing deleted",
		zap.String("listing_id", id), zap.String("actor_id", actor.SubjectID), zap.Bool("as_admin", uc.policy.IsAdmin(actor.Email)))

	if uc.cache != nil {
		if err := uc.cache.DeleteListing(ctx, id); err != nil {
			uc.logger.Warn("ListingUsecase.Delete: failed to evict cached listing", zap.String("listing_id", id), zap.Error(err))
		}
	}
	uc.publish(ctx, domain.SubjectListingDeleted, domain.ListingDeletedEvent{ListingID: id, ActorID: actor.SubjectID})
	return nil
}

// ContactSeller relays a buyer's message to the seller's stored address.
// The buyer address always comes from the credential.
func (uc *ListingUsecase) ContactSeller(ctx context.Context, token string, in ContactSellerInput) (err error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ContactSeller", trace.WithAttributes(attribute.String("listing.id", in.ListingID)))
	defer func() { endSpan(span, err) }()

	if token == "" {
		return fmt.Errorf("%w: no token provided", domain.ErrUnauthenticated)
	}
	actor := uc.claims.Extract(token)
	if actor.Email == "" {
		return fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if strings.TrimSpace(in.Message) == "" {
		return fmt.Errorf("%w: message cannot be empty", domain.ErrValidationFailed)
	}

	listing, err := uc.findByID(ctx, in.ListingID)
	if err != nil {
		return err
	}

	// records written before contact validation existed may hold anything
	if !emailPattern.MatchString(listing.OwnerContact) {
		uc.logger.Warn("ListingUsecase.ContactSeller: stored seller contact is not an email",
			zap.String("listing_id", listing.ID), zap.String("owner_contact", listing.OwnerContact))
		return fmt.Errorf("%w: seller contact %q on listing %s is not a valid email address",
			domain.ErrValidationFailed, listing.OwnerContact, listing.ID)
	}

	if uc.mailer == nil {
		return fmt.Errorf("%w: email relay is not configured", domain.ErrUpstream)
	}

	email := composeContactEmail(listing, actor.Email, in.BuyerName, in.Message)
	if err := uc.mailer.Send(ctx, email); err != nil {
		uc.logger.Error("ListingUsecase.ContactSeller: email relay failed", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("%w: send email: %v", domain.ErrUpstream, err)
	}

	uc.logger.Info("ListingUsecase.ContactSeller: message relayed", zap.String("listing_id", listing.ID))
	uc.publish(ctx, domain.SubjectListingContacted, domain.ListingContactedEvent{ListingID: listing.ID, BuyerEmail: actor.Email})
	return nil
}

// PresignUpload issues a direct-upload authorization.
func (uc *ListingUsecase) PresignUpload(ctx context.Context) (_ *domain.UploadAuthorization, err error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.PresignUpload")
	defer func() { endSpan(span, err) }()

	return uc.uploader.PresignUpload(ctx)
}

// GetByID reads through the cache.
func (uc *ListingUsecase) GetByID(ctx context.Context, id string) (_ *domain.Listing, err error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetByID", trace.WithAttributes(attribute.String("listing.id", id)))
	defer func() { endSpan(span, err) }()

	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("ListingUsecase.GetByID: cache read failed", zap.String("listing_id", id), zap.Error(err))
		} else if cached != nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	listing, err := uc.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cacheLoaded(ctx, listing)
	return listing, nil
}

// ListAll, ListByCategory and ListByTitle answer with an empty result when
// the repository is unavailable.
func (uc *ListingUsecase) ListAll(ctx context.Context) []*domain.Listing {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ListAll")
	defer span.End()

	listings, err := uc.repo.FindAll(ctx)
	return uc.degrade(span, "ListAll", listings, err)
}

func (uc *ListingUsecase) ListByCategory(ctx context.Context, category string) []*domain.Listing {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ListByCategory", trace.WithAttributes(attribute.String("listing.category", category)))
	defer span.End()

	listings, err := uc.repo.FindByCategory(ctx, category)
	return uc.degrade(span, "ListByCategory", listings, err)
}

func (uc *ListingUsecase) ListByTitle(ctx context.Context, title string) []*domain.Listing {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ListByTitle")
	defer span.End()

	listings, err := uc.repo.FindByTitle(ctx, title)
	return uc.degrade(span, "ListByTitle", listings, err)
}

func (uc *ListingUsecase) degrade(span trace.Span, op string, listings []*domain.Listing, err error) []*domain.Listing {
	if err != nil {
		uc.logger.Warn("ListingUsecase."+op+": repository unavailable, returning empty result", zap.Error(err))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("degraded", true))
		return []*domain.Listing{}
	}
	if listings == nil {
		return []*domain.Listing{}
	}
	span.SetAttributes(attribute.Int("listing.count", len(listings)))
	return listings
}

func (uc *ListingUsecase) findByID(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrListingNotFound), err == nil && listing == nil:
		return nil, fmt.Errorf("listing %s: %w", id, domain.ErrListingNotFound)
	case err != nil:
		uc.logger.Error("ListingUsecase: failed to load listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: load listing: %v", domain.ErrUpstream, err)
	}
	return listing, nil
}

func (uc *ListingUsecase) cacheListing(ctx context.Context, listing *domain.Listing) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetListing(ctx, listing); err != nil {
		uc.logger.Warn("ListingUsecase: failed to cache listing", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

// cacheLoaded caches a listing read from the repository, then confirms it
// still exists. A Delete that lands between the read and the cache write
// has already run its eviction, so the entry is evicted here instead.
func (uc *ListingUsecase) cacheLoaded(ctx context.Context, listing *domain.Listing) {
	if uc.cache == nil {
		return
	}
	uc.cacheListing(ctx, listing)

	current, err := uc.repo.FindByID(ctx, listing.ID)
	if err == nil && current != nil {
		return
	}
	if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
		uc.logger.Warn("ListingUsecase: could not confirm cached listing", zap.String("listing_id", listing.ID), zap.Error(err))
	}
	if err := uc.cache.DeleteListing(ctx, listing.ID); err != nil {
		uc.logger.Warn("ListingUsecase: failed to evict stale cached listing", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *ListingUsecase) publish(ctx context.Context, subject string, event interface{}) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, subject, event); err != nil {
		uc.logger.Warn("ListingUsecase: failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.KindOf(err))
	}
	span.End()
}
