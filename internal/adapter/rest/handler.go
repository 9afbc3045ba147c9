package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/usecase"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListingService is the use-case surface served over HTTP.
type ListingService interface {
	Create(ctx context.Context, token string, in usecase.CreateListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, token, id string) error
	ContactSeller(ctx context.Context, token string, in usecase.ContactSellerInput) error
	PresignUpload(ctx context.Context) (*domain.UploadAuthorization, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	ListAll(ctx context.Context) []*domain.Listing
	ListByCategory(ctx context.Context, category string) []*domain.Listing
	ListByTitle(ctx context.Context, title string) []*domain.Listing
}

const (
	imageFormField = "image"
	// multipart text fields on top of the image
	formOverheadBytes = 1 << 20
	maxJSONBodyBytes  = 1 << 20
)

type ListingHandler struct {
	svc           ListingService
	metrics       *metrics.MetricsManager
	maxImageBytes int64
	logger        *logger.Logger
}

func NewListingHandler(svc ListingService, m *metrics.MetricsManager, maxImageBytes int64, log *logger.Logger) *ListingHandler {
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	return &ListingHandler{svc: svc, metrics: m, maxImageBytes: maxImageBytes, logger: log.Named("ListingHandler")}
}

func (h *ListingHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListAll(r.Context()))
}

func (h *ListingHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListByCategory(r.Context(), r.URL.Query().Get("category")))
}

func (h *ListingHandler) ListByTitle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListByTitle(r.Context(), r.URL.Query().Get("title")))
}

func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	auth, err := h.svc.PresignUpload(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auth)
}

// Create accepts multipart/form-data with an optional "image" file, or JSON.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, image, err := h.decodeCreate(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	listing, err := h.svc.Create(r.Context(), bearerToken(r), req.toInput(image))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), bearerToken(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ListingsDeletedTotal.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ListingHandler) ContactSeller(w http.ResponseWriter, r *http.Request) {
	var req contactSellerRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidationFailed, err))
		return
	}
	if err := validateRequest(req); err != nil {
		writeError(w, r, err)
		return
	}

	err := h.svc.ContactSeller(r.Context(), bearerToken(r), usecase.ContactSellerInput{
		ListingID: chi.URLParam(r, "id"),
		BuyerName: req.BuyerName,
		Message:   req.Message,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ContactEmailsSentTotal.Inc()
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Email sent successfully"})
}

func (h *ListingHandler) decodeCreate(w http.ResponseWriter, r *http.Request) (createListingRequest, *domain.ImageUpload, error) {
	var req createListingRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, nil, fmt.Errorf("%w: invalid JSON body: %v", domain.ErrValidationFailed, err)
		}
		return req, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(formOverheadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return req, nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidationFailed, h.maxImageBytes)
		}
		return req, nil, fmt.Errorf("%w: invalid multipart form: %v", domain.ErrValidationFailed, err)
	}
	// r is a middleware copy, so net/http never cleans up its spooled parts.
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	form := r.MultipartForm.Value
	get := func(key string) string {
		if vs := form[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}
	req = createListingRequest{
		OwnerContact: get("ownerContact"),
		UserName:     get("userName"),
		Title:        get("title"),
		Description:  get("description"),
		Category:     get("category"),
		Price:        get("price"),
		Condition:    get("condition"),
		ContactLink:  get("contactLink"),
		GroupMeLink:  get("groupMeLink"),
		ImageURL:     get("imageUrl"),
		ImgURL:       get("imgUrl"),
	}

	file, header, err := r.FormFile(imageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, fmt.Errorf("%w: invalid image part: %v", domain.ErrValidationFailed, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
	if err != nil {
		return req, nil, fmt.Errorf("%w: read image: %v", domain.ErrValidationFailed, err)
	}
	if int64(len(data)) > h.maxImageBytes {
		return req, nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidationFailed, h.maxImageBytes)
	}
	h.logger.Debug("Create: received image", zap.String("filename", header.Filename), zap.Int("size_bytes", len(data)))
	return req, &domain.ImageUpload{Filename: header.Filename, Data: data}, nil
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
