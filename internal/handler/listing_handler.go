package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/middleware"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("listing-service/handler")

// Views rendered by the listing handlers.
const (
	ViewIndex = "listings/index"
	ViewNew   = "listings/new"
	ViewShow  = "listings/show"
	ViewEdit  = "listings/edit"
)

// Notices shown to the user after a listing operation.
const (
	NoticeCreated          = "New Listing Created!!!"
	NoticeUpdated          = "Listing Updated!"
	NoticeDeleted          = "Listing Deleted!"
	NoticeNotFound         = "Listing you requested for does not exist!"
	NoticeEmptySearch      = "Please enter a search query!"
	NoticeNoSearchResults  = "No results found!"
	NoticeInvalidFilter    = "Invalid category filter!"
	NoticeNoCategoryResult = "No listings found in this category!"
)

const (
	listingsPath       = "/listings"
	thumbnailSegment   = "/upload"
	thumbnailTransform = "/upload/w_250"
)

// ListingService is the listing lifecycle as seen by the HTTP layer.
type ListingService interface {
	ListListings(ctx context.Context) ([]*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.ListingDetails, error)
	GetListingForEdit(ctx context.Context, id string) (*domain.Listing, error)
	CreateListing(ctx context.Context, ownerID string, in domain.ListingInput, image domain.Image) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id string, patch domain.ListingPatch, image *domain.Image) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	SearchListings(ctx context.Context, query string) ([]*domain.Listing, error)
	FilterListings(ctx context.Context, segment string) ([]*domain.Listing, error)
}

type indexView struct {
	Listings []*domain.Listing `json:"listings"`
}

type newView struct {
	Categories []string `json:"categories"`
}

type showView struct {
	*domain.ListingDetails
	MapToken string `json:"map_token"`
}

type editView struct {
	Listing          *domain.Listing `json:"listing"`
	OriginalImageURL string          `json:"original_image_url"`
	Categories       []string        `json:"categories"`
}

type ListingHandler struct {
	service   ListingService
	storage   domain.Storage
	responder *Responder
	mapToken  string
	logger    *logger.Logger
}

func NewListingHandler(service ListingService, storage domain.Storage, responder *Responder, mapToken string, appLogger *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service:   service,
		storage:   storage,
		responder: responder,
		mapToken:  mapToken,
		logger:    appLogger.Named("ListingHandler"),
	}
}

// Index renders every listing.
func (h *ListingHandler) Index(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.ListListings(r.Context())
	if err != nil {
		h.responder.ServerError(w, r, err)
		return
	}
	h.renderIndex(w, r, listings)
}

// New renders the creation form.
func (h *ListingHandler) New(w http.ResponseWriter, r *http.Request) {
	h.responder.Render(w, r, ViewNew, newView{Categories: domain.CategoryNames()})
}

// Create validates the form, stores the image and creates the listing for
// the authenticated user.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ListingHandler.Create")
	defer span.End()

	if !h.parseForm(w, r) {
		return
	}
	in, err := DecodeListingInput(r)
	if err != nil {
		h.rejectInvalid(w, r, err)
		return
	}

	image, err := uploadImage(ctx, r, h.storage)
	if err != nil {
		h.rejectInvalid(w, r, err)
		return
	}
	var img domain.Image
	if image != nil {
		img = *image
	}

	ownerID, _ := middleware.UserIDFromContext(ctx)
	listing, err := h.service.CreateListing(ctx, ownerID, in, img)
	if err != nil {
		span.RecordError(err)
		h.discardImage(ctx, image)
		h.responder.ServerError(w, r, err)
		return
	}
	span.SetAttributes(attribute.String("listing_id", listing.ID))

	h.responder.RedirectWithFlash(w, r, domain.FlashSuccess, NoticeCreated, listingsPath)
}

// Show renders one listing with its owner and reviews.
func (h *ListingHandler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "ListingHandler.Show")
	defer span.End()
	span.SetAttributes(attribute.String("listing_id", id))

	details, err := h.service.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeNotFound, listingsPath)
			return
		}
		span.RecordError(err)
		h.responder.ServerError(w, r, err)
		return
	}

	h.responder.Render(w, r, ViewShow, showView{ListingDetails: details, MapToken: h.mapToken})
}

// Edit renders the edit form with a thumbnail of the current image.
func (h *ListingHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	listing, err := h.service.GetListingForEdit(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeNotFound, listingsPath)
			return
		}
		h.responder.ServerError(w, r, err)
		return
	}

	h.responder.Render(w, r, ViewEdit, editView{
		Listing:          listing,
		OriginalImageURL: ThumbnailURL(listing.Image.URL),
		Categories:       domain.CategoryNames(),
	})
}

// Update applies the submitted fields and optional new image.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "ListingHandler.Update")
	defer span.End()
	span.SetAttributes(attribute.String("listing_id", id))

	if !h.parseForm(w, r) {
		return
	}
	patch, err := DecodeListingPatch(r)
	if err != nil {
		h.rejectInvalid(w, r, err)
		return
	}

	image, err := uploadImage(ctx, r, h.storage)
	if err != nil {
		h.rejectInvalid(w, r, err)
		return
	}

	if _, err := h.service.UpdateListing(ctx, id, patch, image); err != nil {
		h.discardImage(ctx, image)
		if errors.Is(err, domain.ErrListingNotFound) {
			h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeNotFound, listingsPath)
			return
		}
		span.RecordError(err)
		h.responder.ServerError(w, r, err)
		return
	}

	h.responder.RedirectWithFlash(w, r, domain.FlashSuccess, NoticeUpdated, listingsPath+"/"+id)
}

// Delete removes the listing and its reviews. A missing listing redirects
// without a notice.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span := tracer.Start(r.Context(), "ListingHandler.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("listing_id", id))

	if err := h.service.DeleteListing(ctx, id); err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			h.responder.Redirect(w, r, listingsPath)
			return
		}
		span.RecordError(err)
		h.responder.ServerError(w, r, err)
		return
	}

	h.responder.RedirectWithFlash(w, r, domain.FlashSuccess, NoticeDeleted, listingsPath)
}

// Search lists the listings whose type equals the search term.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.SearchListings(r.Context(), r.URL.Query().Get("search"))
	switch {
	case errors.Is(err, domain.ErrEmptySearchQuery):
		h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeEmptySearch, listingsPath)
	case errors.Is(err, domain.ErrNoResults):
		h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeNoSearchResults, listingsPath)
	case err != nil:
		h.responder.ServerError(w, r, err)
	default:
		h.renderIndex(w, r, listings)
	}
}

// Filter lists the listings of the category in the URL.
func (h *ListingHandler) Filter(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.FilterListings(r.Context(), chi.URLParam(r, "category"))
	switch {
	case errors.Is(err, domain.ErrInvalidFilter):
		h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeInvalidFilter, listingsPath)
	case errors.Is(err, domain.ErrNoResults):
		h.responder.RedirectWithFlash(w, r, domain.FlashError, NoticeNoCategoryResult, listingsPath)
	case err != nil:
		h.responder.ServerError(w, r, err)
	default:
		h.renderIndex(w, r, listings)
	}
}

// ThumbnailURL rewrites an image URL to its 250px wide variant.
func ThumbnailURL(imageURL string) string {
	return strings.Replace(imageURL, thumbnailSegment, thumbnailTransform, 1)
}

func (h *ListingHandler) renderIndex(w http.ResponseWriter, r *http.Request, listings []*domain.Listing) {
	if listings == nil {
		listings = []*domain.Listing{}
	}
	h.responder.Render(w, r, ViewIndex, indexView{Listings: listings})
}

func (h *ListingHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := parseListingForm(w, r); err != nil {
		h.logger.Warn("Rejected listing form", zap.String("path", r.URL.Path), zap.Error(err))
		if errors.Is(err, errFormTooLarge) {
			h.responder.BadRequest(w, "Image must be smaller than 10MB")
			return false
		}
		h.responder.BadRequest(w, "Invalid form data")
		return false
	}
	return true
}

// discardImage removes an uploaded image that no listing ended up
// referencing. Failures are only logged.
func (h *ListingHandler) discardImage(ctx context.Context, image *domain.Image) {
	if image == nil || image.IsZero() || h.storage == nil {
		return
	}
	if err := h.storage.Remove(context.WithoutCancel(ctx), image.Filename); err != nil {
		h.logger.Warn("Failed to remove orphaned image", zap.String("filename", image.Filename), zap.Error(err))
	}
}

// rejectInvalid answers 400 for validation failures and 500 otherwise.
func (h *ListingHandler) rejectInvalid(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		h.responder.ValidationFailed(w, verr)
		return
	}
	h.responder.ServerError(w, r, err)
}
