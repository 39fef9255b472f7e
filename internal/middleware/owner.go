package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	notOwnerNotice        = "You are not the owner of this listing"
	listingNotFoundNotice = "Listing you requested for does not exist!"
)

// OwnerLookup resolves the owner of a listing.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, id string) (string, error)
}

// Responder is a Redirector that can also answer with a server error.
type Responder interface {
	Redirector
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}

// RequireOwner lets the request through only when the caller owns the
// listing named by the {id} URL parameter. It must run after RequireAuth.
func RequireOwner(lookup OwnerLookup, responder Responder, appLogger *logger.Logger) func(http.Handler) http.Handler {
	log := appLogger.Named("RequireOwner")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			userID, _ := UserIDFromContext(r.Context())

			ownerID, err := lookup.OwnerOf(r.Context(), id)
			switch {
			case errors.Is(err, domain.ErrListingNotFound):
				responder.RedirectWithFlash(w, r, domain.FlashError, listingNotFoundNotice, "/listings")
				return
			case err != nil:
				log.Error("Owner lookup failed", zap.String("listing_id", id), zap.Error(err))
				responder.ServerError(w, r, err)
				return
			}

			if ownerID != userID {
				log.Info("Rejected non-owner", zap.String("listing_id", id), zap.String("user_id", userID))
				responder.RedirectWithFlash(w, r, domain.FlashError, notOwnerNotice, "/listings/"+id)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
