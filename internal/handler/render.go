package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/wanderlust/internal/listing/domain"
	"github.com/Abdurahmanit/wanderlust/internal/middleware"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.uber.org/zap"
)

const serverErrorMessage = "Something went wrong"

// Page is the body of a rendered view.
type Page struct {
	View  string       `json:"view"`
	Data  interface{}  `json:"data"`
	Flash domain.Flash `json:"flash"`
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// Responder writes views, redirects and errors. Notices are kept in the
// flash store under the request's session id and handed out on the next
// render. A nil store disables notices.
type Responder struct {
	flash  domain.FlashStore
	logger *logger.Logger
}

func NewResponder(flash domain.FlashStore, appLogger *logger.Logger) *Responder {
	return &Responder{flash: flash, logger: appLogger.Named("Responder")}
}

// Render writes the view with data and any pending notices.
func (rs *Responder) Render(w http.ResponseWriter, r *http.Request, view string, data interface{}) {
	page := Page{View: view, Data: data}
	if rs.flash != nil {
		if sid := middleware.SessionIDFromContext(r.Context()); sid != "" {
			flash, err := rs.flash.PopFlash(r.Context(), sid)
			if err != nil {
				rs.logger.Warn("Failed to read flash notices", zap.String("session_id", sid), zap.Error(err))
			} else {
				page.Flash = flash
			}
		}
	}
	rs.writeJSON(w, http.StatusOK, page)
}

// RedirectWithFlash stores a notice and answers 303 See Other.
func (rs *Responder) RedirectWithFlash(w http.ResponseWriter, r *http.Request, kind domain.FlashKind, message, location string) {
	rs.addFlash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Redirect answers 303 See Other without a notice.
func (rs *Responder) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ServerError hides err from the client behind a generic message.
func (rs *Responder) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.Error("Request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	rs.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: serverErrorMessage})
}

// ValidationFailed answers 400 with the offending fields.
func (rs *Responder) ValidationFailed(w http.ResponseWriter, verr *domain.ValidationError) {
	rs.writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Errors})
}

// BadRequest answers 400 with message.
func (rs *Responder) BadRequest(w http.ResponseWriter, message string) {
	rs.writeJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

func (rs *Responder) addFlash(r *http.Request, kind domain.FlashKind, message string) {
	if rs.flash == nil {
		return
	}
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		rs.logger.Debug("No session for flash notice", zap.String("message", message))
		return
	}
	if err := rs.flash.AddFlash(r.Context(), sid, kind, message); err != nil {
		rs.logger.Warn("Failed to store flash notice", zap.String("session_id", sid), zap.Error(err))
	}
}

func (rs *Responder) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rs.logger.Error("Failed to encode response", zap.Error(err))
	}
}
