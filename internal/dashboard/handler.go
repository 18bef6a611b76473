package dashboard

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/httpx"
)

// Handler serves the society overview.
type Handler struct {
	service *Service
	authz   authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(authz.PermViewAnalytics))
		r.Get("/summary", h.summary)
	})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	societyID, err := strconv.ParseInt(r.URL.Query().Get("society_id"), 10, 64)
	if err != nil || societyID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "society_id query parameter required")
		return
	}
	summary, err := h.service.Summary(r.Context(), societyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}
