package orgs

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/httpx"
)

// Handler manages organization hierarchy endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers organization routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated())
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/children", h.children)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(authz.PermManageOrganizations))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
	})
}

type orgResponse struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id,omitempty"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Code     string `json:"code,omitempty"`
	IsActive bool   `json:"is_active"`
}

func toResponse(o Organization) orgResponse {
	return orgResponse{
		ID:       o.ID,
		ParentID: o.ParentID,
		Kind:     string(o.Kind),
		Name:     o.Name,
		Code:     o.Code,
		IsActive: o.IsActive,
	}
}

func toResponses(list []Organization) []orgResponse {
	out := make([]orgResponse, 0, len(list))
	for _, o := range list {
		out = append(out, toResponse(o))
	}
	return out
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListOrganizations(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"organizations": toResponses(list)})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	org, err := h.service.GetOrganization(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(org))
}

func (h *Handler) children(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListChildren(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"organizations": toResponses(list)})
}

type orgRequest struct {
	ParentID int64  `json:"parent_id"`
	Kind     string `json:"kind" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req orgRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	org, err := h.service.CreateOrganization(r.Context(), Organization{
		ParentID: req.ParentID,
		Kind:     Kind(req.Kind),
		Name:     req.Name,
		Code:     req.Code,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(org))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req orgRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	org, err := h.service.UpdateOrganization(r.Context(), id, req.Name, req.Code, active)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(org))
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
