package helpdesk

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/httpx"
	"github.com/societyhub/societyhub/internal/shared"
)

// Handler manages helpdesk endpoints.
type Handler struct {
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers helpdesk routes. Any authenticated user can
// file a ticket or comment on one; lifecycle transitions need the
// manage permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAuthenticated())
		r.Post("/", h.open)
		r.Post("/{id}/comments", h.comment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(authz.PermViewTickets, authz.PermManageTickets))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(authz.PermManageTickets))
		r.Post("/{id}/assign", h.assign)
		r.Post("/{id}/resolve", h.resolve)
		r.Post("/{id}/close", h.close)
		r.Post("/{id}/reopen", h.reopen)
	})
}

type openRequest struct {
	SocietyID   int64  `json:"society_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	t, err := h.service.Open(r.Context(), Ticket{
		SocietyID:   req.SocietyID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		ReporterID:  shared.CurrentUserID(r.Context()),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	tickets, err := h.service.ListTickets(r.Context(), societyID, q.Get("status"), q.Get("priority"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, comments, err := h.service.GetTicket(r.Context(), societyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if comments == nil {
		comments = []Comment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ticket": t, "comments": comments})
}

type commentRequest struct {
	SocietyID int64  `json:"society_id" validate:"required,gt=0"`
	Body      string `json:"body" validate:"required"`
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.service.Comment(r.Context(), req.SocietyID, Comment{
		TicketID: id,
		AuthorID: shared.CurrentUserID(r.Context()),
		Body:     req.Body,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

type assignRequest struct {
	SocietyID  int64 `json:"society_id" validate:"required,gt=0"`
	AssigneeID int64 `json:"assignee_id" validate:"required,gt=0"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	t, err := h.service.Assign(r.Context(), req.SocietyID, id, req.AssigneeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Resolve)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Close)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.service.Reopen)
}

type transitionRequest struct {
	SocietyID int64 `json:"society_id" validate:"required,gt=0"`
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, societyID, ticketID int64) (Ticket, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	t, err := fn(r.Context(), req.SocietyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}

func querySocietyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("society_id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "society_id query parameter required")
		return 0, false
	}
	return id, true
}
