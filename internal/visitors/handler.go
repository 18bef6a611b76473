package visitors

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/httpx"
)

// Handler manages visitor pass endpoints.
type Handler struct {
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers visitor routes. Check-in and check-out are gate
// desk operations, so the view permission covers them.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(authz.PermViewVisitors, authz.PermManageVisitors))
		r.Get("/", h.list)
		r.Post("/walk-in", h.walkIn)
		r.Post("/check-in", h.checkIn)
		r.Post("/check-out", h.checkOut)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(authz.PermManageVisitors))
		r.Post("/", h.issue)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	passes, err := h.service.ListPasses(r.Context(), societyID, r.URL.Query().Get("status"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if passes == nil {
		passes = []Pass{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"passes": passes})
}

type issueRequest struct {
	SocietyID    int64  `json:"society_id" validate:"required,gt=0"`
	VisitorName  string `json:"visitor_name" validate:"required"`
	VisitorPhone string `json:"visitor_phone"`
	HostUnit     string `json:"host_unit" validate:"required"`
	Purpose      string `json:"purpose"`
	ValidFrom    string `json:"valid_from"`
	ValidUntil   string `json:"valid_until"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	pass := Pass{
		SocietyID:    req.SocietyID,
		VisitorName:  req.VisitorName,
		VisitorPhone: req.VisitorPhone,
		HostUnit:     req.HostUnit,
		Purpose:      req.Purpose,
	}
	var ok bool
	if pass.ValidFrom, ok = parseOptionalTime(w, req.ValidFrom, "valid_from"); !ok {
		return
	}
	if pass.ValidUntil, ok = parseOptionalTime(w, req.ValidUntil, "valid_until"); !ok {
		return
	}
	created, err := h.service.IssuePass(r.Context(), pass)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

type walkInRequest struct {
	SocietyID    int64  `json:"society_id" validate:"required,gt=0"`
	VisitorName  string `json:"visitor_name" validate:"required"`
	VisitorPhone string `json:"visitor_phone"`
	HostUnit     string `json:"host_unit" validate:"required"`
	Purpose      string `json:"purpose"`
}

func (h *Handler) walkIn(w http.ResponseWriter, r *http.Request) {
	var req walkInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	pass, err := h.service.WalkIn(r.Context(), Pass{
		SocietyID:    req.SocietyID,
		VisitorName:  req.VisitorName,
		VisitorPhone: req.VisitorPhone,
		HostUnit:     req.HostUnit,
		Purpose:      req.Purpose,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pass)
}

type codeRequest struct {
	SocietyID int64  `json:"society_id" validate:"required,gt=0"`
	Code      string `json:"code" validate:"required"`
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckIn)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckOut)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, societyID int64, code string) (Pass, error)) {
	var req codeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	pass, err := fn(r.Context(), req.SocietyID, req.Code)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pass)
}

func parseOptionalTime(w http.ResponseWriter, raw, field string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", field+" must be RFC3339")
		return time.Time{}, false
	}
	return t, true
}

func querySocietyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("society_id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "society_id query parameter required")
		return 0, false
	}
	return id, true
}
