package billing

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/httpx"
	"github.com/societyhub/societyhub/internal/shared"
)

// Handler manages invoice endpoints.
type Handler struct {
	service   *Service
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(service *Service, mw authz.Middleware) *Handler {
	return &Handler{service: service, authz: mw, validator: validator.New()}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(authz.PermViewBilling, authz.PermManageBilling))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(authz.PermManageBilling))
		r.Post("/", h.issue)
		r.Post("/{id}/payments", h.recordPayment)
		r.Delete("/{id}", h.void)
	})
}

type invoiceResponse struct {
	Invoice
	AmountDisplay      string `json:"amount_display"`
	OutstandingDisplay string `json:"outstanding_display"`
}

func present(inv Invoice) invoiceResponse {
	return invoiceResponse{
		Invoice:            inv,
		AmountDisplay:      FormatAmount(inv.AmountMinor, inv.Currency),
		OutstandingDisplay: FormatAmount(inv.Outstanding(), inv.Currency),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	invoices, pagination, err := h.service.ListInvoices(r.Context(), societyID, q.Get("status"), page, perPage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, present(inv))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": out, "pagination": pagination})
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
	inv, payments, err := h.service.GetInvoice(r.Context(), societyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice": present(inv), "payments": payments})
}

type issueRequest struct {
	SocietyID   int64  `json:"society_id" validate:"required,gt=0"`
	UnitLabel   string `json:"unit_label" validate:"required"`
	Description string `json:"description" validate:"required"`
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Currency    string `json:"currency" validate:"required,len=3"`
	DueDate     string `json:"due_date" validate:"required"`
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
	due, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "due_date must be YYYY-MM-DD")
		return
	}
	inv, err := h.service.Issue(r.Context(), shared.CurrentUserID(r.Context()), Invoice{
		SocietyID:   req.SocietyID,
		UnitLabel:   req.UnitLabel,
		Description: req.Description,
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		DueDate:     due,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, present(inv))
}

type paymentRequest struct {
	SocietyID   int64  `json:"society_id" validate:"required,gt=0"`
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Method      string `json:"method" validate:"required"`
	Reference   string `json:"reference"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.RecordPayment(r.Context(), shared.CurrentUserID(r.Context()), req.SocietyID, Payment{
		InvoiceID:   id,
		AmountMinor: req.AmountMinor,
		Method:      req.Method,
		Reference:   req.Reference,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, present(inv))
}

func (h *Handler) void(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Void(r.Context(), shared.CurrentUserID(r.Context()), societyID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
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
