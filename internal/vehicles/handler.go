package vehicles

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/devicetoken"
	"github.com/societyhub/societyhub/internal/platform/httpx"
)

// Handler manages vehicle whitelist and gate event endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     authz.Middleware
	devices   *devicetoken.Issuer
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw authz.Middleware, devices *devicetoken.Issuer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, authz: mw, devices: devices, validator: validator.New()}
}

// MountRoutes registers vehicle routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAny(authz.PermViewVehicles, authz.PermManageVehicles))
		r.Get("/", h.list)
		r.Get("/gate-events", h.gateEvents)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequireAll(authz.PermManageVehicles))
		r.Post("/", h.whitelist)
		r.Delete("/{id}", h.remove)
	})
}

// MountGateRoutes registers the device-facing ingest endpoint. It is
// authenticated by a signed device token, not a user session.
func (h *Handler) MountGateRoutes(r chi.Router) {
	r.Post("/events", h.gateEvent)
}

type vehicleResponse struct {
	ID        int64  `json:"id"`
	SocietyID int64  `json:"society_id"`
	Plate     string `json:"plate"`
	OwnerName string `json:"owner_name"`
	Kind      string `json:"kind"`
	IsActive  bool   `json:"is_active"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	list, err := h.service.ListVehicles(r.Context(), societyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(list))
	for _, v := range list {
		out = append(out, vehicleResponse{
			ID: v.ID, SocietyID: v.SocietyID, Plate: v.Plate,
			OwnerName: v.OwnerName, Kind: v.Kind, IsActive: v.IsActive,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"vehicles": out})
}

type whitelistRequest struct {
	SocietyID int64  `json:"society_id" validate:"required,gt=0"`
	Plate     string `json:"plate" validate:"required"`
	OwnerName string `json:"owner_name" validate:"required"`
	Kind      string `json:"kind" validate:"required"`
}

func (h *Handler) whitelist(w http.ResponseWriter, r *http.Request) {
	var req whitelistRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	v, err := h.service.Whitelist(r.Context(), Vehicle{
		SocietyID: req.SocietyID,
		Plate:     req.Plate,
		OwnerName: req.OwnerName,
		Kind:      req.Kind,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, vehicleResponse{
		ID: v.ID, SocietyID: v.SocietyID, Plate: v.Plate,
		OwnerName: v.OwnerName, Kind: v.Kind, IsActive: v.IsActive,
	})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.Remove(r.Context(), societyID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) gateEvents(w http.ResponseWriter, r *http.Request) {
	societyID, ok := querySocietyID(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	events, err := h.service.RecentGateEvents(r.Context(), societyID, limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

type gateEventRequest struct {
	Plate string `json:"plate" validate:"required"`
}

func (h *Handler) gateEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.deviceClaims(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid device token")
		return
	}
	var req gateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	decision, err := h.service.CheckPlate(r.Context(), claims.SocietyID, claims.DeviceID, req.Plate)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, decision)
}

func (h *Handler) deviceClaims(r *http.Request) (*devicetoken.Claims, bool) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, false
	}
	claims, err := h.devices.Verify(strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		h.logger.Warn("gate device token rejected", slog.Any("error", err))
		return nil, false
	}
	return claims, true
}

func querySocietyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("society_id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "society_id query parameter required")
		return 0, false
	}
	return id, true
}
