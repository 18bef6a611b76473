package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/societyhub/societyhub/internal/authz"
	"github.com/societyhub/societyhub/internal/platform/httpx"
	"github.com/societyhub/societyhub/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	capabilities   *authz.Cache
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, capabilities *authz.Cache) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		capabilities:   capabilities,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type meResponse struct {
	ID           int64              `json:"id"`
	OrgID        int64              `json:"org_id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Role         string             `json:"role"`
	Capabilities authz.Capabilities `json:"capabilities"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}

	httpx.JSON(w, http.StatusOK, h.profile(user))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleMe returns the profile and capability snapshot for the session
// user. An unauthenticated session gets the anonymous snapshot with 200,
// so the frontend can render its loading/restricted state without
// special-casing an error.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.JSON(w, http.StatusOK, meResponse{Capabilities: h.capabilities.For(authz.Anonymous)})
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.JSON(w, http.StatusOK, meResponse{Capabilities: h.capabilities.For(authz.Anonymous)})
		return
	}
	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		httpx.JSON(w, http.StatusOK, meResponse{Capabilities: h.capabilities.For(authz.Anonymous)})
		return
	}
	httpx.JSON(w, http.StatusOK, h.profile(user))
}

func (h *Handler) profile(user *User) meResponse {
	principal := authz.Principal{
		Role:        authz.ParseRole(user.Role),
		Permissions: authz.ParsePermissions(user.Permissions),
	}
	return meResponse{
		ID:           user.ID,
		OrgID:        user.OrgID,
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Capabilities: h.capabilities.For(principal),
	}
}
