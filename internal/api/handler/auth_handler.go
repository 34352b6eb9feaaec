package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Pranav-7262/mern-recipe-app/internal/api/middleware"
	"github.com/Pranav-7262/mern-recipe-app/internal/app/service"
	"github.com/Pranav-7262/mern-recipe-app/internal/common"
	"github.com/Pranav-7262/mern-recipe-app/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	metrics     *metrics.Metrics
	debug       bool
}

func NewAuthHandler(authService *service.AuthService, m *metrics.Metrics, debug bool) *AuthHandler {
	return &AuthHandler{authService: authService, metrics: m, debug: debug}
}

// RegisterRoutes mounts the auth endpoints. gate guards the routes that need
// an authenticated user.
func (h *AuthHandler) RegisterRoutes(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(gate).Get("/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	h.metrics.ObserveLogin(loginOutcome(err))
	if err != nil {
		common.RespondWithAppError(w, r, err, h.debug)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user.Public())
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrTooManyRequests):
		return "throttled"
	case errors.Is(err, common.ErrValidation):
		return "invalid_request"
	default:
		return "error"
	}
}

// decodeJSON reads the request body into dst, answering 400 on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
