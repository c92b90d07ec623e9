package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/auth"
)

type authService interface {
	Register(ctx context.Context, input auth.RegisterInput) (domain.AuthResult, error)
	LoginWithPassword(ctx context.Context, input auth.LoginPasswordInput) (domain.AuthResult, error)
	Logout(ctx context.Context) error
}

// AuthHandler serves auth REST endpoints.
type AuthHandler struct {
	svc      authService
	validate *validator.Validate
	log      *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc authService, validate *validator.Validate, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, validate: validate, log: logger.With("handler", "auth")}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	h.writeResult(w, res, http.StatusCreated)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	res, err := h.svc.LoginWithPassword(r.Context(), auth.LoginPasswordInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	h.writeResult(w, res, http.StatusOK)
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context()); err != nil {
		handleError(h.log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) writeResult(w http.ResponseWriter, res domain.AuthResult, okStatus int) {
	status := okStatus
	if !res.Success {
		status = authStatus(res)
	}
	writeJSON(w, status, toAuthResponse(res))
}
