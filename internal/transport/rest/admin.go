package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mutationwave/entitlements/internal/domain"
	"github.com/mutationwave/entitlements/internal/service/audit"
)

type auditReader interface {
	List(ctx context.Context, f domain.AuditFilter) ([]domain.AuditLogEntry, int, error)
}

type userAdmin interface {
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	SetRole(ctx context.Context, targetID string, role domain.Role) (*domain.User, error)
	Suspend(ctx context.Context, targetID string) (*domain.User, error)
	Unsuspend(ctx context.Context, targetID string) (*domain.User, error)
}

// AdminHandler serves admin REST endpoints. Route permissions are enforced
// by the router; the user service re-checks them against the stored role.
type AdminHandler struct {
	audit    auditReader
	users    userAdmin
	validate *validator.Validate
	log      *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(audit auditReader, users userAdmin, validate *validator.Validate, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		audit:    audit,
		users:    users,
		validate: validate,
		log:      logger.With("handler", "admin"),
	}
}

// Logs returns audit entries newest first.
// GET /admin/logs?user=&action=&target=&since=&until=&limit=50&offset=0
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilterFromQuery(r)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	entries, total, err := h.audit.List(r.Context(), f)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	limit := f.Limit
	switch {
	case limit <= 0:
		limit = audit.DefaultPageSize
	case limit > audit.MaxPageSize:
		limit = audit.MaxPageSize
	}

	items := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toAuditEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, page[auditEntryResponse]{Items: items, Total: total, Limit: limit, Offset: f.Offset})
}

// Users returns a page of registered users.
// GET /admin/users?limit=50&offset=0
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	users, total, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}

	items := make([]userResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, page[userResponse]{Items: items, Total: total, Limit: limit, Offset: offset})
}

// SetRole handles PUT /admin/users/{id}/role.
func (h *AdminHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	u, err := h.users.SetRole(r.Context(), chi.URLParam(r, "id"), domain.Role(req.Role))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

// Suspend handles POST /admin/users/{id}/suspend.
func (h *AdminHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.changeSuspension(w, r, h.users.Suspend)
}

// Unsuspend handles POST /admin/users/{id}/unsuspend.
func (h *AdminHandler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	h.changeSuspension(w, r, h.users.Unsuspend)
}

func (h *AdminHandler) changeSuspension(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, targetID string) (*domain.User, error),
) {
	u, err := apply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*u))
}

func auditFilterFromQuery(r *http.Request) (domain.AuditFilter, error) {
	q := r.URL.Query()
	f := domain.AuditFilter{
		UserID:       q.Get("user"),
		Action:       domain.AuditAction(q.Get("action")),
		TargetPrefix: q.Get("target"),
	}

	var err error
	if f.Limit, err = queryInt(r, "limit", 0); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(r, "offset", 0); err != nil {
		return f, err
	}
	if f.Since, err = queryTime(r, "since"); err != nil {
		return f, err
	}
	if f.Until, err = queryTime(r, "until"); err != nil {
		return f, err
	}
	return f, nil
}

func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be an RFC 3339 timestamp")
	}
	return &t, nil
}
