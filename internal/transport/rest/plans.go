package rest

import (
	"net/http"

	"github.com/mutationwave/entitlements/internal/domain"
)

// Plans handles GET /plans.
func Plans(w http.ResponseWriter, _ *http.Request) {
	plans := domain.Plans()
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}
