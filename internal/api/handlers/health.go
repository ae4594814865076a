package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Harshitk-cp/fitcheck/internal/buildconfig"
)

const pingTimeout = 2 * time.Second

// Pinger is a dependency whose reachability shows up in /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
	now    func() time.Time
}

// NewHealthHandler reports each named check as "<name>_connected".
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks, now: time.Now}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := map[string]any{
		"service":   "fitcheck",
		"version":   buildconfig.Version(),
		"timestamp": h.now().UTC().Format(time.RFC3339),
	}
	healthy := true
	for name, p := range h.checks {
		ok := p.Ping(ctx) == nil
		resp[name+"_connected"] = ok
		healthy = healthy && ok
	}

	status := http.StatusOK
	resp["status"] = "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		resp["status"] = "degraded"
	}
	writeJSON(w, status, resp)
}
