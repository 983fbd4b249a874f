package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/desertthunder/tunebot/internal/session"
)

// HealthStatus is the payload served by the health endpoint.
type HealthStatus struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Sessions int    `json:"sessions"`
}

// HealthHandler implements [Handler] for liveness probes. It reports how
// long the process has been up and how many conversations currently hold a
// candidate list.
type HealthHandler struct {
	store   *session.Store
	started time.Time
}

// NewHealthHandler creates a HealthHandler backed by the bot's session store.
// A nil store reports zero sessions.
func NewHealthHandler(store *session.Store) *HealthHandler {
	return &HealthHandler{
		store:   store,
		started: time.Now(),
	}
}

// Routes returns the path patterns this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/health"}
}

// ServeHTTP responds with the current [HealthStatus] as JSON.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions := 0
	if h.store != nil {
		sessions = h.store.Len()
	}

	status := HealthStatus{
		Status:   "ok",
		Uptime:   time.Since(h.started).Truncate(time.Second).String(),
		Sessions: sessions,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
