package viewer

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go_clip/internal/engine"
)

type healthBody struct {
	Status    string       `json:"status"`
	State     engine.State `json:"state"`
	Rows      int          `json:"rows"`
	FromCache bool         `json:"from_cache"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// HealthHandler returns a simple health check endpoint. The service is
// healthy whenever it answers; the ingestion state is informational.
func HealthHandler(src interface{ Snapshot() engine.Snapshot }) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := healthBody{Status: "ok", State: engine.StateIdle}
		if src != nil {
			snap := src.Snapshot()
			body.State = snap.State
			body.Rows = len(snap.Rows)
			body.FromCache = snap.FromCache
			if !snap.UpdatedAt.IsZero() {
				body.UpdatedAt = &snap.UpdatedAt
			}
		}
		writeJSON(w, http.StatusOK, body)
	})
}
