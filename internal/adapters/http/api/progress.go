// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/focusforge/internal/domain/progress"
)

// ProgressHandler handles snapshot persistence requests.
type ProgressHandler struct {
	deps Dependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps Dependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

type persistRequest struct {
	Progress progress.Snapshot `json:"progress"`
}

// HandlePersist handles POST /api/progress. The payload is always the
// full current snapshot, so repeated or reordered writes are safe: last
// full write wins.
func (h *ProgressHandler) HandlePersist(w http.ResponseWriter, r *http.Request) {
	h.persist(w, r, "api.persist")
}

// HandleBeacon handles POST /api/progress/beacon, the unload-time flush
// route. Semantics are identical to HandlePersist; the separate route
// keeps send-and-forget deliveries distinguishable in metrics.
func (h *ProgressHandler) HandleBeacon(w http.ResponseWriter, r *http.Request) {
	h.persist(w, r, "api.beacon")
}

func (h *ProgressHandler) persist(w http.ResponseWriter, r *http.Request, op string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req persistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Persist(r.Context(), sessionToken(r), req.Progress); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}
