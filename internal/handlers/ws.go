package handlers

import (
	"net/http"

	"github.com/finflowhq/finflow-backend/internal/events"
	"github.com/finflowhq/finflow-backend/internal/middleware"
)

type wsHandlers struct {
	Hub *events.Hub
}

func NewWSHandlers(deps *Deps) *wsHandlers {
	return &wsHandlers{Hub: deps.Hub}
}

// Serve upgrades the connection and subscribes it to the caller's
// ledger-change notifications.
func (h *wsHandlers) Serve(w http.ResponseWriter, r *http.Request) {
	h.Hub.ServeWS(w, r, middleware.UID(r.Context()))
}
