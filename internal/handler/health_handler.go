package handler

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	started time.Time
	paused  func() bool
}

func NewHealthHandler(paused func() bool) *HealthHandler {
	return &HealthHandler{started: time.Now(), paused: paused}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.paused != nil && h.paused() {
		status = "paused"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
