package api

import (
	"fmt"
	"net/http"

	"equion/internal/voice"
)

// StatusHandler implements GET / (spec §6 "Status endpoint": "a short HTML
// body containing the live online-user count").
type StatusHandler struct {
	voice *voice.Registry
}

// NewStatusHandler constructs a StatusHandler.
func NewStatusHandler(v *voice.Registry) *StatusHandler {
	return &StatusHandler{voice: v}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><body><p>Equion is running. %d users online.</p></body></html>", h.voice.OnlineCount())
}
