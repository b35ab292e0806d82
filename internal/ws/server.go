package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"equion/internal/dispatch"
)

// Server upgrades HTTP connections to the live channel (spec §4.9).
// Grounded on the teacher's internal/api/websocket.go WebSocketHandler.
type Server struct {
	dsp      *dispatch.Dispatcher
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer constructs a live-channel Server. Origins are accepted
// wildcard, matching spec §4.9/§6's CORS-wildcard posture for HTTP.
func NewServer(dsp *dispatch.Dispatcher, logger *slog.Logger) *Server {
	return &Server{
		dsp: dsp,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	addr := uuid.NewString()
	client := NewClient(addr, conn, s.dsp, s.logger)
	client.Run(r.Context())
}
