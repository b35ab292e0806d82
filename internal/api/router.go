package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"equion/internal/dispatch"
	"equion/internal/service"
	"equion/internal/voice"
	"equion/internal/ws"
)

// Server is the top-level HTTP server: the command router, file endpoints,
// the live-channel upgrade endpoint, and the status page (spec §4.9, §4.8,
// §6). Grounded on the teacher's internal/api/router.go NewServer/chi
// wiring.
type Server struct {
	Router http.Handler
}

// NewServer builds the full chi router.
func NewServer(dsp *dispatch.Dispatcher, files *service.Files, voiceReg *voice.Registry, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(slogRequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	commandHandler := NewCommandHandler(dsp)
	fileHandler := NewFileHandler(files)
	statusHandler := NewStatusHandler(voiceReg)
	wsServer := ws.NewServer(dsp, logger)

	r.Get("/", statusHandler.ServeHTTP)
	r.Get("/ws", wsServer.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/{command}", commandHandler.ServeHTTP)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/files/{id}", fileHandler.GetFile)
			r.Post("/updateUserImage", fileHandler.UpdateUserImage)
		})
	})

	return &Server{Router: r}
}
