package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"equion/internal/api"
	"equion/internal/config"
	"equion/internal/dispatch"
	"equion/internal/fabric"
	"equion/internal/logging"
	"equion/internal/service"
	"equion/internal/storage/sqlite"
	"equion/internal/voice"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, logCloser, err := logging.New("log.txt")
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer logCloser.Close()

	logger.Info("starting Equion")

	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("database opened", "path", cfg.Database.Path)

	f := fabric.New(logger)
	voiceReg := voice.New()

	users := service.NewUsers(store, f, voiceReg, cfg.Auth.TokenBytes)
	sets := service.NewSets(store, f, voiceReg, users)
	messages := service.NewMessages(store, f)
	files := service.NewFiles(store, f, voiceReg)
	voiceSvc := service.NewVoice(store, f, voiceReg)

	dsp := dispatch.New(users, sets, messages, files, voiceSvc, f, voiceReg)

	server := api.NewServer(dsp, files, voiceReg, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.Router,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
