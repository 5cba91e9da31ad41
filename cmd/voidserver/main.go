package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Cruelhelp/NeonVoid/internal/config"
	"github.com/Cruelhelp/NeonVoid/internal/logger"
	"github.com/Cruelhelp/NeonVoid/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	users, err := server.NewUserStore()
	if err != nil {
		log.Fatal("user store", zap.Error(err))
	}
	defer users.Close()

	auth, err := server.NewAuth()
	if err != nil {
		log.Fatal("auth", zap.Error(err))
	}

	hub := server.NewHub(users, auth, log)
	hub.SetConnLimits(cfg.Server.MaxConnsPerIP, cfg.Server.MaxConns)
	hubStop := make(chan struct{})
	go hub.Run(hubStop)

	mux := server.SetupRoutes(hub, log, cfg.Server.JoinBaseURL)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		log.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down")
	close(hubStop)
	srv.Close()
}
