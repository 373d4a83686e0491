package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/narwhalmedia/classifieds/internal/container"
	"github.com/narwhalmedia/classifieds/pkg/config"
	"github.com/narwhalmedia/classifieds/pkg/database"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

func main() {
	cfg := config.MustLoadServiceConfig("portal", config.GetDefaultPortalConfig())

	zl, err := cfg.Logger.ToLoggerConfig(cfg.Service).Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = zl.Sync() }()
	var log interfaces.Logger = zl

	log.Info("Portal starting",
		interfaces.String("version", config.GetServiceVersion(&cfg.Service)),
		interfaces.String("environment", cfg.Service.Environment),
		interfaces.String("events_transport", cfg.Events.Transport))

	portal, cleanup, err := container.InitializePortal(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize portal", interfaces.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := portal.EventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", interfaces.Error(err))
	}

	server := &http.Server{
		Addr:              config.GetListenAddress(&cfg.Service),
		Handler:           healthMux(portal),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Health server starting", interfaces.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Health server failed", interfaces.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down portal...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to stop health server", interfaces.Error(err))
	}

	// Stops the bus (draining async publishes) before the forwarder and the
	// database go away.
	cleanup()

	log.Info("Portal stopped")
}

func healthMux(portal *container.Portal) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(ctx, portal.DB); err != nil {
			portal.Logger.Warn("Readiness check failed", interfaces.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	mux.HandleFunc("/system", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, portal.Admin.SystemInfo(r.Context()))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
