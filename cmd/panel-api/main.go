package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/unrolled/logger"

	"github.com/00b1b1/tmb-pantalles/internal/api"
	"github.com/00b1b1/tmb-pantalles/internal/config"
	"github.com/00b1b1/tmb-pantalles/internal/coordinator"
	"github.com/00b1b1/tmb-pantalles/internal/panel"
	"github.com/00b1b1/tmb-pantalles/internal/tmb"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.TMBAppID == "" || cfg.TMBAppKey == "" {
		log.Fatal("TMB_APP_ID and TMB_APP_KEY must be set")
	}

	client := tmb.NewClient(cfg.TMBBaseURL, cfg.TMBAppID, cfg.TMBAppKey)

	panelCfg := panel.DefaultConfig()
	if cfg.PanelFile != "" {
		loaded, err := config.LoadPanelFile(cfg.PanelFile)
		if err != nil {
			log.Printf("Panel file ignored: %v", err)
		} else {
			panelCfg = loaded
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coord := coordinator.New(client, cfg.ArrivalsInterval, cfg.AlertsInterval)
	coord.Run(ctx)

	server := api.NewServer(coord, client, cfg.ShareBaseURL, panelCfg)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(logger.New(logger.Options{
		Prefix: "panel-api",
	}).Handler)
	server.Routes(r)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Panel API listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
