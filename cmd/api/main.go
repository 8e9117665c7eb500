package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripod.studio/internal/auth"
	"tripod.studio/internal/catalog"
	"tripod.studio/internal/config"
	"tripod.studio/internal/httpapi"
	"tripod.studio/internal/obs"
	"tripod.studio/internal/rbac"
	"tripod.studio/internal/store/pg"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo(version, commit)

	if cfg.DatabaseURL == "" {
		log.Fatal("missing database DSN: set TRIPOD_DATABASE_URL")
	}
	store, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	codec, err := auth.NewTokenCodec(cfg.JWT.SecretKey, cfg.JWT.Algorithm)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}

	deps := httpapi.Deps{
		Auth: auth.NewService(store, codec,
			auth.WithAccessTTL(cfg.JWT.AccessTTL),
			auth.WithRefreshTTL(cfg.JWT.RefreshTTL),
		),
		Roles:     rbac.NewService(store),
		Orgs:      catalog.NewOrgService(store.Organizations()),
		Languages: catalog.NewLanguageService(store.Languages()),
		Projects:  catalog.NewProjectService(store.Projects(), store.Organizations()),
		Phases:    catalog.NewPhaseService(store.Phases(), store.Projects()),
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, deps, version)

	handler := api.Handler()
	if cfg.Rate.Enabled {
		handler = httpapi.RateLimit(handler, cfg.Rate.Burst, cfg.Rate.PerSecond)
	}
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	handler = httpapi.CORS(handler, cfg.CORSOrigins)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.Logging(handler)
	handler = httpapi.RequestID(handler)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting tripod-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
