package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/booster-value/internal/api"
	"github.com/codyseavey/booster-value/internal/config"
	"github.com/codyseavey/booster-value/internal/database"
	"github.com/codyseavey/booster-value/internal/services"
)

func main() {
	cfg := config.Load()

	// Static tables are loaded once and passed to every consumer
	tables, err := config.LoadTables(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to load data tables: %v", err)
	}

	store, err := openCacheStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open cache store: %v", err)
	}

	// Initialize services
	scryfallService := services.NewScryfallService()
	if cfg.ScryfallBaseURL != "" {
		scryfallService.WithBaseURL(cfg.ScryfallBaseURL)
	}

	classifier := services.NewClassifier(tables.Eligibility, tables.ExclusiveTags)

	resolver, err := services.NewResolver(services.NewStaticCacheSource(store), scryfallService, tables.Pools, cfg.CacheMinPrice, cfg.MemoSize)
	if err != nil {
		log.Fatalf("Failed to initialize resolver: %v", err)
	}

	lookupService := services.NewLookupService(resolver, classifier)
	catalog := services.NewSetCatalog(tables.Sets)
	gate := services.NewRequestGate()

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The in-process refresher is optional; the refresh-cache command does the same job from cron
	var refresher *services.CacheRefresher
	if cfg.RefreshInterval > 0 {
		refresher = services.NewCacheRefresher(scryfallService, store, classifier, cfg.CacheMinPrice, cfg.RefreshInterval)
		sets := tables.SetsToRefresh(cfg.RefreshSets)

		go func() {
			for {
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in cache refresher: %v - restarting in 30 seconds", r)
						}
					}()
					refresher.Start(ctx, sets)
				}()

				select {
				case <-ctx.Done():
					return // Graceful shutdown
				case <-time.After(30 * time.Second):
					log.Println("Cache refresher restarting after panic recovery...")
				}
			}
		}()
	}

	router := api.SetupRouter(lookupService, catalog, gate, refresher, api.RouterOptions{
		CORSOrigins:  cfg.CORSOrigins,
		FrontendPath: cfg.FrontendDistPath,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func openCacheStore(cfg *config.Config) (services.CacheStore, error) {
	if cfg.UsesCacheDB() {
		if err := database.Initialize(cfg.CacheDBPath); err != nil {
			return nil, err
		}
		log.Printf("Using sqlite cache store at %s", cfg.CacheDBPath)
		return services.NewSQLiteCacheStore(database.GetDB()), nil
	}
	log.Printf("Using file cache store at %s", cfg.CacheDir)
	return services.NewFileCacheStore(cfg.CacheDir), nil
}
