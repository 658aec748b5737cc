// refresh-cache rebuilds the static price cache from Scryfall.
//
// Usage: refresh-cache [-sets=mkm,otj] [-data=./data] [-min-price=1]
//
// For each set the play and collector products are fetched in parallel and
// written as one cache document. Sets are processed one after another.
// Without -sets, every set in sets.json plus every supplementary pool source
// set is refreshed. Exits non-zero if any set failed.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/codyseavey/booster-value/internal/config"
	"github.com/codyseavey/booster-value/internal/database"
	"github.com/codyseavey/booster-value/internal/services"
)

func main() {
	cfg := config.Load()

	setsFlag := flag.String("sets", strings.Join(cfg.RefreshSets, ","), "Comma-separated set codes to refresh (default: all known sets)")
	dataDir := flag.String("data", cfg.DataDir, "Directory holding the JSON data tables")
	minPrice := flag.Float64("min-price", cfg.CacheMinPrice, "Lowest price a finish needs to be cached")
	flag.Parse()

	tables, err := config.LoadTables(*dataDir)
	if err != nil {
		log.Fatalf("Failed to load data tables: %v", err)
	}

	var store services.CacheStore
	if cfg.UsesCacheDB() {
		if err := database.Initialize(cfg.CacheDBPath); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = services.NewSQLiteCacheStore(database.GetDB())
	} else {
		store = services.NewFileCacheStore(cfg.CacheDir)
	}

	scryfallService := services.NewScryfallService()
	if cfg.ScryfallBaseURL != "" {
		scryfallService.WithBaseURL(cfg.ScryfallBaseURL)
	}
	classifier := services.NewClassifier(tables.Eligibility, tables.ExclusiveTags)
	refresher := services.NewCacheRefresher(scryfallService, store, classifier, *minPrice, 0)

	var explicit []string
	for _, s := range strings.Split(*setsFlag, ",") {
		if s = strings.TrimSpace(s); s != "" {
			explicit = append(explicit, s)
		}
	}
	sets := tables.SetsToRefresh(explicit)
	if len(sets) == 0 {
		log.Fatal("No sets to refresh: pass -sets or add sets to sets.json")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed := 0
	for _, result := range refresher.RunOnce(ctx, sets) {
		if result.Error != "" {
			failed++
		}
	}

	if failed > 0 {
		log.Printf("Refresh finished with %d of %d sets failed", failed, len(sets))
		os.Exit(1)
	}
	log.Printf("Refresh finished: %d sets cached", len(sets))
}
