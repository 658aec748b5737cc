package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/booster-value/internal/metrics"
	"github.com/codyseavey/booster-value/internal/models"
)

// CacheRefresher rebuilds the static price cache from the live source
type CacheRefresher struct {
	live       LiveSource
	store      CacheStore
	classifier *Classifier
	minPrice   float64
	interval   time.Duration

	mu        sync.RWMutex
	lastRun   time.Time
	lastRunID string
	lastSets  []RefreshedSet
}

// RefreshedSet is the outcome for one set in a refresh run
type RefreshedSet struct {
	SetCode   string `json:"set"`
	Play      int    `json:"play"`
	Collector int    `json:"collector"`
	Error     string `json:"error,omitempty"`
}

// RefreshStatus is what the status endpoint reports
type RefreshStatus struct {
	LastRunTime time.Time      `json:"last_run_time"`
	NextRunTime time.Time      `json:"next_run_time,omitempty"`
	LastRunID   string         `json:"last_run_id,omitempty"`
	Sets        []RefreshedSet `json:"sets"`
}

func NewCacheRefresher(live LiveSource, store CacheStore, classifier *Classifier, minPrice float64, interval time.Duration) *CacheRefresher {
	return &CacheRefresher{
		live:       live,
		store:      store,
		classifier: classifier,
		minPrice:   minPrice,
		interval:   interval,
	}
}

// Start refreshes immediately and then on every interval until ctx is done
func (r *CacheRefresher) Start(ctx context.Context, sets []string) {
	if r.interval <= 0 {
		log.Println("Cache refresher: no interval configured, not starting")
		return
	}
	log.Printf("Cache refresher started: will refresh %d sets every %v", len(sets), r.interval)

	r.RunOnce(ctx, sets)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Cache refresher stopping...")
			return
		case <-ticker.C:
			r.RunOnce(ctx, sets)
		}
	}
}

// RunOnce refreshes each set in turn. The play and collector products of a
// set are built in parallel and joined before the next set starts. A failed
// set keeps its previous cache document.
func (r *CacheRefresher) RunOnce(ctx context.Context, sets []string) []RefreshedSet {
	start := time.Now()
	runID := uuid.New().String()
	log.Printf("Cache refresher: run %s starting for %d sets", runID, len(sets))

	results := make([]RefreshedSet, 0, len(sets))
	for _, set := range sets {
		if ctx.Err() != nil {
			break
		}
		result := r.refreshSet(ctx, strings.ToLower(set), runID)
		if result.Error != "" {
			metrics.RefreshRunsTotal.WithLabelValues("failed").Inc()
			log.Printf("Cache refresher: %s failed: %s", result.SetCode, result.Error)
		} else {
			metrics.RefreshRunsTotal.WithLabelValues("success").Inc()
			log.Printf("Cache refresher: %s cached (%d play, %d collector)", result.SetCode, result.Play, result.Collector)
		}
		results = append(results, result)
	}

	metrics.RefreshDuration.Observe(time.Since(start).Seconds())

	r.mu.Lock()
	r.lastRun = time.Now()
	r.lastRunID = runID
	r.lastSets = results
	r.mu.Unlock()

	return results
}

func (r *CacheRefresher) refreshSet(ctx context.Context, setCode, runID string) RefreshedSet {
	result := RefreshedSet{SetCode: setCode}

	var play, collector []json.RawMessage
	g, gctx := errgroup.WithContext(ctx)

	// Both products come from the same search; whichever task runs first fetches it
	fetch := sync.OnceValues(func() ([]models.CardPrinting, error) {
		records, err := r.live.SearchSet(gctx, SetQuery{SetCode: setCode, MinPrice: r.minPrice})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", setCode, err)
		}
		return NormalizeRecords(records), nil
	})

	g.Go(func() error {
		var err error
		play, err = r.buildProduct(fetch, models.BoosterPlay)
		return err
	})
	g.Go(func() error {
		var err error
		collector, err = r.buildProduct(fetch, models.BoosterCollector)
		return err
	})
	if err := g.Wait(); err != nil {
		result.Error = err.Error()
		return result
	}

	if len(collector) == 0 {
		result.Error = "live source returned no priced cards; keeping previous cache"
		return result
	}

	doc := &models.CacheDocument{
		Set:         setCode,
		GeneratedAt: time.Now().UTC(),
		RunID:       runID,
		Play:        play,
		Collector:   collector,
	}
	if err := r.store.Save(ctx, doc); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Play = len(play)
	result.Collector = len(collector)
	return result
}

// buildProduct keeps the printings eligible for the booster and encodes
// them as compact cache records.
func (r *CacheRefresher) buildProduct(fetch func() ([]models.CardPrinting, error), booster models.Booster) ([]json.RawMessage, error) {
	all, err := fetch()
	if err != nil {
		return nil, err
	}

	printings := r.classifier.Filter(all, booster)
	out := make([]json.RawMessage, 0, len(printings))
	for _, p := range printings {
		data, err := json.Marshal(models.ToCompact(p))
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", p.ID, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// GetStatus returns the outcome of the most recent run
func (r *CacheRefresher) GetStatus() RefreshStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := RefreshStatus{
		LastRunTime: r.lastRun,
		LastRunID:   r.lastRunID,
		Sets:        append([]RefreshedSet(nil), r.lastSets...),
	}
	if r.interval > 0 && !r.lastRun.IsZero() {
		status.NextRunTime = r.lastRun.Add(r.interval)
	}
	return status
}
