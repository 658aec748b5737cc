package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/codyseavey/booster-value/internal/metrics"
	"github.com/codyseavey/booster-value/internal/models"
)

const (
	// DefaultMemoSize bounds the resolved pools kept in memory. The key space
	// is sets x 2 boosters x 2 extras flags, so this is never reached in
	// practice and entries are effectively kept for the process lifetime.
	DefaultMemoSize = 1024

	// A shared resolution outlives the caller that started it, so it gets
	// its own deadline instead.
	resolveTimeout = 2 * time.Minute

	SourceMemory = "memory"
	SourceCache  = "cache"
	SourceLive   = "live"
)

// ErrSourcesExhausted is returned when neither the cache nor the live
// source could provide a card pool.
var ErrSourcesExhausted = errors.New("no card source could satisfy the request")

// CacheSource provides pre-fetched raw records
type CacheSource interface {
	Records(ctx context.Context, setCode string, booster models.Booster) ([]json.RawMessage, error)
}

// LiveSource queries the remote card database
type LiveSource interface {
	SearchSet(ctx context.Context, q SetQuery) ([]json.RawMessage, error)
}

// ResolveKey identifies one memoized resolution
type ResolveKey struct {
	SetCode       string
	Booster       models.Booster
	IncludeExtras bool
}

func (k ResolveKey) String() string {
	extras := "base"
	if k.IncludeExtras {
		extras = "extras"
	}
	return strings.ToLower(k.SetCode) + "|" + string(k.Booster) + "|" + extras
}

// Resolution is the combined card pool for a key. Shared between callers;
// treat it as read-only.
type Resolution struct {
	Printings []models.CardPrinting
	Source    string
}

type resolveState int

const (
	stateCacheLookup resolveState = iota
	stateLiveFetch
	stateAugment
	stateDone
)

func (s resolveState) String() string {
	switch s {
	case stateCacheLookup:
		return "cache_lookup"
	case stateLiveFetch:
		return "live_fetch"
	case stateAugment:
		return "augment"
	default:
		return "done"
	}
}

// resolveRun carries the state of one resolution through the state machine
type resolveRun struct {
	key       ResolveKey
	printings []models.CardPrinting
	source    string
	err       error
}

// Resolver turns a query key into a card pool by trying the static cache,
// then the live source, then appending the supplementary pools for the set.
type Resolver struct {
	cache    CacheSource
	live     LiveSource
	pools    []models.SupplementaryPool
	minPrice float64

	memo  *lru.Cache[string, *Resolution]
	group singleflight.Group
}

// NewResolver creates a resolver. Either source may be nil. minPrice is the
// price floor the live query uses, matching what the cache files contain.
func NewResolver(cache CacheSource, live LiveSource, pools []models.SupplementaryPool, minPrice float64, memoSize int) (*Resolver, error) {
	if memoSize <= 0 {
		memoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, *Resolution](memoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolution memo: %w", err)
	}
	return &Resolver{
		cache:    cache,
		live:     live,
		pools:    pools,
		minPrice: minPrice,
		memo:     memo,
	}, nil
}

// Resolve returns the card pool for the key. Successful results are memoized
// for the life of the resolver; concurrent calls for one key share one fetch.
// The shared fetch does not stop when ctx is cancelled; only this caller
// stops waiting for it.
func (r *Resolver) Resolve(ctx context.Context, key ResolveKey) (*Resolution, error) {
	key.SetCode = strings.ToLower(key.SetCode)
	id := key.String()

	if cached, ok := r.memo.Get(id); ok {
		metrics.ResolutionsTotal.WithLabelValues(SourceMemory).Inc()
		return &Resolution{Printings: cached.Printings, Source: SourceMemory}, nil
	}

	ch := r.group.DoChan(id, func() (any, error) {
		if cached, ok := r.memo.Get(id); ok {
			return cached, nil
		}
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), resolveTimeout)
		defer cancel()

		res, err := r.run(flightCtx, key)
		if err != nil {
			metrics.ResolutionsTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		r.memo.Add(id, res)
		metrics.MemoEntries.Set(float64(r.memo.Len()))
		metrics.ResolutionsTotal.WithLabelValues(res.Source).Inc()
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*Resolution), nil
	}
}

func (r *Resolver) run(ctx context.Context, key ResolveKey) (*Resolution, error) {
	run := &resolveRun{key: key}
	state := stateCacheLookup
	for state != stateDone {
		state = r.transition(ctx, run, state)
	}
	if run.err != nil {
		return nil, run.err
	}
	return &Resolution{Printings: run.printings, Source: run.source}, nil
}

func (r *Resolver) transition(ctx context.Context, run *resolveRun, state resolveState) resolveState {
	switch state {
	case stateCacheLookup:
		return r.cacheLookup(ctx, run)
	case stateLiveFetch:
		return r.liveFetch(ctx, run)
	case stateAugment:
		return r.augment(ctx, run)
	default:
		return stateDone
	}
}

// cacheLookup moves to augment on a non-empty cache hit and to live fetch on
// any miss, empty result or read failure.
func (r *Resolver) cacheLookup(ctx context.Context, run *resolveRun) resolveState {
	if r.cache == nil {
		return stateLiveFetch
	}

	records, err := r.cache.Records(ctx, run.key.SetCode, run.key.Booster)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("Resolver: cache lookup for %s failed, falling back to live: %v", run.key, err)
		}
		return stateLiveFetch
	}

	printings := NormalizeRecords(records)
	if len(printings) == 0 {
		return stateLiveFetch
	}
	run.printings = printings
	run.source = SourceCache
	return stateAugment
}

// liveFetch queries the remote source. An empty result is valid; only a
// failure ends the run with an error.
func (r *Resolver) liveFetch(ctx context.Context, run *resolveRun) resolveState {
	if r.live == nil {
		run.err = fmt.Errorf("%w: %s has no cache entry and no live source is configured", ErrSourcesExhausted, run.key)
		return stateDone
	}

	records, err := r.live.SearchSet(ctx, SetQuery{SetCode: run.key.SetCode, MinPrice: r.minPrice})
	if err != nil {
		run.err = fmt.Errorf("%w: %w", ErrSourcesExhausted, err)
		return stateDone
	}
	run.printings = NormalizeRecords(records)
	run.source = SourceLive
	return stateAugment
}

// augment appends every supplementary pool configured for the set. A pool
// that cannot be fetched is skipped.
func (r *Resolver) augment(ctx context.Context, run *resolveRun) resolveState {
	if !run.key.IncludeExtras {
		return stateDone
	}

	seen := make(map[string]struct{}, len(run.printings))
	for _, p := range run.printings {
		seen[p.ID] = struct{}{}
	}

	for _, pool := range r.pools {
		if !pool.AppliesTo(run.key.SetCode) {
			continue
		}
		printings, err := r.resolvePool(ctx, pool)
		if err != nil {
			metrics.SupplementaryPoolFailures.WithLabelValues(pool.Name).Inc()
			log.Printf("Resolver: skipping supplementary pool %s for %s: %v", pool.Name, run.key, err)
			continue
		}
		for _, p := range printings {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			run.printings = append(run.printings, p)
		}
	}
	return stateDone
}

// resolvePool fetches a pool with the same cache-then-live fallback and tags
// every member with the pool's provenance.
func (r *Resolver) resolvePool(ctx context.Context, pool models.SupplementaryPool) ([]models.CardPrinting, error) {
	var printings []models.CardPrinting

	if r.cache != nil {
		records, err := r.cache.Records(ctx, pool.SourceSet, models.BoosterCollector)
		if err == nil {
			printings = NormalizeRecords(records)
		} else if !errors.Is(err, ErrCacheMiss) {
			log.Printf("Resolver: cache lookup for pool %s failed: %v", pool.Name, err)
		}
	}

	if len(printings) == 0 {
		if r.live == nil {
			return nil, ErrSourcesExhausted
		}
		q := SetQuery{SetCode: pool.SourceSet, MinPrice: r.minPrice}
		if len(pool.CollectorNumbers) > 0 {
			q.FromNumber, q.ToNumber = rangeBounds(pool.CollectorNumbers)
		}
		records, err := r.live.SearchSet(ctx, q)
		if err != nil {
			return nil, err
		}
		printings = NormalizeRecords(records)
	}

	out := make([]models.CardPrinting, 0, len(printings))
	for _, p := range printings {
		if pool.Contains(p) {
			out = append(out, p.WithProvenance(pool.Provenance))
		}
	}
	return out, nil
}

// rangeBounds returns the lowest start and highest end across ranges
func rangeBounds(ranges models.CollectorRanges) (int, int) {
	from, to := ranges[0].From, ranges[0].To
	for _, rg := range ranges[1:] {
		from = min(from, rg.From)
		to = max(to, rg.To)
	}
	return from, to
}
