package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/codyseavey/booster-value/internal/models"
)

func ptr(v float64) *float64 { return &v }

// printing builds a test printing with one nonfoil price
func printing(id string, rarity models.Rarity, nonfoil float64) models.CardPrinting {
	return models.NewCardPrinting(models.PrintingFields{
		ID:              id,
		Name:            "Card " + id,
		SetCode:         "mkm",
		CollectorNumber: "1",
		Rarity:          rarity,
		Finishes:        []models.Finish{models.FinishNonfoil},
		Prices:          map[models.Finish]*float64{models.FinishNonfoil: ptr(nonfoil)},
		Booster:         true,
	})
}

// scryfallRecord renders a minimal Scryfall card object
func scryfallRecord(set, id, cn, rarity string, usd string, booster bool) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{
		"object": "card",
		"id": %q,
		"name": "Card %s",
		"set": %q,
		"collector_number": %q,
		"rarity": %q,
		"finishes": ["nonfoil"],
		"prices": {"usd": %q, "usd_foil": null, "usd_etched": null},
		"booster": %t,
		"border_color": "black"
	}`, id, id, set, cn, rarity, usd, booster))
}

// fakeLive is a LiveSource serving canned records per set
type fakeLive struct {
	mu      sync.Mutex
	records map[string][]json.RawMessage
	errs    map[string]error
	queries []SetQuery
	calls   atomic.Int32
	block   chan struct{}
}

func newFakeLive() *fakeLive {
	return &fakeLive{
		records: map[string][]json.RawMessage{},
		errs:    map[string]error{},
	}
}

func (f *fakeLive) SearchSet(ctx context.Context, q SetQuery) ([]json.RawMessage, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	set := strings.ToLower(q.SetCode)
	if err := f.errs[set]; err != nil {
		return nil, err
	}
	return f.records[set], nil
}

// memoryStore is an in-memory CacheStore
type memoryStore struct {
	mu   sync.Mutex
	docs map[string]*models.CacheDocument
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: map[string]*models.CacheDocument{}}
}

func (s *memoryStore) Load(_ context.Context, setCode string) (*models.CacheDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[strings.ToLower(setCode)]
	if !ok {
		return nil, ErrCacheMiss
	}
	return doc, nil
}

func (s *memoryStore) Save(_ context.Context, doc *models.CacheDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[strings.ToLower(doc.Set)] = doc
	return nil
}
