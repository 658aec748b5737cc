package services

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/codyseavey/booster-value/internal/models"
)

// SetCatalog is the list of sets users can pick from
type SetCatalog struct {
	sets []models.SetInfo
}

// setSearchItems implements fuzzy.Source over "code name" strings
type setSearchItems []models.SetInfo

func (items setSearchItems) Len() int {
	return len(items)
}

func (items setSearchItems) String(i int) string {
	return strings.ToLower(items[i].Code + " " + items[i].Name)
}

// NewSetCatalog sorts the sets newest first
func NewSetCatalog(sets []models.SetInfo) *SetCatalog {
	sorted := make([]models.SetInfo, len(sets))
	copy(sorted, sets)
	sort.SliceStable(sorted, func(i, j int) bool {
		// Dates are "2024-02-09", so string order is date order
		return sorted[i].ReleasedAt > sorted[j].ReleasedAt
	})
	return &SetCatalog{sets: sorted}
}

// All returns every set, newest first
func (c *SetCatalog) All() []models.SetInfo {
	out := make([]models.SetInfo, len(c.sets))
	copy(out, c.sets)
	return out
}

// Default is the newest set, used when a query names no set
func (c *SetCatalog) Default() (models.SetInfo, bool) {
	if len(c.sets) == 0 {
		return models.SetInfo{}, false
	}
	return c.sets[0], true
}

// Get finds a set by exact code
func (c *SetCatalog) Get(code string) (models.SetInfo, bool) {
	for _, s := range c.sets {
		if strings.EqualFold(s.Code, code) {
			return s, true
		}
	}
	return models.SetInfo{}, false
}

// Search fuzzy-matches the query against set codes and names. An exact code
// match always comes first; an empty query returns the newest sets.
func (c *SetCatalog) Search(query string, limit int) []models.SetInfo {
	if limit <= 0 {
		limit = 10
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return c.All()[:min(limit, len(c.sets))]
	}

	var results []models.SetInfo
	exact, hasExact := c.Get(query)
	if hasExact {
		results = append(results, exact)
	}

	for _, match := range fuzzy.FindFrom(query, setSearchItems(c.sets)) {
		if len(results) >= limit {
			break
		}
		set := c.sets[match.Index]
		if hasExact && strings.EqualFold(set.Code, exact.Code) {
			continue
		}
		results = append(results, set)
	}
	return results
}
