package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/codyseavey/booster-value/internal/models"
)

const (
	EligibilityFile   = "eligibility.json"
	ExclusiveTagsFile = "exclusive_tags.json"
	SupplementaryFile = "supplementary.json"
	SetsFile          = "sets.json"
)

// Tables are the static lookup tables loaded once at startup and passed
// by value to the components that read them.
type Tables struct {
	Eligibility   models.EligibilityTable
	ExclusiveTags models.ExclusiveTags
	Pools         []models.SupplementaryPool
	Sets          []models.SetInfo
}

type exclusiveTagsFile struct {
	Promos []string `json:"promos"`
	Frames []string `json:"frames"`
}

// LoadTables reads every table from dataDir. A missing file yields an empty
// table; a file that exists but does not parse is an error.
func LoadTables(dataDir string) (*Tables, error) {
	t := &Tables{Eligibility: models.EligibilityTable{}}

	var raw map[string]models.SetEligibility
	if err := readJSON(filepath.Join(dataDir, EligibilityFile), &raw); err != nil {
		return nil, err
	}
	for set, entry := range raw {
		t.Eligibility[strings.ToLower(set)] = entry
	}

	var tags exclusiveTagsFile
	if err := readJSON(filepath.Join(dataDir, ExclusiveTagsFile), &tags); err != nil {
		return nil, err
	}
	t.ExclusiveTags = models.NewExclusiveTags(tags.Promos, tags.Frames)

	if err := readJSON(filepath.Join(dataDir, SupplementaryFile), &t.Pools); err != nil {
		return nil, err
	}
	for i := range t.Pools {
		if t.Pools[i].Provenance == models.ProvenanceNone {
			t.Pools[i].Provenance = models.ProvenanceBonusSheet
		}
		t.Pools[i].SourceSet = strings.ToLower(t.Pools[i].SourceSet)
	}

	if err := readJSON(filepath.Join(dataDir, SetsFile), &t.Sets); err != nil {
		return nil, err
	}

	log.Printf("Config: loaded %d set overrides, %d promo / %d frame exclusive tags, %d supplementary pools, %d sets",
		len(t.Eligibility), len(t.ExclusiveTags.Promos), len(t.ExclusiveTags.Frames), len(t.Pools), len(t.Sets))
	return t, nil
}

// SetsToRefresh is every catalog set plus the source sets of the pools,
// unless an explicit list was configured.
func (t *Tables) SetsToRefresh(explicit []string) []string {
	if len(explicit) > 0 {
		return explicit
	}
	seen := map[string]struct{}{}
	var out []string
	add := func(code string) {
		code = strings.ToLower(code)
		if _, ok := seen[code]; ok || code == "" {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	for _, s := range t.Sets {
		add(s.Code)
	}
	for _, p := range t.Pools {
		add(p.SourceSet)
	}
	return out
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Config: %s not found, using an empty table", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
