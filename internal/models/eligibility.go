package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Booster is a purchasable pack type
type Booster string

const (
	BoosterPlay      Booster = "play"
	BoosterCollector Booster = "collector"
)

// ParseBooster maps query-string values to a Booster. Only "collector"
// selects the collector booster; any other value, empty included, is play.
func ParseBooster(s string) Booster {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "collector":
		return BoosterCollector
	default:
		return BoosterPlay
	}
}

// CollectorRange is an inclusive range of collector numbers
type CollectorRange struct {
	From int
	To   int
}

// ParseCollectorRange parses "N" or "N-M".
func ParseCollectorRange(s string) (CollectorRange, error) {
	s = strings.TrimSpace(s)
	lo, hi, isRange := strings.Cut(s, "-")
	from, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return CollectorRange{}, fmt.Errorf("invalid collector range %q: %w", s, err)
	}
	if !isRange {
		return CollectorRange{From: from, To: from}, nil
	}
	to, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return CollectorRange{}, fmt.Errorf("invalid collector range %q: %w", s, err)
	}
	if to < from {
		return CollectorRange{}, fmt.Errorf("invalid collector range %q: end before start", s)
	}
	return CollectorRange{From: from, To: to}, nil
}

func (r CollectorRange) Contains(n int) bool {
	return n >= r.From && n <= r.To
}

func (r CollectorRange) String() string {
	if r.From == r.To {
		return strconv.Itoa(r.From)
	}
	return fmt.Sprintf("%d-%d", r.From, r.To)
}

// CollectorRanges is a list of ranges that decodes from an array of range strings
type CollectorRanges []CollectorRange

func (rs *CollectorRanges) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(CollectorRanges, 0, len(raw))
	for _, s := range raw {
		r, err := ParseCollectorRange(s)
		if err != nil {
			return err
		}
		out = append(out, r)
	}
	*rs = out
	return nil
}

func (rs CollectorRanges) MarshalJSON() ([]byte, error) {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.String()
	}
	return json.Marshal(out)
}

// ContainsNumber reports whether the collector number's leading integer falls
// in any range. "123a" compares as 123; "★12" never matches.
func (rs CollectorRanges) ContainsNumber(collectorNumber string) bool {
	n, ok := LeadingNumber(collectorNumber)
	if !ok {
		return false
	}
	for _, r := range rs {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// LeadingNumber parses the leading run of digits of a collector number
func LeadingNumber(collectorNumber string) (int, bool) {
	end := 0
	for end < len(collectorNumber) && unicode.IsDigit(rune(collectorNumber[end])) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(collectorNumber[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetEligibility is the per-set override entry of eligibility.json
type SetEligibility struct {
	PlayBooster struct {
		IncludeCollectorNumbers CollectorRanges `json:"includeCollectorNumbers"`
	} `json:"playBooster"`
	CollectorExclusive struct {
		CollectorNumbers CollectorRanges `json:"collectorNumbers"`
	} `json:"collectorExclusive"`
}

// EligibilityTable is keyed by lower-case set code
type EligibilityTable map[string]SetEligibility

// ForSet returns the entry for a set, if one exists
func (t EligibilityTable) ForSet(setCode string) (SetEligibility, bool) {
	e, ok := t[strings.ToLower(setCode)]
	return e, ok
}

// ExclusiveTags are the promo types and frame effects that signal a
// collector-exclusive printing when no set override applies.
type ExclusiveTags struct {
	Promos map[string]struct{}
	Frames map[string]struct{}
}

// NewExclusiveTags builds the lookup sets, lower-casing every tag
func NewExclusiveTags(promos, frames []string) ExclusiveTags {
	t := ExclusiveTags{
		Promos: make(map[string]struct{}, len(promos)),
		Frames: make(map[string]struct{}, len(frames)),
	}
	for _, p := range promos {
		t.Promos[strings.ToLower(strings.TrimSpace(p))] = struct{}{}
	}
	for _, f := range frames {
		t.Frames[strings.ToLower(strings.TrimSpace(f))] = struct{}{}
	}
	return t
}

// MatchesAny reports whether any promo type or frame effect is in the lists
func (t ExclusiveTags) MatchesAny(promoTypes, frameEffects []string) bool {
	for _, p := range promoTypes {
		if _, ok := t.Promos[p]; ok {
			return true
		}
	}
	for _, f := range frameEffects {
		if _, ok := t.Frames[f]; ok {
			return true
		}
	}
	return false
}

// SupplementaryPool is a curated side-list of printings that appear in the
// packs of the sets it augments regardless of treatment.
type SupplementaryPool struct {
	Name             string          `json:"name"`
	Provenance       Provenance      `json:"provenance"`
	SourceSet        string          `json:"source_set"`
	CollectorNumbers CollectorRanges `json:"collector_numbers,omitempty"`
	Augments         []string        `json:"augments"`
}

// AppliesTo reports whether the pool augments the given set
func (p SupplementaryPool) AppliesTo(setCode string) bool {
	for _, s := range p.Augments {
		if strings.EqualFold(s, setCode) {
			return true
		}
	}
	return false
}

// Contains reports whether a printing of the source set belongs to the pool.
// A pool with no ranges takes the whole source set.
func (p SupplementaryPool) Contains(c CardPrinting) bool {
	if !strings.EqualFold(c.SetCode, p.SourceSet) {
		return false
	}
	if len(p.CollectorNumbers) == 0 {
		return true
	}
	return p.CollectorNumbers.ContainsNumber(c.CollectorNumber)
}
