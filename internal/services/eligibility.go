package services

import (
	"github.com/codyseavey/booster-value/internal/models"
)

// Classifier decides which printings belong to which booster product.
// It is built once from the loaded tables and never mutated afterwards.
type Classifier struct {
	table models.EligibilityTable
	tags  models.ExclusiveTags
}

// NewClassifier creates a classifier over the per-set overrides and the
// global collector-exclusive tag lists. A nil table means no overrides.
func NewClassifier(table models.EligibilityTable, tags models.ExclusiveTags) *Classifier {
	if table == nil {
		table = models.EligibilityTable{}
	}
	return &Classifier{
		table: table,
		tags:  tags,
	}
}

// Eligible reports whether the printing belongs to the booster product.
// Rules are checked in order and the first match wins:
//  1. collector boosters contain everything
//  2. supplementary-pool printings are always in
//  3. the set's guaranteed-play ranges include
//  4. the set's collector-exclusive ranges exclude
//  5. exclusive promo/frame tags exclude, otherwise the upstream booster flag decides
func (c *Classifier) Eligible(p models.CardPrinting, booster models.Booster) bool {
	if booster == models.BoosterCollector {
		return true
	}
	if p.Provenance != models.ProvenanceNone {
		return true
	}

	if override, ok := c.table.ForSet(p.SetCode); ok {
		if override.PlayBooster.IncludeCollectorNumbers.ContainsNumber(p.CollectorNumber) {
			return true
		}
		if override.CollectorExclusive.CollectorNumbers.ContainsNumber(p.CollectorNumber) {
			return false
		}
	}

	if c.tags.MatchesAny(p.PromoTypes, p.FrameEffects) {
		return false
	}
	return p.Booster
}

// Filter keeps the eligible printings, preserving input order
func (c *Classifier) Filter(printings []models.CardPrinting, booster models.Booster) []models.CardPrinting {
	out := make([]models.CardPrinting, 0, len(printings))
	for _, p := range printings {
		if c.Eligible(p, booster) {
			out = append(out, p)
		}
	}
	return out
}
