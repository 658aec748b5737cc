package services

import (
	"log"
	"strings"

	"github.com/codyseavey/booster-value/internal/models"
)

const regularTreatment = "Regular"

// ExpandPrinting emits one entry per declared finish with a positive price,
// in nonfoil, foil, etched order.
func ExpandPrinting(p models.CardPrinting) []models.ExpandedEntry {
	var (
		entries []models.ExpandedEntry
		plain   string
		foil    string
	)

	for _, finish := range models.AllFinishes() {
		price, ok := p.PriceFor(finish)
		if !ok {
			continue
		}

		var treatment string
		switch finish {
		case models.FinishFoil:
			if foil == "" {
				foil = TreatmentLabel(p, true)
			}
			treatment = foil
		default:
			if plain == "" {
				plain = TreatmentLabel(p, false)
			}
			treatment = plain
			if finish == models.FinishEtched && treatment == regularTreatment {
				treatment = "Etched"
			}
		}

		entry, err := models.NewExpandedEntry(p, finish, price, treatment)
		if err != nil {
			// PriceFor only returns positive prices
			log.Printf("Finish expander: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// ExpandAll expands every printing, keeping printing order
func ExpandAll(printings []models.CardPrinting) []models.ExpandedEntry {
	entries := make([]models.ExpandedEntry, 0, len(printings)*2)
	for _, p := range printings {
		entries = append(entries, ExpandPrinting(p)...)
	}
	return entries
}

// TreatmentLabel names the cosmetic treatment of a printing for one foil state
func TreatmentLabel(p models.CardPrinting, isFoil bool) string {
	var parts []string
	if p.HasFrameEffect("showcase") {
		parts = append(parts, "Showcase")
	}
	if p.HasFrameEffect("extendedart") {
		parts = append(parts, "Extended Art")
	}
	if p.IsBorderless() {
		parts = append(parts, "Borderless")
	}
	if p.Promo {
		parts = append(parts, "Promo")
	}
	if p.FullArt {
		parts = append(parts, "Full Art")
	}
	if p.HasFrameEffect("etched") {
		parts = append(parts, "Etched")
	}
	if isFoil {
		parts = append(parts, "Foil")
	}
	if suffix := p.Provenance.Label(); suffix != "" {
		parts = append(parts, suffix)
	}

	if len(parts) == 0 {
		return regularTreatment
	}
	return strings.Join(parts, " ")
}
