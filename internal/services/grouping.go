package services

import (
	"log"
	"sort"

	"github.com/codyseavey/booster-value/internal/models"
)

// FilterAndGroup applies the display filters and merges same-card finishes
// into display groups, ordered by their highest price.
func FilterAndGroup(entries []models.ExpandedEntry, filter models.DisplayFilter) []models.DisplayGroup {
	type pending struct {
		printing models.CardPrinting
		finishes []models.FinishPrice
	}

	byID := make(map[string]*pending)
	var order []string

	for _, e := range entries {
		if !passesFilter(e, filter) {
			continue
		}
		g, exists := byID[e.Printing.ID]
		if !exists {
			g = &pending{printing: e.Printing}
			byID[e.Printing.ID] = g
			order = append(order, e.Printing.ID)
		}
		g.finishes = append(g.finishes, models.FinishPrice{
			Finish:    e.Finish,
			Price:     e.Price,
			Treatment: e.Treatment,
		})
	}

	groups := make([]models.DisplayGroup, 0, len(order))
	for _, id := range order {
		g := byID[id]
		group, err := models.NewDisplayGroup(g.printing, g.finishes)
		if err != nil {
			log.Printf("Grouping: %v", err)
			continue
		}
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].MaxPrice > groups[j].MaxPrice
	})
	return groups
}

func passesFilter(e models.ExpandedEntry, filter models.DisplayFilter) bool {
	if e.Price < filter.MinPrice {
		return false
	}
	if filter.ExcludeRares && e.Printing.Rarity.IsRareOrMythic() {
		return false
	}
	if filter.ExcludeFoils && e.Finish.IsFoil() {
		return false
	}
	return true
}

// FlattenGroups turns display groups back into expanded entries, in display order
func FlattenGroups(groups []models.DisplayGroup) []models.ExpandedEntry {
	var entries []models.ExpandedEntry
	for _, g := range groups {
		for _, f := range g.Finishes {
			entries = append(entries, models.ExpandedEntry{
				Printing:  g.Printing,
				Finish:    f.Finish,
				Price:     f.Price,
				Treatment: f.Treatment,
			})
		}
	}
	return entries
}
