package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/booster-value/internal/models"
)

func multiFinish(id string, rarity models.Rarity, nonfoil, foil, etched float64) models.CardPrinting {
	prices := map[models.Finish]*float64{}
	var finishes []models.Finish
	for fin, v := range map[models.Finish]float64{
		models.FinishNonfoil: nonfoil,
		models.FinishFoil:    foil,
		models.FinishEtched:  etched,
	} {
		if v > 0 {
			prices[fin] = ptr(v)
		}
	}
	for _, fin := range models.AllFinishes() {
		if prices[fin] != nil {
			finishes = append(finishes, fin)
		}
	}
	return models.NewCardPrinting(models.PrintingFields{
		ID:       id,
		SetCode:  "mkm",
		Rarity:   rarity,
		Finishes: finishes,
		Prices:   prices,
		Booster:  true,
	})
}

func groupingFixture() []models.ExpandedEntry {
	return ExpandAll([]models.CardPrinting{
		multiFinish("cheap", models.RarityUncommon, 1.5, 0, 0),
		multiFinish("rare", models.RarityRare, 10, 25, 0),
		multiFinish("etched", models.RarityMythic, 0, 0, 40),
		multiFinish("mythic", models.RarityMythic, 30, 12, 0),
	})
}

func TestFilterAndGroup_MergesAndSorts(t *testing.T) {
	groups := FilterAndGroup(groupingFixture(), models.DisplayFilter{})
	require.Len(t, groups, 4)

	ids := []string{groups[0].Printing.ID, groups[1].Printing.ID, groups[2].Printing.ID, groups[3].Printing.ID}
	assert.Equal(t, []string{"etched", "mythic", "rare", "cheap"}, ids)

	for _, g := range groups {
		require.NotEmpty(t, g.Finishes)
		assert.Equal(t, g.Finishes[0].Price, g.MaxPrice)
		assert.Equal(t, g.Finishes[0].Treatment, g.Treatment)
		for i := 1; i < len(g.Finishes); i++ {
			assert.LessOrEqual(t, g.Finishes[i].Price, g.Finishes[i-1].Price)
		}
	}

	rare := groups[2]
	assert.True(t, rare.Foil)
	assert.Equal(t, "Foil", rare.Treatment)
	assert.Len(t, rare.Finishes, 2)
}

func TestFilterAndGroup_MinPrice(t *testing.T) {
	groups := FilterAndGroup(groupingFixture(), models.DisplayFilter{MinPrice: 20})

	require.Len(t, groups, 3)
	for _, g := range groups {
		for _, f := range g.Finishes {
			assert.GreaterOrEqual(t, f.Price, 20.0)
		}
	}
	// Only the foil of "rare" clears the bar
	assert.Equal(t, "rare", groups[2].Printing.ID)
	assert.Len(t, groups[2].Finishes, 1)
}

func TestFilterAndGroup_ExcludeRares(t *testing.T) {
	groups := FilterAndGroup(groupingFixture(), models.DisplayFilter{ExcludeRares: true})

	require.Len(t, groups, 1)
	assert.Equal(t, "cheap", groups[0].Printing.ID)
}

func TestFilterAndGroup_ExcludeFoilsKeepsEtched(t *testing.T) {
	groups := FilterAndGroup(groupingFixture(), models.DisplayFilter{ExcludeFoils: true})

	for _, g := range groups {
		assert.False(t, g.Foil, g.Printing.ID)
		for _, f := range g.Finishes {
			assert.NotEqual(t, models.FinishFoil, f.Finish)
		}
	}
	require.NotEmpty(t, groups)
	assert.Equal(t, "etched", groups[0].Printing.ID)

	// "rare" falls back to its nonfoil entry as the representative
	for _, g := range groups {
		if g.Printing.ID == "rare" {
			assert.Equal(t, 10.0, g.MaxPrice)
		}
	}
}

func TestFilterAndGroup_Idempotent(t *testing.T) {
	filters := []models.DisplayFilter{
		{},
		{MinPrice: 11},
		{ExcludeFoils: true},
		{ExcludeRares: true, MinPrice: 1},
	}

	for _, f := range filters {
		once := FilterAndGroup(groupingFixture(), f)
		twice := FilterAndGroup(FlattenGroups(once), f)
		assert.Equal(t, once, twice, "filter %+v", f)
	}
}

func TestFilterAndGroup_EqualPricesKeepFirstSeenOrder(t *testing.T) {
	entries := ExpandAll([]models.CardPrinting{
		printing("first", models.RarityRare, 5),
		printing("second", models.RarityRare, 5),
		printing("third", models.RarityRare, 5),
	})

	groups := FilterAndGroup(entries, models.DisplayFilter{})
	require.Len(t, groups, 3)
	assert.Equal(t, "first", groups[0].Printing.ID)
	assert.Equal(t, "second", groups[1].Printing.ID)
	assert.Equal(t, "third", groups[2].Printing.ID)
}

func TestFilterAndGroup_Empty(t *testing.T) {
	assert.Empty(t, FilterAndGroup(nil, models.DisplayFilter{}))
}
