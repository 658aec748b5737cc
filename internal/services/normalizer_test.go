package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codyseavey/booster-value/internal/models"
)

func TestNormalizeRecord_ScryfallCard(t *testing.T) {
	raw := json.RawMessage(`{
		"object": "card",
		"id": "a1",
		"name": "Massacre Girl, Known Killer",
		"set": "MKM",
		"collector_number": "332",
		"rarity": "mythic",
		"finishes": ["nonfoil", "foil"],
		"prices": {"usd": "24.50", "usd_foil": "31.10", "usd_etched": null},
		"promo_types": ["Serialized"],
		"frame_effects": ["showcase"],
		"border_color": "borderless",
		"full_art": false,
		"promo": false,
		"booster": true,
		"scryfall_uri": "https://scryfall.com/card/mkm/332",
		"image_uris": {"normal": "https://img/normal.jpg"}
	}`)

	p, ok := NormalizeRecord(raw)
	require.True(t, ok)

	assert.Equal(t, "a1", p.ID)
	assert.Equal(t, "mkm", p.SetCode)
	assert.Equal(t, "332", p.CollectorNumber)
	assert.Equal(t, models.RarityMythic, p.Rarity)
	assert.Equal(t, []models.Finish{models.FinishNonfoil, models.FinishFoil}, p.Finishes)
	assert.InDelta(t, 24.50, p.Prices[models.FinishNonfoil], 0.001)
	assert.InDelta(t, 31.10, p.Prices[models.FinishFoil], 0.001)
	assert.NotContains(t, p.Prices, models.FinishEtched)
	assert.Equal(t, []string{"serialized"}, p.PromoTypes)
	assert.True(t, p.IsBorderless())
	assert.True(t, p.Booster)
	assert.Equal(t, "https://img/normal.jpg", p.ImageURL)
	assert.Equal(t, "https://scryfall.com/card/mkm/332", p.DetailURL)
}

func TestNormalizeRecord_DoubleFacedImage(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "dfc",
		"set": "mkm",
		"prices": {"usd": "3.00"},
		"finishes": ["nonfoil"],
		"card_faces": [{"image_uris": {"normal": "https://img/front.jpg"}}, {"image_uris": {"normal": "https://img/back.jpg"}}]
	}`)

	p, ok := NormalizeRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "https://img/front.jpg", p.ImageURL)
}

func TestNormalizeRecord_DerivesFinishesFromPrices(t *testing.T) {
	raw := json.RawMessage(`{"id": "old", "set": "mkm", "prices": {"usd": null, "usd_foil": "4.00", "usd_etched": "6.00"}}`)

	p, ok := NormalizeRecord(raw)
	require.True(t, ok)
	assert.Equal(t, []models.Finish{models.FinishFoil, models.FinishEtched}, p.Finishes)
}

func TestNormalizeRecord_CompactRecord(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "c1",
		"name": "Leyline of the Guildpact",
		"set": "mkm",
		"cn": "217",
		"rarity": "rare",
		"booster": true,
		"image": "https://img/c1.jpg",
		"uri": "https://scryfall.com/card/mkm/217",
		"finishes": [
			{"finish": "nonfoil", "price": 8.25},
			{"finish": "foil", "price": "11.40"},
			{"finish": "etched", "price": null}
		],
		"showcase": true,
		"borderless": true,
		"source": "special_guest"
	}`)

	p, ok := NormalizeRecord(raw)
	require.True(t, ok)

	assert.Equal(t, "217", p.CollectorNumber)
	assert.Equal(t, models.RarityRare, p.Rarity)
	assert.InDelta(t, 8.25, p.Prices[models.FinishNonfoil], 0.001)
	assert.InDelta(t, 11.40, p.Prices[models.FinishFoil], 0.001)
	_, etched := p.PriceFor(models.FinishEtched)
	assert.False(t, etched)
	assert.True(t, p.HasFrameEffect("showcase"))
	assert.True(t, p.IsBorderless())
	assert.Equal(t, models.ProvenanceSpecialGuest, p.Provenance)
	assert.Equal(t, "https://img/c1.jpg", p.ImageURL)
}

func TestNormalizeRecord_CompactRoundTrip(t *testing.T) {
	original := models.NewCardPrinting(models.PrintingFields{
		ID:              "rt",
		Name:            "Round Trip",
		SetCode:         "otj",
		CollectorNumber: "300",
		Rarity:          models.RarityMythic,
		Finishes:        []models.Finish{models.FinishNonfoil, models.FinishFoil},
		Prices:          map[models.Finish]*float64{models.FinishNonfoil: ptr(10), models.FinishFoil: ptr(14)},
		FrameEffects:    []string{"extendedart", "etched"},
		BorderColor:     "black",
		Booster:         false,
	})

	data, err := json.Marshal(models.ToCompact(original))
	require.NoError(t, err)

	p, ok := NormalizeRecord(data)
	require.True(t, ok)
	assert.Equal(t, original.ID, p.ID)
	assert.Equal(t, original.Finishes, p.Finishes)
	assert.Equal(t, original.Prices, p.Prices)
	assert.ElementsMatch(t, original.FrameEffects, p.FrameEffects)
	assert.False(t, p.Booster)
}

func TestNormalizeRecord_ToleratesDriftedFields(t *testing.T) {
	// rarity is a number, promo_types holds a non-string and booster is a string
	raw := json.RawMessage(`{
		"id": "drift",
		"set": "mkm",
		"rarity": 4,
		"finishes": ["nonfoil", "glossy"],
		"prices": {"usd": 2.5},
		"promo_types": ["boosterfun", 7],
		"booster": "yes"
	}`)

	p, ok := NormalizeRecord(raw)
	require.True(t, ok)
	assert.Equal(t, models.Rarity(""), p.Rarity)
	assert.Equal(t, []models.Finish{models.FinishNonfoil}, p.Finishes)
	assert.InDelta(t, 2.5, p.Prices[models.FinishNonfoil], 0.001)
	assert.Equal(t, []string{"boosterfun"}, p.PromoTypes)
	assert.False(t, p.Booster)
}

func TestNormalizeRecord_DropsUnusable(t *testing.T) {
	tests := map[string]string{
		"no id":         `{"set": "mkm", "prices": {"usd": "1.00"}, "finishes": ["nonfoil"]}`,
		"no price":      `{"id": "x", "set": "mkm", "prices": {"usd": null}, "finishes": ["nonfoil"]}`,
		"zero price":    `{"id": "x", "set": "mkm", "prices": {"usd": "0.00"}, "finishes": ["nonfoil"]}`,
		"bad price":     `{"id": "x", "set": "mkm", "prices": {"usd": "n/a"}, "finishes": ["nonfoil"]}`,
		"not an object": `["x"]`,
		"compact empty": `{"id": "x", "set": "mkm", "finishes": []}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := NormalizeRecord(json.RawMessage(raw))
			assert.False(t, ok)
		})
	}
}

func TestNormalizeRecords_DropsAndKeepsOrder(t *testing.T) {
	records := []json.RawMessage{
		scryfallRecord("mkm", "1", "1", "rare", "5.00", true),
		json.RawMessage(`{"id": "bad", "prices": {}}`),
		scryfallRecord("mkm", "2", "2", "rare", "3.00", true),
	}

	out := NormalizeRecords(records)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "2", out[1].ID)
}
