package services

import (
	"github.com/codyseavey/booster-value/internal/models"
)

// Slot probabilities for the simplified pack model. The rare slot is always
// filled; the foil slots are independent bonus approximations.
const (
	RareSlotRareOdds   = 0.875
	RareSlotMythicOdds = 0.125
	FoilRareOdds       = 0.10
	FoilMythicOdds     = 0.02
)

type valueBucket struct {
	odds  float64
	cards map[string]struct{}
	total float64
}

func newValueBucket(odds float64) *valueBucket {
	return &valueBucket{odds: odds, cards: map[string]struct{}{}}
}

func (b *valueBucket) add(e models.ExpandedEntry) {
	b.cards[e.Printing.ID] = struct{}{}
	b.total += e.Price
}

// size is the count of distinct cards, never below 1
func (b *valueBucket) size() int {
	if len(b.cards) == 0 {
		return 1
	}
	return len(b.cards)
}

func (b *valueBucket) value() float64 {
	return b.total * b.odds / float64(b.size())
}

// EstimatePackValue computes the approximate expected value of one pack.
// It must be given the unfiltered pool: display filters describe what the
// user wants to see, not what is in the pack.
func EstimatePackValue(entries []models.ExpandedEntry) models.PackValue {
	rare := newValueBucket(RareSlotRareOdds)
	mythic := newValueBucket(RareSlotMythicOdds)
	foilRare := newValueBucket(FoilRareOdds)
	foilMythic := newValueBucket(FoilMythicOdds)

	for _, e := range entries {
		var bucket *valueBucket
		switch {
		case e.Finish == models.FinishNonfoil && e.Printing.Rarity == models.RarityRare:
			bucket = rare
		case e.Finish == models.FinishNonfoil && e.Printing.Rarity == models.RarityMythic:
			bucket = mythic
		case e.Finish == models.FinishFoil && e.Printing.Rarity == models.RarityRare:
			bucket = foilRare
		case e.Finish == models.FinishFoil && e.Printing.Rarity == models.RarityMythic:
			bucket = foilMythic
		default:
			continue
		}
		bucket.add(e)
	}

	return models.PackValue{
		ExpectedValue:  rare.value() + mythic.value() + foilRare.value() + foilMythic.value(),
		RarePool:       len(rare.cards),
		MythicPool:     len(mythic.cards),
		FoilRarePool:   len(foilRare.cards),
		FoilMythicPool: len(foilMythic.cards),
		Approximate:    true,
	}
}
