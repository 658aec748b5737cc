package models

import (
	"fmt"
	"sort"
)

// ExpandedEntry is one (printing, finish) pair with a resolved price
type ExpandedEntry struct {
	Printing  CardPrinting `json:"printing"`
	Finish    Finish       `json:"finish"`
	Price     float64      `json:"price"`
	Treatment string       `json:"treatment"`
}

// NewExpandedEntry rejects non-positive prices so no zero-price entry can exist.
func NewExpandedEntry(p CardPrinting, finish Finish, price float64, treatment string) (ExpandedEntry, error) {
	if price <= 0 {
		return ExpandedEntry{}, fmt.Errorf("entry %s/%s: price must be positive, got %v", p.ID, finish, price)
	}
	return ExpandedEntry{
		Printing:  p,
		Finish:    finish,
		Price:     price,
		Treatment: treatment,
	}, nil
}

// FinishPrice is one priced finish inside a DisplayGroup
type FinishPrice struct {
	Finish    Finish  `json:"finish"`
	Price     float64 `json:"price"`
	Treatment string  `json:"treatment"`
}

// DisplayGroup is one printing collapsed across all its qualifying finishes.
// Finishes is non-empty and sorted by price descending; MaxPrice equals
// Finishes[0].Price and Treatment/Foil come from that same entry.
type DisplayGroup struct {
	Printing  CardPrinting  `json:"printing"`
	Finishes  []FinishPrice `json:"finishes"`
	MaxPrice  float64       `json:"max_price"`
	Treatment string        `json:"treatment"`
	Foil      bool          `json:"foil"`
}

// NewDisplayGroup sorts the finishes and derives the representative fields.
// Equal prices keep their input order.
func NewDisplayGroup(p CardPrinting, finishes []FinishPrice) (DisplayGroup, error) {
	if len(finishes) == 0 {
		return DisplayGroup{}, fmt.Errorf("group %s: at least one finish is required", p.ID)
	}
	sorted := make([]FinishPrice, len(finishes))
	copy(sorted, finishes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Price > sorted[j].Price
	})

	top := sorted[0]
	return DisplayGroup{
		Printing:  p,
		Finishes:  sorted,
		MaxPrice:  top.Price,
		Treatment: top.Treatment,
		Foil:      top.Finish.IsFoil(),
	}, nil
}

// DisplayFilter holds the user-selected display filters.
// It never affects the pack value estimate.
type DisplayFilter struct {
	MinPrice     float64 `json:"min_price"`
	ExcludeRares bool    `json:"exclude_rares"`
	ExcludeFoils bool    `json:"exclude_foils"`
}

// PackValue is the expected value of opening one pack plus the bucket sizes
// that went into it.
type PackValue struct {
	ExpectedValue  float64 `json:"expected_value"`
	RarePool       int     `json:"rare_pool"`
	MythicPool     int     `json:"mythic_pool"`
	FoilRarePool   int     `json:"foil_rare_pool"`
	FoilMythicPool int     `json:"foil_mythic_pool"`
	Approximate    bool    `json:"approximate"`
}
