package models

import (
	"slices"
	"strings"
)

type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityMythic   Rarity = "mythic"
	RaritySpecial  Rarity = "special"
	RarityBonus    Rarity = "bonus"
)

// ParseRarity maps an upstream rarity string to a Rarity.
// Unknown values return an empty Rarity.
func ParseRarity(s string) Rarity {
	switch r := Rarity(strings.ToLower(strings.TrimSpace(s))); r {
	case RarityCommon, RarityUncommon, RarityRare, RarityMythic, RaritySpecial, RarityBonus:
		return r
	default:
		return ""
	}
}

// IsRareOrMythic is true for the rarities the exclude-rares filter drops
func (r Rarity) IsRareOrMythic() bool {
	return r == RarityRare || r == RarityMythic
}

// Finish is a physical printing variant with its own market price
type Finish string

const (
	FinishNonfoil Finish = "nonfoil"
	FinishFoil    Finish = "foil"
	FinishEtched  Finish = "etched"
)

// AllFinishes returns the finishes in expansion order
func AllFinishes() []Finish {
	return []Finish{FinishNonfoil, FinishFoil, FinishEtched}
}

// ParseFinish returns the Finish for s, or false if s names no known finish.
func ParseFinish(s string) (Finish, bool) {
	switch f := Finish(strings.ToLower(strings.TrimSpace(s))); f {
	case FinishNonfoil, FinishFoil, FinishEtched:
		return f, true
	default:
		return "", false
	}
}

// IsFoil returns true only for the traditional foil finish.
// Etched is presented as its own treatment and is NOT foil for filtering.
func (f Finish) IsFoil() bool {
	return f == FinishFoil
}

// Provenance marks printings that came from a supplementary pool
type Provenance string

const (
	ProvenanceNone         Provenance = ""
	ProvenanceTheList      Provenance = "the_list"
	ProvenanceSpecialGuest Provenance = "special_guest"
	ProvenanceBonusSheet   Provenance = "bonus_sheet"
)

// Label is the treatment suffix shown for the provenance, if any
func (p Provenance) Label() string {
	switch p {
	case ProvenanceTheList:
		return "The List"
	case ProvenanceSpecialGuest:
		return "Special Guest"
	default:
		return ""
	}
}

// CardPrinting is one specific print of one card in one set.
// Values are immutable once built; use NewCardPrinting or WithProvenance.
type CardPrinting struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	SetCode         string             `json:"set_code"`
	CollectorNumber string             `json:"collector_number"`
	Rarity          Rarity             `json:"rarity"`
	Finishes        []Finish           `json:"finishes"`
	Prices          map[Finish]float64 `json:"prices"` // absent key = no price
	PromoTypes      []string           `json:"promo_types"`
	FrameEffects    []string           `json:"frame_effects"`
	BorderColor     string             `json:"border_color"`
	FullArt         bool               `json:"full_art"`
	Promo           bool               `json:"promo"`
	Booster         bool               `json:"booster"`
	ImageURL        string             `json:"image_url"`
	DetailURL       string             `json:"detail_url"`
	Provenance      Provenance         `json:"provenance,omitempty"`
}

// PrintingFields enumerates every input to NewCardPrinting.
// Prices holds nil for a finish with no known price.
type PrintingFields struct {
	ID              string
	Name            string
	SetCode         string
	CollectorNumber string
	Rarity          Rarity
	Finishes        []Finish
	Prices          map[Finish]*float64
	PromoTypes      []string
	FrameEffects    []string
	BorderColor     string
	FullArt         bool
	Promo           bool
	Booster         bool
	ImageURL        string
	DetailURL       string
	Provenance      Provenance
}

// NewCardPrinting builds a CardPrinting, copying every slice and map so the
// result shares no state with the input.
func NewCardPrinting(f PrintingFields) CardPrinting {
	finishes := make([]Finish, 0, len(f.Finishes))
	for _, fin := range f.Finishes {
		if !slices.Contains(finishes, fin) {
			finishes = append(finishes, fin)
		}
	}

	prices := make(map[Finish]float64, len(f.Prices))
	for fin, p := range f.Prices {
		if p != nil {
			prices[fin] = *p
		}
	}

	return CardPrinting{
		ID:              f.ID,
		Name:            f.Name,
		SetCode:         strings.ToLower(f.SetCode),
		CollectorNumber: f.CollectorNumber,
		Rarity:          f.Rarity,
		Finishes:        finishes,
		Prices:          prices,
		PromoTypes:      lowerAll(f.PromoTypes),
		FrameEffects:    lowerAll(f.FrameEffects),
		BorderColor:     strings.ToLower(f.BorderColor),
		FullArt:         f.FullArt,
		Promo:           f.Promo,
		Booster:         f.Booster,
		ImageURL:        f.ImageURL,
		DetailURL:       f.DetailURL,
		Provenance:      f.Provenance,
	}
}

// HasFinish reports whether the printing declares the finish available
func (c CardPrinting) HasFinish(f Finish) bool {
	return slices.Contains(c.Finishes, f)
}

// PriceFor returns the positive price for a declared finish.
func (c CardPrinting) PriceFor(f Finish) (float64, bool) {
	if !c.HasFinish(f) {
		return 0, false
	}
	p, ok := c.Prices[f]
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

// Usable is false when no declared finish carries a positive price.
// Such printings are dropped before classification.
func (c CardPrinting) Usable() bool {
	for _, f := range c.Finishes {
		if _, ok := c.PriceFor(f); ok {
			return true
		}
	}
	return false
}

func (c CardPrinting) HasFrameEffect(effect string) bool {
	return slices.Contains(c.FrameEffects, effect)
}

func (c CardPrinting) IsBorderless() bool {
	return c.BorderColor == "borderless"
}

// WithProvenance returns a copy tagged as coming from a supplementary pool
func (c CardPrinting) WithProvenance(p Provenance) CardPrinting {
	out := c
	out.Finishes = slices.Clone(c.Finishes)
	out.PromoTypes = slices.Clone(c.PromoTypes)
	out.FrameEffects = slices.Clone(c.FrameEffects)
	out.Prices = make(map[Finish]float64, len(c.Prices))
	for k, v := range c.Prices {
		out.Prices[k] = v
	}
	out.Provenance = p
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
