package services

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/codyseavey/booster-value/internal/models"
)

// rawFields is a record split into its top-level fields. Every field is
// decoded on its own so one drifted field cannot sink the whole record.
type rawFields map[string]json.RawMessage

// NormalizeRecord converts a Scryfall card object or a compact cache record
// into a CardPrinting. It returns false for records without an id or without
// any priced finish.
func NormalizeRecord(raw json.RawMessage) (models.CardPrinting, bool) {
	var fields rawFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.CardPrinting{}, false
	}

	var printing models.CardPrinting
	if _, ok := fields["prices"]; ok {
		printing = normalizeScryfall(fields)
	} else {
		printing = normalizeCompact(fields)
	}

	if printing.ID == "" || !printing.Usable() {
		return models.CardPrinting{}, false
	}
	return printing, true
}

// NormalizeRecords normalizes a batch, dropping unusable records
func NormalizeRecords(raws []json.RawMessage) []models.CardPrinting {
	out := make([]models.CardPrinting, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		p, ok := NormalizeRecord(raw)
		if !ok {
			dropped++
			continue
		}
		out = append(out, p)
	}
	if dropped > 0 {
		log.Printf("Normalizer: dropped %d of %d records without a usable price", dropped, len(raws))
	}
	return out
}

func normalizeScryfall(f rawFields) models.CardPrinting {
	finishes := parseFinishNames(f.strings("finishes"))

	prices := map[models.Finish]*float64{}
	var priceFields rawFields
	if err := json.Unmarshal(f["prices"], &priceFields); err == nil {
		prices[models.FinishNonfoil] = priceFields.price("usd")
		prices[models.FinishFoil] = priceFields.price("usd_foil")
		prices[models.FinishEtched] = priceFields.price("usd_etched")
	}

	// Older records predate the finishes array; derive it from the prices
	if len(finishes) == 0 {
		for _, fin := range models.AllFinishes() {
			if prices[fin] != nil {
				finishes = append(finishes, fin)
			}
		}
	}

	return models.NewCardPrinting(models.PrintingFields{
		ID:              f.string("id"),
		Name:            f.string("name"),
		SetCode:         f.string("set"),
		CollectorNumber: f.string("collector_number"),
		Rarity:          models.ParseRarity(f.string("rarity")),
		Finishes:        finishes,
		Prices:          prices,
		PromoTypes:      f.strings("promo_types"),
		FrameEffects:    f.strings("frame_effects"),
		BorderColor:     f.string("border_color"),
		FullArt:         f.bool("full_art"),
		Promo:           f.bool("promo"),
		Booster:         f.bool("booster"),
		ImageURL:        scryfallImage(f),
		DetailURL:       f.string("scryfall_uri"),
	})
}

// scryfallImage prefers the card's own image and falls back to the first face
func scryfallImage(f rawFields) string {
	var images rawFields
	if err := json.Unmarshal(f["image_uris"], &images); err == nil {
		if normal := images.string("normal"); normal != "" {
			return normal
		}
	}

	var faces []rawFields
	if err := json.Unmarshal(f["card_faces"], &faces); err == nil && len(faces) > 0 {
		if err := json.Unmarshal(faces[0]["image_uris"], &images); err == nil {
			return images.string("normal")
		}
	}
	return ""
}

func normalizeCompact(f rawFields) models.CardPrinting {
	var finishes []models.Finish
	prices := map[models.Finish]*float64{}

	var entries []rawFields
	if err := json.Unmarshal(f["finishes"], &entries); err == nil {
		for _, e := range entries {
			fin, ok := models.ParseFinish(e.string("finish"))
			if !ok {
				continue
			}
			finishes = append(finishes, fin)
			prices[fin] = e.price("price")
		}
	}

	frames := f.strings("frameEffects")
	if f.bool("showcase") {
		frames = append(frames, "showcase")
	}
	if f.bool("extendedArt") {
		frames = append(frames, "extendedart")
	}
	if f.bool("etchedFrame") {
		frames = append(frames, "etched")
	}

	border := ""
	if f.bool("borderless") {
		border = "borderless"
	}

	number := f.string("cn")
	if number == "" {
		number = f.string("collector_number")
	}

	return models.NewCardPrinting(models.PrintingFields{
		ID:              f.string("id"),
		Name:            f.string("name"),
		SetCode:         f.string("set"),
		CollectorNumber: number,
		Rarity:          models.ParseRarity(f.string("rarity")),
		Finishes:        finishes,
		Prices:          prices,
		PromoTypes:      f.strings("promoTypes"),
		FrameEffects:    dedupe(frames),
		BorderColor:     border,
		FullArt:         f.bool("fullArt"),
		Promo:           f.bool("promo"),
		Booster:         f.bool("booster"),
		ImageURL:        f.string("image"),
		DetailURL:       f.string("uri"),
		Provenance:      parseProvenance(f.string("source")),
	})
}

func parseFinishNames(names []string) []models.Finish {
	var out []models.Finish
	for _, n := range names {
		if fin, ok := models.ParseFinish(n); ok {
			out = append(out, fin)
		}
	}
	return out
}

func parseProvenance(s string) models.Provenance {
	switch p := models.Provenance(strings.ToLower(s)); p {
	case models.ProvenanceTheList, models.ProvenanceSpecialGuest, models.ProvenanceBonusSheet:
		return p
	default:
		return models.ProvenanceNone
	}
}

func (f rawFields) string(key string) string {
	var s string
	if err := json.Unmarshal(f[key], &s); err != nil {
		return ""
	}
	return s
}

func (f rawFields) bool(key string) bool {
	var b bool
	if err := json.Unmarshal(f[key], &b); err != nil {
		return false
	}
	return b
}

// strings decodes an array of strings, skipping non-string elements
func (f rawFields) strings(key string) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(f[key], &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// price accepts a JSON number or a numeric string. Null, missing and
// unparseable values all mean "no price".
func (f rawFields) price(key string) *float64 {
	raw, ok := f[key]
	if !ok || string(raw) == "null" {
		return nil
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &n
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
