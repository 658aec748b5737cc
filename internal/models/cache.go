package models

import (
	"encoding/json"
	"time"
)

// CompactFinish is one priced finish in a cache file record
type CompactFinish struct {
	Finish Finish   `json:"finish"`
	Price  *float64 `json:"price"`
}

// CompactCard is the record shape written to the static cache files.
type CompactCard struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Set             string          `json:"set"`
	CollectorNumber string          `json:"cn"`
	Rarity          string          `json:"rarity"`
	Booster         bool            `json:"booster"`
	Image           string          `json:"image,omitempty"`
	URI             string          `json:"uri,omitempty"`
	Finishes        []CompactFinish `json:"finishes"`
	Showcase        bool            `json:"showcase,omitempty"`
	ExtendedArt     bool            `json:"extendedArt,omitempty"`
	Borderless      bool            `json:"borderless,omitempty"`
	FullArt         bool            `json:"fullArt,omitempty"`
	Promo           bool            `json:"promo,omitempty"`
	EtchedFrame     bool            `json:"etchedFrame,omitempty"`
	PromoTypes      []string        `json:"promoTypes,omitempty"`
	FrameEffects    []string        `json:"frameEffects,omitempty"`
	Source          Provenance      `json:"source,omitempty"`
}

// ToCompact converts a printing into its cache file record
func ToCompact(c CardPrinting) CompactCard {
	finishes := make([]CompactFinish, 0, len(c.Finishes))
	for _, f := range c.Finishes {
		cf := CompactFinish{Finish: f}
		if p, ok := c.Prices[f]; ok {
			price := p
			cf.Price = &price
		}
		finishes = append(finishes, cf)
	}
	return CompactCard{
		ID:              c.ID,
		Name:            c.Name,
		Set:             c.SetCode,
		CollectorNumber: c.CollectorNumber,
		Rarity:          string(c.Rarity),
		Booster:         c.Booster,
		Image:           c.ImageURL,
		URI:             c.DetailURL,
		Finishes:        finishes,
		Showcase:        c.HasFrameEffect("showcase"),
		ExtendedArt:     c.HasFrameEffect("extendedart"),
		Borderless:      c.IsBorderless(),
		FullArt:         c.FullArt,
		Promo:           c.Promo,
		EtchedFrame:     c.HasFrameEffect("etched"),
		PromoTypes:      c.PromoTypes,
		FrameEffects:    c.FrameEffects,
		Source:          c.Provenance,
	}
}

// CacheDocument is one static cache file: every cached record for a set,
// split by booster product. Records stay raw so the normalizer sees exactly
// what was written, whatever version of the refresh job wrote it.
type CacheDocument struct {
	Set         string            `json:"set"`
	GeneratedAt time.Time         `json:"generated_at"`
	RunID       string            `json:"run_id,omitempty"`
	Play        []json.RawMessage `json:"play"`
	Collector   []json.RawMessage `json:"collector"`
}

// Records returns the raw records for a booster product
func (d *CacheDocument) Records(b Booster) []json.RawMessage {
	if b == BoosterCollector {
		return d.Collector
	}
	return d.Play
}

// CachedSet is the sqlite row backing the database cache store
type CachedSet struct {
	SetCode     string    `json:"set_code" gorm:"primaryKey"`
	Document    string    `json:"document" gorm:"type:text;not null"`
	RunID       string    `json:"run_id" gorm:"index"`
	RecordCount int       `json:"record_count"`
	GeneratedAt time.Time `json:"generated_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SetInfo is one entry of the set catalog
type SetInfo struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ReleasedAt string `json:"released_at"`
}

// LookupParams are the plain parameters behind the query-string contract
type LookupParams struct {
	SetCode       string        `json:"set"`
	Booster       Booster       `json:"booster"`
	Filter        DisplayFilter `json:"filter"`
	IncludeExtras bool          `json:"include_extras"`
}

// LookupResult is what one user action gets back
type LookupResult struct {
	SetCode   string         `json:"set"`
	Booster   Booster        `json:"booster"`
	Groups    []DisplayGroup `json:"groups"`
	PackValue PackValue      `json:"pack_value"`
	PoolSize  int            `json:"pool_size"`
	Source    string         `json:"source"` // "memory", "cache" or "live"
	RequestID string         `json:"request_id,omitempty"`
}
