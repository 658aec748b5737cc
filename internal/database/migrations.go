package database

import (
	"log"

	"gorm.io/gorm"
)

// normalizeSetCodes lower-cases set codes written by older refresh jobs.
// When two rows collapse onto the same code, the most recently generated
// document wins. Runs before AutoMigrate and is safe to repeat.
func normalizeSetCodes(db *gorm.DB) error {
	if !db.Migrator().HasTable("cached_sets") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM cached_sets
		WHERE set_code != LOWER(set_code)
		AND EXISTS (
			SELECT 1 FROM cached_sets AS newer
			WHERE newer.set_code = LOWER(cached_sets.set_code)
			AND newer.generated_at >= cached_sets.generated_at
		)
	`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Removed %d superseded mixed-case cached_sets rows", result.RowsAffected)
	}

	result = db.Exec(`
		DELETE FROM cached_sets
		WHERE set_code = LOWER(set_code)
		AND EXISTS (
			SELECT 1 FROM cached_sets AS newer
			WHERE LOWER(newer.set_code) = cached_sets.set_code
			AND newer.set_code != cached_sets.set_code
			AND newer.generated_at > cached_sets.generated_at
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	// Several mixed-case spellings of one code ("MKM", "Mkm") would collide
	// on the primary key below; keep only the newest, ties broken by code.
	result = db.Exec(`
		DELETE FROM cached_sets
		WHERE set_code != LOWER(set_code)
		AND EXISTS (
			SELECT 1 FROM cached_sets AS other
			WHERE LOWER(other.set_code) = LOWER(cached_sets.set_code)
			AND other.set_code != cached_sets.set_code
			AND other.set_code != LOWER(other.set_code)
			AND (
				other.generated_at > cached_sets.generated_at
				OR (other.generated_at = cached_sets.generated_at AND other.set_code > cached_sets.set_code)
			)
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	result = db.Exec(`UPDATE cached_sets SET set_code = LOWER(set_code) WHERE set_code != LOWER(set_code)`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Normalized %d cached_sets set codes to lower case", result.RowsAffected)
	}
	return nil
}
