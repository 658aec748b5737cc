package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/codyseavey/booster-value/internal/models"
)

// ErrCacheMiss means the cache holds nothing usable for the request.
// It is a fallback signal, never shown to users.
var ErrCacheMiss = errors.New("cache miss")

// CacheStore persists pre-fetched cache documents, one per set
type CacheStore interface {
	Load(ctx context.Context, setCode string) (*models.CacheDocument, error)
	Save(ctx context.Context, doc *models.CacheDocument) error
}

// FileCacheStore keeps one <set>.json file per set in a directory
type FileCacheStore struct {
	dir string
}

func NewFileCacheStore(dir string) *FileCacheStore {
	return &FileCacheStore{dir: dir}
}

func (s *FileCacheStore) path(setCode string) string {
	return filepath.Join(s.dir, strings.ToLower(setCode)+".json")
}

// Load returns ErrCacheMiss when the file does not exist
func (s *FileCacheStore) Load(_ context.Context, setCode string) (*models.CacheDocument, error) {
	data, err := os.ReadFile(s.path(setCode))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file for %s: %w", setCode, err)
	}

	var doc models.CacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse cache file for %s: %w", setCode, err)
	}
	return &doc, nil
}

// Save writes through a temp file so readers never see a partial document
func (s *FileCacheStore) Save(_ context.Context, doc *models.CacheDocument) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode cache document for %s: %w", doc.Set, err)
	}

	final := s.path(doc.Set)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(final)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file for %s: %w", doc.Set, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file for %s: %w", doc.Set, err)
	}
	return os.Rename(tmp.Name(), final)
}

// SQLiteCacheStore keeps cache documents in the cached_sets table
type SQLiteCacheStore struct {
	db *gorm.DB
}

func NewSQLiteCacheStore(db *gorm.DB) *SQLiteCacheStore {
	return &SQLiteCacheStore{db: db}
}

func (s *SQLiteCacheStore) Load(ctx context.Context, setCode string) (*models.CacheDocument, error) {
	var row models.CachedSet
	err := s.db.WithContext(ctx).First(&row, "set_code = ?", strings.ToLower(setCode)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached set %s: %w", setCode, err)
	}

	var doc models.CacheDocument
	if err := json.Unmarshal([]byte(row.Document), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse cached set %s: %w", setCode, err)
	}
	return &doc, nil
}

func (s *SQLiteCacheStore) Save(ctx context.Context, doc *models.CacheDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode cache document for %s: %w", doc.Set, err)
	}

	row := models.CachedSet{
		SetCode:     strings.ToLower(doc.Set),
		Document:    string(data),
		RunID:       doc.RunID,
		RecordCount: len(doc.Collector),
		GeneratedAt: doc.GeneratedAt,
	}

	// Upsert on the set code
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "set_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "run_id", "record_count", "generated_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save cached set %s: %w", doc.Set, err)
	}
	return nil
}

// StaticCacheSource serves normalized-ready records out of a CacheStore
type StaticCacheSource struct {
	store CacheStore
}

func NewStaticCacheSource(store CacheStore) *StaticCacheSource {
	return &StaticCacheSource{store: store}
}

// Records returns the cached records for a set and booster product.
// A missing document or an empty product list is ErrCacheMiss.
func (s *StaticCacheSource) Records(ctx context.Context, setCode string, booster models.Booster) ([]json.RawMessage, error) {
	doc, err := s.store.Load(ctx, setCode)
	if err != nil {
		return nil, err
	}
	if doc.Set != "" && !strings.EqualFold(doc.Set, setCode) {
		log.Printf("Static cache: document for %s claims set %s, ignoring it", setCode, doc.Set)
		return nil, ErrCacheMiss
	}

	records := doc.Records(booster)
	if len(records) == 0 {
		return nil, ErrCacheMiss
	}
	return records, nil
}
