// Package sqlite implements the local fallback store: a single-file database
// holding one JSON snapshot per collection, used when no remote store is
// reachable.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

var (
	_ model.ContentStore = (*Store)(nil)
	_ model.SiteStore    = (*Store)(nil)
)

const (
	createTable = `CREATE TABLE IF NOT EXISTS snapshots (collection TEXT PRIMARY KEY, payload TEXT NOT NULL, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`

	selectSnapshot = `SELECT payload FROM snapshots WHERE collection = ?`

	upsertSnapshot = `INSERT INTO snapshots (collection, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT (collection) DO UPDATE SET payload = excluded.payload, updated_at = CURRENT_TIMESTAMP`

	siteConfigKey = "__site_config"
)

// Store is a local, single-site content store. Each collection is persisted
// as one serialized snapshot; the in-memory copy and the durable copy are
// written together, and a persistence failure keeps the in-memory copy.
type Store struct {
	db     *sql.DB
	logger *logger.Logger

	mu    sync.Mutex
	cache map[string][]model.Item
}

// Open opens (or creates) the fallback database at path.
func Open(path string, logger *logger.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback store: %w", err)
	}

	return New(db, logger)
}

// New wraps an existing database handle. Used by Open and by tests.
func New(db *sql.DB, logger *logger.Logger) (*Store, error) {
	if _, err := db.Exec(createTable); err != nil {
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger,
		cache:  make(map[string][]model.Item),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) List(ctx context.Context, collection model.Collection, _ uuid.UUID) ([]model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx, collection)
	if err != nil {
		return nil, err
	}

	out := make([]model.Item, len(items))
	copy(out, items)
	sortItems(collection, out)

	return out, nil
}

func (s *Store) Create(ctx context.Context, collection model.Collection, item model.Item) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx, collection)
	if err != nil {
		return model.Item{}, err
	}

	now := time.Now()
	item.ID = newLocalID(now)
	item.CreatedAt = now
	item.UpdatedAt = now

	items = append([]model.Item{item}, items...)
	s.commitLocked(ctx, collection, items)

	return item, nil
}

func (s *Store) Update(ctx context.Context, collection model.Collection, _ uuid.UUID, id string, patch model.Patch) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx, collection)
	if err != nil {
		return model.Item{}, err
	}

	for i, item := range items {
		if item.ID != id {
			continue
		}

		updated := patch.Apply(item)
		updated.UpdatedAt = time.Now()
		items[i] = updated
		s.commitLocked(ctx, collection, items)

		return updated, nil
	}

	return model.Item{}, model.ErrNotFound
}

func (s *Store) Delete(ctx context.Context, collection model.Collection, _ uuid.UUID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx, collection)
	if err != nil {
		return err
	}

	for i, item := range items {
		if item.ID != id {
			continue
		}

		items = append(items[:i], items[i+1:]...)
		s.commitLocked(ctx, collection, items)

		return nil
	}

	return model.ErrNotFound
}

// loadLocked returns the working copy for a collection, reading the persisted
// snapshot on first use and seeding the built-in dataset when none exists.
func (s *Store) loadLocked(ctx context.Context, collection model.Collection) ([]model.Item, error) {
	if items, ok := s.cache[collection.Name]; ok {
		return items, nil
	}

	var payload []byte
	err := s.db.QueryRowContext(ctx, selectSnapshot, collection.Name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		items := seedItems(collection)
		if len(items) > 0 {
			s.commitLocked(ctx, collection, items)
		} else {
			s.cache[collection.Name] = items
		}
		return s.cache[collection.Name], nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot for %s: %w", collection.Name, err)
	}

	var items []model.Item
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", collection.Name, err)
	}

	s.cache[collection.Name] = items

	return items, nil
}

// commitLocked updates the in-memory copy and persists the snapshot. A
// persistence failure is logged and the in-memory copy is kept.
func (s *Store) commitLocked(ctx context.Context, collection model.Collection, items []model.Item) {
	s.cache[collection.Name] = items
	s.persistLocked(ctx, collection.Name, items)
}

func (s *Store) persistLocked(ctx context.Context, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode snapshot", "collection", key, "error", err)
		return
	}

	if _, err := s.db.ExecContext(ctx, upsertSnapshot, key, payload); err != nil {
		s.logger.Error("failed to persist snapshot", "collection", key, "error", err)
	}
}

// GetOrCreateSite records nothing: the local store is bound to exactly one
// site and carries no identity of its own.
func (s *Store) GetOrCreateSite(_ context.Context, _ model.Site) error {
	return nil
}

func (s *Store) GetOrCreateConfig(ctx context.Context, siteID uuid.UUID) (model.SiteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx, selectSnapshot, siteConfigKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		config := model.DefaultSiteConfig(siteID)
		config.UpdatedAt = time.Now()
		s.persistLocked(ctx, siteConfigKey, config)
		return config, nil
	}
	if err != nil {
		return model.SiteConfig{}, fmt.Errorf("failed to read site config snapshot: %w", err)
	}

	var config model.SiteConfig
	if err := json.Unmarshal(payload, &config); err != nil {
		return model.SiteConfig{}, fmt.Errorf("failed to decode site config snapshot: %w", err)
	}

	config.Status = model.ParseSiteStatus(string(config.Status))

	return config, nil
}

func (s *Store) UpdateStatus(ctx context.Context, siteID uuid.UUID, status model.SiteStatus) error {
	return s.mutateConfig(ctx, siteID, func(config *model.SiteConfig) {
		config.Status = status
	})
}

func (s *Store) UpdateLogo(ctx context.Context, siteID uuid.UUID, logoURL string) error {
	return s.mutateConfig(ctx, siteID, func(config *model.SiteConfig) {
		config.LogoURL = logoURL
	})
}

func (s *Store) mutateConfig(ctx context.Context, siteID uuid.UUID, mutate func(*model.SiteConfig)) error {
	config, err := s.GetOrCreateConfig(ctx, siteID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&config)
	config.UpdatedAt = time.Now()
	s.persistLocked(ctx, siteConfigKey, config)

	return nil
}

func sortItems(collection model.Collection, items []model.Item) {
	if collection.Order == model.OrderDisplayAsc {
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].DisplayOrder != items[j].DisplayOrder {
				return items[i].DisplayOrder < items[j].DisplayOrder
			}
			return items[i].CreatedAt.After(items[j].CreatedAt)
		})
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// newLocalID builds an identifier unique within the process lifetime:
// millisecond timestamp plus a short random suffix.
func newLocalID(now time.Time) string {
	return fmt.Sprintf("%d-%04x", now.UnixMilli(), rand.Intn(0x10000))
}
