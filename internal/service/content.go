package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

// SiteScope supplies the resolved site id content operations are scoped by.
type SiteScope interface {
	SiteID() (uuid.UUID, bool)
}

// Content is the optimistic CRUD layer over one collection. It owns an
// in-memory cache of the last successful read; writes go through an explicit
// snapshot / speculative-apply / rollback protocol so the cache never shows a
// write that did not durably succeed.
type Content struct {
	collection model.Collection
	site       SiteScope
	store      model.ContentStore
	fallback   model.ContentStore
	logger     *logger.Logger

	mu      sync.Mutex
	items   []model.Item
	fetched bool
	loading bool
}

// NewContent creates the store for one collection. fallback may be nil; when
// set, operations that fail because the remote is unreachable are retried
// against it.
func NewContent(collection model.Collection, site SiteScope, store model.ContentStore, fallback model.ContentStore, logger *logger.Logger) *Content {
	return &Content{
		collection: collection,
		site:       site,
		store:      store,
		fallback:   fallback,
		logger:     logger,
	}
}

func (c *Content) Collection() model.Collection {
	return c.collection
}

// Loading is true only during the initial fetch; create/update/delete carry
// their own transient state at the caller.
func (c *Content) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// List refreshes the cache from the store and returns it. On a read failure
// the last good cache is returned alongside the error: stale-but-available
// beats empty-but-fresh.
func (c *Content) List(ctx context.Context) ([]model.Item, error) {
	siteID, ok := c.site.SiteID()
	if !ok {
		return c.cached(), model.ErrSiteNotReady
	}

	c.mu.Lock()
	if !c.fetched {
		c.loading = true
	}
	c.mu.Unlock()

	items, err := c.listFrom(ctx, siteID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		return copyItems(c.items), fmt.Errorf("failed to list %s: %w", c.collection.Name, err)
	}
	c.items = items
	c.fetched = true

	return copyItems(c.items), nil
}

// Create persists a new record built from the caller's fields plus derived
// ones (site id, slug). The cache speculatively shows the record and rolls
// back if the write fails.
func (c *Content) Create(ctx context.Context, fields map[string]any) (model.Item, error) {
	siteID, ok := c.site.SiteID()
	if !ok {
		return model.Item{}, model.ErrSiteNotReady
	}

	item := buildItem(c.collection, siteID, fields, time.Now())

	c.mu.Lock()
	snapshot := copyItems(c.items)
	c.items = append([]model.Item{item}, c.items...)
	c.mu.Unlock()

	saved, err := c.createIn(ctx, item)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.items = snapshot
		return model.Item{}, fmt.Errorf("failed to create %s item: %w", c.collection.Name, err)
	}
	c.replaceLocked(item.ID, saved)

	return saved, nil
}

// Update persists a partial merge. The cache speculatively applies the patch
// and rolls back if the write fails.
func (c *Content) Update(ctx context.Context, id string, fields map[string]any) (model.Item, error) {
	siteID, ok := c.site.SiteID()
	if !ok {
		return model.Item{}, model.ErrSiteNotReady
	}

	patch := buildPatch(fields)

	c.mu.Lock()
	snapshot := copyItems(c.items)
	for i, item := range c.items {
		if item.ID == id {
			c.items[i] = patch.Apply(item)
			break
		}
	}
	c.mu.Unlock()

	updated, err := c.updateIn(ctx, siteID, id, patch)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.items = snapshot
		return model.Item{}, fmt.Errorf("failed to update %s item: %w", c.collection.Name, err)
	}
	c.replaceLocked(id, updated)

	return updated, nil
}

// Delete removes a record. The caller is responsible for having obtained
// explicit confirmation first. The cached record stays visible until the
// remote delete succeeds.
func (c *Content) Delete(ctx context.Context, id string) error {
	siteID, ok := c.site.SiteID()
	if !ok {
		return model.ErrSiteNotReady
	}

	if err := c.deleteIn(ctx, siteID, id); err != nil {
		return fmt.Errorf("failed to delete %s item: %w", c.collection.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}

	return nil
}

func (c *Content) cached() []model.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyItems(c.items)
}

// replaceLocked swaps the cache entry carrying id for the authoritative
// record returned by the store.
func (c *Content) replaceLocked(id string, saved model.Item) {
	for i, item := range c.items {
		if item.ID == id || item.ID == saved.ID {
			c.items[i] = saved
			return
		}
	}
}

func (c *Content) listFrom(ctx context.Context, siteID uuid.UUID) ([]model.Item, error) {
	items, err := c.store.List(ctx, c.collection, siteID)
	if c.useFallback(err) {
		return c.fallback.List(ctx, c.collection, siteID)
	}
	return items, err
}

func (c *Content) createIn(ctx context.Context, item model.Item) (model.Item, error) {
	saved, err := c.store.Create(ctx, c.collection, item)
	if c.useFallback(err) {
		return c.fallback.Create(ctx, c.collection, item)
	}
	return saved, err
}

func (c *Content) updateIn(ctx context.Context, siteID uuid.UUID, id string, patch model.Patch) (model.Item, error) {
	updated, err := c.store.Update(ctx, c.collection, siteID, id, patch)
	if c.useFallback(err) {
		return c.fallback.Update(ctx, c.collection, siteID, id, patch)
	}
	return updated, err
}

func (c *Content) deleteIn(ctx context.Context, siteID uuid.UUID, id string) error {
	err := c.store.Delete(ctx, c.collection, siteID, id)
	if c.useFallback(err) {
		return c.fallback.Delete(ctx, c.collection, siteID, id)
	}
	return err
}

func (c *Content) useFallback(err error) bool {
	if err == nil || c.fallback == nil || !errors.Is(err, model.ErrRemoteUnavailable) {
		return false
	}
	c.logger.Warn("remote store unavailable, using local fallback", "collection", c.collection.Name, "error", err)
	return true
}

// buildItem merges caller-supplied fields with derived ones. The placeholder
// id only lives in the speculative cache entry; stores assign the durable id.
func buildItem(collection model.Collection, siteID uuid.UUID, fields map[string]any, now time.Time) model.Item {
	item := model.Item{
		ID:        fmt.Sprintf("pending-%d", now.UnixNano()),
		SiteID:    siteID,
		Fields:    make(map[string]any, len(fields)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for k, v := range fields {
		switch k {
		case "title", "name":
			if s, ok := v.(string); ok {
				item.Title = s
			}
		case "slug":
			if s, ok := v.(string); ok {
				item.Slug = s
			}
		case "display_order":
			if n, ok := toInt(v); ok {
				item.DisplayOrder = n
			}
		default:
			item.Fields[k] = v
		}
	}

	if collection.SlugField && item.Slug == "" {
		item.Slug = Slugify(item.Title, now)
	}

	return item
}

func buildPatch(fields map[string]any) model.Patch {
	patch := model.Patch{Fields: make(map[string]any)}

	for k, v := range fields {
		switch k {
		case "title", "name":
			if s, ok := v.(string); ok {
				title := s
				patch.Title = &title
			}
		case "slug":
			if s, ok := v.(string); ok {
				slug := s
				patch.Slug = &slug
			}
		case "display_order":
			if n, ok := toInt(v); ok {
				order := n
				patch.DisplayOrder = &order
			}
		default:
			patch.Fields[k] = v
		}
	}

	return patch
}

// toInt accepts the numeric types JSON decoding and direct callers produce.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func copyItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}
