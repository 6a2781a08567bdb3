package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContentStore defines persistence operations for content collections. Every
// operation is scoped to a single site.
type ContentStore interface {
	List(ctx context.Context, collection Collection, siteID uuid.UUID) ([]Item, error)
	Create(ctx context.Context, collection Collection, item Item) (Item, error)
	Update(ctx context.Context, collection Collection, siteID uuid.UUID, id string, patch Patch) (Item, error)
	Delete(ctx context.Context, collection Collection, siteID uuid.UUID, id string) error
}

// Order enumerates the natural ordering of a collection.
type Order string

const (
	// OrderCreatedDesc lists newest items first.
	OrderCreatedDesc Order = "created_desc"
	// OrderDisplayAsc lists items by their operator-assigned position.
	OrderDisplayAsc Order = "display_asc"
)

// Collection describes one content collection. The set of collections is
// closed: handlers and repositories only ever see the descriptors declared
// below, so the table name is never derived from request input.
type Collection struct {
	Name      string
	Order     Order
	SlugField bool
}

var (
	// Posts are blog posts; slugs are derived from the title.
	Posts = Collection{Name: "posts", Order: OrderCreatedDesc, SlugField: true}
	// Tracks are music tracks.
	Tracks = Collection{Name: "tracks", Order: OrderCreatedDesc}
	// SocialLinks are ordered by their display position.
	SocialLinks = Collection{Name: "social_links", Order: OrderDisplayAsc}
	// Products are store items; slugs are derived from the title.
	Products = Collection{Name: "products", Order: OrderCreatedDesc, SlugField: true}
)

// Collections returns all known collection descriptors.
func Collections() []Collection {
	return []Collection{Posts, Tracks, SocialLinks, Products}
}

// CollectionByName resolves a descriptor from its name.
func CollectionByName(name string) (Collection, bool) {
	for _, c := range Collections() {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Item is one content record. Title and DisplayOrder are common to every
// collection; kind-specific fields live in Fields. ID is assigned by the
// remote store (UUID) or generated locally by the fallback store.
type Item struct {
	ID           string
	SiteID       uuid.UUID
	Title        string
	Slug         string
	DisplayOrder int
	Fields       map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Patch is a partial update of an Item. Nil pointer fields are left untouched;
// Fields entries are merged into the existing field map, not replacing it.
type Patch struct {
	Title        *string
	Slug         *string
	DisplayOrder *int
	Fields       map[string]any
}

// Apply merges the patch into item and returns the result.
func (p Patch) Apply(item Item) Item {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Slug != nil {
		item.Slug = *p.Slug
	}
	if p.DisplayOrder != nil {
		item.DisplayOrder = *p.DisplayOrder
	}
	if len(p.Fields) > 0 {
		merged := make(map[string]any, len(item.Fields)+len(p.Fields))
		for k, v := range item.Fields {
			merged[k] = v
		}
		for k, v := range p.Fields {
			merged[k] = v
		}
		item.Fields = merged
	}
	return item
}
