package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

var _ model.ContentStore = (*ContentRepository)(nil)

type ContentRepository struct {
	db *Connection
}

func NewContentRepository(db *Connection) *ContentRepository {
	return &ContentRepository{
		db: db,
	}
}

// Table names are interpolated, never parameterized: they come from the closed
// descriptor set in model, not from request input.
func orderClause(collection model.Collection) string {
	if collection.Order == model.OrderDisplayAsc {
		return "display_order ASC, created_at DESC"
	}
	return "created_at DESC"
}

func (r *ContentRepository) List(ctx context.Context, collection model.Collection, siteID uuid.UUID) ([]model.Item, error) {
	query := fmt.Sprintf(`
		SELECT id, site_id, title, slug, display_order, fields, created_at, updated_at
		FROM %s
		WHERE site_id = $1
		ORDER BY %s`, collection.Name, orderClause(collection))

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, normalizeErr(err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, normalizeErr(err)
	}

	return items, nil
}

func (r *ContentRepository) Create(ctx context.Context, collection model.Collection, item model.Item) (model.Item, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, site_id, title, slug, display_order, fields)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, site_id, title, slug, display_order, fields, created_at, updated_at`, collection.Name)

	fields, err := json.Marshal(nonNilFields(item.Fields))
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to encode fields: %w", err)
	}

	// Server-assigned identity and timestamps; whatever placeholder the
	// caller generated for its speculative cache entry is discarded here.
	row := r.db.QueryRow(ctx, query,
		uuid.New(), item.SiteID, item.Title, item.Slug, item.DisplayOrder, fields,
	)

	saved, err := scanItem(row.Scan)
	if err != nil {
		return model.Item{}, err
	}

	return saved, nil
}

func (r *ContentRepository) Update(ctx context.Context, collection model.Collection, siteID uuid.UUID, id string, patch model.Patch) (model.Item, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET
			title = COALESCE($3, title),
			slug = COALESCE($4, slug),
			display_order = COALESCE($5, display_order),
			fields = fields || $6,
			updated_at = NOW()
		WHERE id = $1 AND site_id = $2
		RETURNING id, site_id, title, slug, display_order, fields, created_at, updated_at`, collection.Name)

	itemID, err := uuid.Parse(id)
	if err != nil {
		return model.Item{}, model.ErrNotFound
	}

	fields, err := json.Marshal(nonNilFields(patch.Fields))
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to encode patch fields: %w", err)
	}

	row := r.db.QueryRow(ctx, query,
		itemID, siteID, patch.Title, patch.Slug, patch.DisplayOrder, fields,
	)

	updated, err := scanItem(row.Scan)
	if err != nil {
		return model.Item{}, err
	}

	return updated, nil
}

func (r *ContentRepository) Delete(ctx context.Context, collection model.Collection, siteID uuid.UUID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND site_id = $2`, collection.Name)

	itemID, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}

	cmd, err := r.db.Exec(ctx, query, itemID, siteID)
	if err != nil {
		return normalizeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func scanItem(scan func(dest ...any) error) (model.Item, error) {
	var (
		item      model.Item
		id        uuid.UUID
		rawFields []byte
	)
	err := scan(
		&id, &item.SiteID, &item.Title, &item.Slug, &item.DisplayOrder,
		&rawFields, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return model.Item{}, normalizeErr(err)
	}

	item.ID = id.String()
	if len(rawFields) > 0 {
		if err := json.Unmarshal(rawFields, &item.Fields); err != nil {
			return model.Item{}, fmt.Errorf("failed to decode fields: %w", err)
		}
	}

	return item, nil
}

func nonNilFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return fields
}
