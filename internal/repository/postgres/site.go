package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

var _ model.SiteStore = (*SiteRepository)(nil)

type SiteRepository struct {
	db *Connection
}

func NewSiteRepository(db *Connection) *SiteRepository {
	return &SiteRepository{
		db: db,
	}
}

// GetOrCreateSite provisions the site row once per id. Re-invocation is a
// no-op and never duplicates or rewrites the existing row.
func (r *SiteRepository) GetOrCreateSite(ctx context.Context, site model.Site) error {
	const query = `
		INSERT INTO sites (id, name, owner_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, site.ID, site.Name, site.OwnerID)
	if err != nil {
		return normalizeErr(err)
	}

	return nil
}

// GetOrCreateConfig returns the site configuration, creating the default row
// on first call. Insert and read happen in one statement so concurrent
// bootstraps cannot race into duplicates.
func (r *SiteRepository) GetOrCreateConfig(ctx context.Context, siteID uuid.UUID) (model.SiteConfig, error) {
	const query = `
		WITH ins AS (
			INSERT INTO site_configs (site_id)
			VALUES ($1)
			ON CONFLICT (site_id) DO NOTHING
			RETURNING site_id, status, logo_url, updated_at
		)
		SELECT site_id, status, logo_url, updated_at FROM ins
		UNION ALL
		SELECT c.site_id, c.status, c.logo_url, c.updated_at
		FROM site_configs c
		WHERE NOT EXISTS (SELECT 1 FROM ins) AND c.site_id = $1
		LIMIT 1`

	var (
		config    model.SiteConfig
		rawStatus string
	)
	err := r.db.QueryRow(ctx, query, siteID).Scan(
		&config.SiteID, &rawStatus, &config.LogoURL, &config.UpdatedAt,
	)
	if err != nil {
		return model.SiteConfig{}, normalizeErr(err)
	}

	config.Status = model.ParseSiteStatus(rawStatus)

	return config, nil
}

func (r *SiteRepository) UpdateStatus(ctx context.Context, siteID uuid.UUID, status model.SiteStatus) error {
	const query = `UPDATE site_configs SET status = $2, updated_at = NOW() WHERE site_id = $1`

	cmd, err := r.db.Exec(ctx, query, siteID, string(status))
	if err != nil {
		return normalizeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *SiteRepository) UpdateLogo(ctx context.Context, siteID uuid.UUID, logoURL string) error {
	const query = `UPDATE site_configs SET logo_url = $2, updated_at = NOW() WHERE site_id = $1`

	cmd, err := r.db.Exec(ctx, query, siteID, logoURL)
	if err != nil {
		return normalizeErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}
