package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SiteStore defines persistence operations for the site identity and its
// configuration. Both get-or-create calls are idempotent: repeated invocations
// for the same site never create duplicate rows.
type SiteStore interface {
	GetOrCreateSite(ctx context.Context, site Site) error
	GetOrCreateConfig(ctx context.Context, siteID uuid.UUID) (SiteConfig, error)
	UpdateStatus(ctx context.Context, siteID uuid.UUID, status SiteStatus) error
	UpdateLogo(ctx context.Context, siteID uuid.UUID, logoURL string) error
}

// Site is the logical identity of one deployed instance of the application.
type Site struct {
	ID        uuid.UUID
	Name      string
	OwnerID   *uuid.UUID
	CreatedAt time.Time
}

// SiteConfig holds the operational configuration of a site. Status is the only
// field mutated after creation.
type SiteConfig struct {
	SiteID    uuid.UUID
	Status    SiteStatus
	LogoURL   string
	UpdatedAt time.Time
}

// DefaultSiteConfig is the fail-open configuration adopted when the backend
// cannot be reached: the site renders as live rather than blocking.
func DefaultSiteConfig(siteID uuid.UUID) SiteConfig {
	return SiteConfig{SiteID: siteID, Status: SiteStatusLive}
}

// SiteStatus enumerates site operational states.
type SiteStatus string

const (
	// SiteStatusLive means the site serves all public routes.
	SiteStatusLive SiteStatus = "live"
	// SiteStatusMaintenance sends visitors to the maintenance holding page.
	SiteStatusMaintenance SiteStatus = "maintenance"
	// SiteStatusComingSoon sends visitors to the pre-launch holding page.
	SiteStatusComingSoon SiteStatus = "coming_soon"
)

// Valid reports whether s is one of the enumerated statuses.
func (s SiteStatus) Valid() bool {
	switch s {
	case SiteStatusLive, SiteStatusMaintenance, SiteStatusComingSoon:
		return true
	}
	return false
}

// ParseSiteStatus normalizes a raw status value from storage. Unrecognized
// values map to live so a bad row can never take the site down.
func ParseSiteStatus(raw string) SiteStatus {
	s := SiteStatus(raw)
	if !s.Valid() {
		return SiteStatusLive
	}
	return s
}
