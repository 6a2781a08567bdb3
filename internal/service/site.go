package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
	"github.com/MrPiglr/mrpiglr.com-sub001/internal/model"
)

// ErrClosed is returned when a resolver is used after Close.
var ErrClosed = errors.New("site resolver closed")

// Site resolves the site identity against the remote store exactly once per
// site id and publishes the resulting configuration. Resolution fails open:
// if the backend cannot be reached the site renders as live with whatever
// configuration was last known.
type Site struct {
	store  model.SiteStore
	logger *logger.Logger

	mu          sync.Mutex
	siteID      uuid.UUID
	siteName    string
	initialized bool
	inFlight    bool
	closed      bool
	haveConfig  bool
	config      model.SiteConfig
}

func NewSite(store model.SiteStore, logger *logger.Logger) *Site {
	return &Site{
		store:  store,
		logger: logger,
	}
}

// Initialize bootstraps the given site. Repeated calls for the same site id
// are no-ops returning the already-resolved configuration; a call for a
// different site id re-runs the full sequence. Concurrent calls while a
// bootstrap is in flight return the best-known configuration without issuing
// duplicate provisioning calls.
func (s *Site) Initialize(ctx context.Context, siteID uuid.UUID, siteName string, user *model.User) (model.SiteConfig, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.DefaultSiteConfig(siteID), ErrClosed
	}
	if s.initialized && s.siteID == siteID {
		config := s.config
		s.mu.Unlock()
		return config, nil
	}
	if s.inFlight {
		config := s.bestKnownLocked(siteID)
		s.mu.Unlock()
		return config, nil
	}
	if s.siteID != siteID {
		s.initialized = false
		s.haveConfig = false
	}
	s.inFlight = true
	s.siteID = siteID
	s.siteName = siteName
	s.mu.Unlock()

	site := model.Site{ID: siteID, Name: siteName}
	if user != nil {
		ownerID := user.ID
		site.OwnerID = &ownerID
	}

	// Provisioning failure is non-fatal: the site may already exist, and the
	// config fetch below decides what the runtime actually adopts.
	if err := s.store.GetOrCreateSite(ctx, site); err != nil {
		s.logger.Warn("site provisioning failed", "site_id", siteID, "error", err)
	}

	config, err := s.store.GetOrCreateConfig(ctx, siteID)
	resolved := s.resolveWithDefault(siteID, config, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	if s.closed {
		// torn down mid-bootstrap, discard the result
		return resolved, ErrClosed
	}
	if s.siteID != siteID {
		return resolved, nil
	}
	s.config = resolved
	s.haveConfig = true
	s.initialized = true

	return resolved, nil
}

// resolveWithDefault is the single place the fail-open policy lives: on a
// fetch failure the previously known configuration wins, and absent that,
// the live default.
func (s *Site) resolveWithDefault(siteID uuid.UUID, config model.SiteConfig, err error) model.SiteConfig {
	if err == nil {
		return config
	}

	s.logger.Warn("config fetch failed, keeping best-known configuration", "site_id", siteID, "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestKnownLocked(siteID)
}

func (s *Site) bestKnownLocked(siteID uuid.UUID) model.SiteConfig {
	if s.haveConfig && s.siteID == siteID {
		return s.config
	}
	return model.DefaultSiteConfig(siteID)
}

// SetStatus applies the new status locally before confirming with the remote
// store. A remote failure is logged and not rolled back: status changes are
// operator-initiated and self-correct on the next fetch.
func (s *Site) SetStatus(ctx context.Context, status model.SiteStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid site status %q", status)
	}

	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return model.ErrSiteNotReady
	}
	s.config.Status = status
	siteID := s.siteID
	s.mu.Unlock()

	if err := s.store.UpdateStatus(ctx, siteID, status); err != nil {
		s.logger.Error("status update failed, local value retained", "site_id", siteID, "status", status, "error", err)
	}

	return nil
}

// SetLogoURL mirrors SetStatus for the logo reference.
func (s *Site) SetLogoURL(ctx context.Context, logoURL string) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return model.ErrSiteNotReady
	}
	s.config.LogoURL = logoURL
	siteID := s.siteID
	s.mu.Unlock()

	if err := s.store.UpdateLogo(ctx, siteID, logoURL); err != nil {
		s.logger.Error("logo update failed, local value retained", "site_id", siteID, "error", err)
	}

	return nil
}

// Refresh re-fetches the configuration, closing the eventual-consistency
// window left by optimistic status updates. A fetch failure keeps the current
// configuration.
func (s *Site) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return model.ErrSiteNotReady
	}
	siteID := s.siteID
	s.mu.Unlock()

	config, err := s.store.GetOrCreateConfig(ctx, siteID)
	if err != nil {
		s.logger.Warn("config refresh failed, keeping current configuration", "site_id", siteID, "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.siteID != siteID {
		return nil
	}
	s.config = config

	return nil
}

// SiteID reports the resolved site id; ok is false until Initialize commits.
func (s *Site) SiteID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.siteID, s.initialized && !s.closed
}

// Config returns the current configuration; ok is false until resolved.
func (s *Site) Config() (model.SiteConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestKnownLocked(s.siteID), s.initialized
}

// Status returns the current status, defaulting to live while unresolved.
func (s *Site) Status() model.SiteStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bestKnownLocked(s.siteID).Status
}

// Ready reports whether the site identity has been resolved.
func (s *Site) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized && !s.closed
}

// Close tears the resolver down. Results of in-flight bootstraps are
// discarded after Close.
func (s *Site) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
