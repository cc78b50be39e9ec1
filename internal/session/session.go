package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campusevents/internal/catalog"
	"campusevents/internal/filter"
	"campusevents/internal/models"
	"campusevents/internal/profile"
	"campusevents/internal/store"
)

var (
	// ErrUnknownEvent is returned for an ID that is not in the current catalog.
	ErrUnknownEvent = errors.New("event not in catalog")
	// ErrNotRegistered is returned when exporting an event the user has not signed up for.
	ErrNotRegistered = errors.New("event not registered")
	// ErrNoExporter is returned when no export target is configured.
	ErrNoExporter = errors.New("no calendar export configured")
)

// Fetcher produces catalog outcomes asynchronously.
type Fetcher interface {
	FetchAsync(ctx context.Context) <-chan catalog.Outcome
}

// Exporter pushes one event to an external calendar and returns its remote ID.
type Exporter interface {
	Export(ctx context.Context, event models.Event) (string, error)
}

// Session ties the store, fetcher, club profile and exporter together for the
// presentation layer.
type Session struct {
	logger   *slog.Logger
	store    *store.Store
	fetcher  Fetcher
	profile  *profile.Profile
	exporter Exporter
}

// New creates a Session. exporter may be nil until the user signs in.
func New(logger *slog.Logger, st *store.Store, fetcher Fetcher, p *profile.Profile, exporter Exporter) *Session {
	if p == nil {
		p = &profile.Profile{}
	}
	return &Session{
		logger:   logger,
		store:    st,
		fetcher:  fetcher,
		profile:  p,
		exporter: exporter,
	}
}

// SetExporter swaps the export target.
func (s *Session) SetExporter(e Exporter) {
	s.exporter = e
}

// Store returns the underlying event store.
func (s *Session) Store() *store.Store {
	return s.store
}

// Profile returns the club profile used by the MyClubs filter.
func (s *Session) Profile() *profile.Profile {
	return s.profile
}

// Refresh fetches the catalog once and installs it. On failure the previous
// catalog is kept and the error is returned; nothing is retried.
func (s *Session) Refresh(ctx context.Context) error {
	select {
	case out := <-s.fetcher.FetchAsync(ctx):
		if !out.OK() {
			s.logger.Warn("Catalog refresh failed, keeping previous catalog.", "error", out.Err)
			return out.Err
		}
		s.store.SetCatalog(out.Catalog)
		s.logger.Info("Catalog refreshed.", "count", len(out.Catalog))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Visible returns the catalog filtered by selector and the profile's clubs.
func (s *Session) Visible(selector filter.Selector) []models.Event {
	return filter.Apply(s.store.Catalog(), selector, s.profile.Memberships())
}

// Register signs the user up for the event with the given ID.
func (s *Session) Register(id int) (bool, error) {
	event, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	added := s.store.Register(event)
	s.logger.Debug("Register", "id", id, "added", added, "count", s.store.RegisteredCount())
	return added, nil
}

// Cancel withdraws the user from the event with the given ID. Events that have
// dropped out of the catalog can still be cancelled.
func (s *Session) Cancel(id int) (bool, error) {
	event, err := s.lookup(id)
	if err != nil {
		if !s.store.IsRegistered(id) {
			return false, err
		}
		event = models.Event{ID: id}
	}
	removed := s.store.Cancel(event)
	s.logger.Debug("Cancel", "id", id, "removed", removed, "count", s.store.RegisteredCount())
	return removed, nil
}

// Registered returns the events the user signed up for.
func (s *Session) Registered() []models.Event {
	return s.store.Registered()
}

// Export sends a registered event to the configured calendar.
func (s *Session) Export(ctx context.Context, id int) (string, error) {
	if s.exporter == nil {
		return "", ErrNoExporter
	}

	var (
		event models.Event
		found bool
	)
	for _, e := range s.store.Registered() {
		if e.ID == id {
			event, found = e, true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %d", ErrNotRegistered, id)
	}

	remoteID, err := s.exporter.Export(ctx, event)
	if err != nil {
		s.logger.Error("Failed to export event", "id", id, "title", event.Name, "error", err)
		return "", err
	}
	return remoteID, nil
}

func (s *Session) lookup(id int) (models.Event, error) {
	event, ok := s.store.Catalog().Find(id)
	if !ok {
		return models.Event{}, fmt.Errorf("%w: %d", ErrUnknownEvent, id)
	}
	return event, nil
}
