// Package audio drives audio overview generation and playback URL refresh
// for a notebook.
package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/horuslm/horuslm/internal/notebook"
	"github.com/horuslm/horuslm/internal/querycache"
)

type restAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Status is the audio overview state read off the notebook record.
type Status struct {
	GenerationStatus string
	URL              string
	ExpiresAt        *time.Time
}

type Store struct {
	client restAPI
	cache  *querycache.Cache
}

func NewStore(client restAPI, cache *querycache.Cache) *Store {
	if client == nil || cache == nil {
		panic("audio: NewStore requires a client and a cache")
	}
	return &Store{client: client, cache: cache}
}

// Generate starts audio overview generation for a notebook. Completion is
// observed through notebook polling, not through this call.
func (s *Store) Generate(ctx context.Context, notebookID string) error {
	if err := s.client.Post(ctx, "/audio/generate/"+notebookID, nil, nil); err != nil {
		return fmt.Errorf("client.Post(/audio/generate/%s) > %w", notebookID, err)
	}
	return nil
}

// RefreshURL asks the backend for a fresh signed playback URL and invalidates
// the cached notebooks so the new URL is picked up.
func (s *Store) RefreshURL(ctx context.Context, notebookID string) error {
	if err := s.client.Post(ctx, "/audio/refresh/"+notebookID, nil, nil); err != nil {
		return fmt.Errorf("client.Post(/audio/refresh/%s) > %w", notebookID, err)
	}

	s.cache.InvalidateKind(querycache.KindNotebooks)
	s.cache.InvalidateKind(querycache.KindNotebook)
	return nil
}

// Status reads the notebook's current audio overview state. The read bypasses
// the cache so poll loops see progress.
func (s *Store) Status(ctx context.Context, notebookID string) (*Status, error) {
	var nb notebook.Notebook
	if err := s.client.Get(ctx, "/notebooks/"+notebookID, &nb); err != nil {
		return nil, fmt.Errorf("client.Get(/notebooks/%s) > %w", notebookID, err)
	}
	return &Status{
		GenerationStatus: nb.AudioOverviewStatus,
		URL:              nb.AudioOverviewURL,
		ExpiresAt:        nb.AudioOverviewExpiresAt,
	}, nil
}

// Expired reports whether a signed playback URL has lapsed. A missing expiry
// counts as expired so a refresh is always attempted.
func Expired(expiresAt *time.Time) bool {
	if expiresAt == nil || expiresAt.IsZero() {
		return true
	}
	return !expiresAt.After(time.Now())
}

// AutoRefreshIfExpired refreshes the playback URL when it has lapsed. A
// failed refresh is logged, not surfaced; playback simply stays stale until
// the next attempt.
func (s *Store) AutoRefreshIfExpired(ctx context.Context, notebookID string, expiresAt *time.Time) {
	if !Expired(expiresAt) {
		return
	}
	if err := s.RefreshURL(ctx, notebookID); err != nil {
		slog.Default().Warn("failed to refresh audio URL",
			"notebookID", notebookID,
			"error", err,
		)
	}
}
