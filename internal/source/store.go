// Package source binds the source REST endpoints to the query cache and owns
// the first-source trigger for notebook content generation.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/horuslm/horuslm/internal/querycache"
)

type restAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
	Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error
}

type Store struct {
	client    restAPI
	cache     *querycache.Cache
	generator ContentGenerator
}

func NewStore(client restAPI, cache *querycache.Cache, generator ContentGenerator) *Store {
	if client == nil || cache == nil || generator == nil {
		panic("source: NewStore requires a client, cache, and generator")
	}
	return &Store{client: client, cache: cache, generator: generator}
}

// List returns a notebook's sources, or an empty result without a notebook id.
func (s *Store) List(ctx context.Context, notebookID string) ([]Source, error) {
	if notebookID == "" {
		return nil, nil
	}

	key := querycache.NewKey(querycache.KindSources, notebookID)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) ([]Source, error) {
		var sources []Source
		if err := s.client.Get(ctx, "/sources/notebook/"+notebookID, &sources); err != nil {
			return nil, fmt.Errorf("client.Get(/sources/notebook/%s) > %w", notebookID, err)
		}
		return sources, nil
	})
}

// Add records a new source. When it is the first source of a notebook whose
// generation is still pending, and the type-required field is present,
// content generation is triggered; a trigger failure is logged, never
// surfaced, and never rolls back the add.
func (s *Store) Add(ctx context.Context, input AddInput) (*Source, error) {
	if input.Metadata == nil {
		input.Metadata = map[string]any{}
	}

	var created Source
	if err := s.client.Post(ctx, "/sources", input, &created); err != nil {
		return nil, fmt.Errorf("client.Post(/sources) > %w", err)
	}

	key := querycache.NewKey(querycache.KindSources, created.NotebookID)

	// "First source" means the cached list was empty at mutation time.
	// This can race with concurrent adds; the backend is expected to make
	// generation idempotent.
	isFirst := true
	if cached, ok := s.cache.Peek(key); ok {
		if list, ok := cached.([]Source); ok {
			isFirst = len(list) == 0
		}
	}
	s.cache.Invalidate(key)

	if isFirst && created.NotebookID != "" {
		s.maybeGenerate(ctx, created)
	}
	return &created, nil
}

// Update modifies a source. When the update records a file path and the
// source turns out to be the notebook's only one, the same generation
// trigger as Add applies.
func (s *Store) Update(ctx context.Context, sourceID string, updates UpdateInput) (*Source, error) {
	var updated Source
	if err := s.client.Put(ctx, "/sources/"+sourceID, updates, &updated); err != nil {
		return nil, fmt.Errorf("client.Put(/sources/%s) > %w", sourceID, err)
	}

	s.cache.Invalidate(querycache.NewKey(querycache.KindSources, updated.NotebookID))

	if updated.FilePath != "" && updated.NotebookID != "" {
		var current []Source
		if err := s.client.Get(ctx, "/sources/notebook/"+updated.NotebookID, &current); err != nil {
			slog.Default().Warn("failed to check sources before generation",
				"notebookID", updated.NotebookID,
				"error", err,
			)
			return &updated, nil
		}
		if len(current) == 1 {
			s.maybeGenerate(ctx, updated)
		}
	}
	return &updated, nil
}

func (s *Store) maybeGenerate(ctx context.Context, src Source) {
	var nb struct {
		GenerationStatus string `json:"generation_status"`
	}
	if err := s.client.Get(ctx, "/notebooks/"+src.NotebookID, &nb); err != nil {
		slog.Default().Warn("failed to check notebook status before generation",
			"notebookID", src.NotebookID,
			"error", err,
		)
		return
	}
	if nb.GenerationStatus != "pending" {
		return
	}
	if !src.ReadyForGeneration() {
		slog.Default().Debug("source not ready for generation yet",
			"sourceID", src.ID,
			"type", src.Type,
		)
		return
	}

	if err := s.generator.Generate(ctx, src.NotebookID, src.GenerationPath(), string(src.Type)); err != nil {
		slog.Default().Warn("failed to generate notebook content",
			"notebookID", src.NotebookID,
			"error", err,
		)
	}
}

// Rename changes a source's title.
func (s *Store) Rename(ctx context.Context, sourceID, title string) (*Source, error) {
	var updated Source
	if err := s.client.Put(ctx, "/sources/"+sourceID, map[string]string{"title": title}, &updated); err != nil {
		return nil, fmt.Errorf("client.Put(/sources/%s) > %w", sourceID, err)
	}

	s.cache.InvalidateKind(querycache.KindSources)
	return &updated, nil
}

// Delete removes a source.
func (s *Store) Delete(ctx context.Context, sourceID string) (*Source, error) {
	var deleted Source
	if err := s.client.Delete(ctx, "/sources/"+sourceID, &deleted); err != nil {
		return nil, fmt.Errorf("client.Delete(/sources/%s) > %w", sourceID, err)
	}

	s.cache.InvalidateKind(querycache.KindSources)
	return &deleted, nil
}

type uploadResponse struct {
	FilePath string `json:"filePath"`
}

// Upload stores a file for a source and returns the backend file path.
func (s *Store) Upload(ctx context.Context, notebookID, sourceID, filename string, r io.Reader) (string, error) {
	var response uploadResponse
	path := "/sources/upload/" + notebookID + "/" + sourceID
	if err := s.client.Upload(ctx, path, "file", filename, r, &response); err != nil {
		return "", fmt.Errorf("client.Upload(%s) > %w", path, err)
	}
	return response.FilePath, nil
}

type processRequest struct {
	SourceID   string `json:"sourceId"`
	FilePath   string `json:"filePath"`
	SourceType string `json:"sourceType"`
}

// Process asks the backend to start extracting a stored document.
func (s *Store) Process(ctx context.Context, sourceID, filePath, sourceType string) error {
	if err := s.client.Post(ctx, "/sources/process", processRequest{
		SourceID:   sourceID,
		FilePath:   filePath,
		SourceType: sourceType,
	}, nil); err != nil {
		return fmt.Errorf("client.Post(/sources/process) > %w", err)
	}
	return nil
}
