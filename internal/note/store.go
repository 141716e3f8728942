// Package note binds the note REST endpoints to the query cache.
package note

import (
	"context"
	"fmt"

	"github.com/horuslm/horuslm/internal/querycache"
)

type restAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

type Store struct {
	client restAPI
	cache  *querycache.Cache
}

func NewStore(client restAPI, cache *querycache.Cache) *Store {
	if client == nil || cache == nil {
		panic("note: NewStore requires a client and a cache")
	}
	return &Store{client: client, cache: cache}
}

// List returns a notebook's notes, or an empty result without a notebook id.
func (s *Store) List(ctx context.Context, notebookID string) ([]Note, error) {
	if notebookID == "" {
		return nil, nil
	}

	key := querycache.NewKey(querycache.KindNotes, notebookID)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) ([]Note, error) {
		var notes []Note
		if err := s.client.Get(ctx, "/notes/notebook/"+notebookID, &notes); err != nil {
			return nil, fmt.Errorf("client.Get(/notes/notebook/%s) > %w", notebookID, err)
		}
		return notes, nil
	})
}

func (s *Store) Create(ctx context.Context, input CreateInput) (*Note, error) {
	if input.SourceType == "" {
		input.SourceType = SourceUser
	}

	var created Note
	if err := s.client.Post(ctx, "/notes", input, &created); err != nil {
		return nil, fmt.Errorf("client.Post(/notes) > %w", err)
	}

	s.cache.Invalidate(querycache.NewKey(querycache.KindNotes, input.NotebookID))
	return &created, nil
}

func (s *Store) Update(ctx context.Context, noteID string, updates UpdateInput) (*Note, error) {
	var updated Note
	if err := s.client.Put(ctx, "/notes/"+noteID, updates, &updated); err != nil {
		return nil, fmt.Errorf("client.Put(/notes/%s) > %w", noteID, err)
	}

	s.cache.Invalidate(querycache.NewKey(querycache.KindNotes, updated.NotebookID))
	return &updated, nil
}

func (s *Store) Delete(ctx context.Context, noteID, notebookID string) error {
	if err := s.client.Delete(ctx, "/notes/"+noteID, nil); err != nil {
		return fmt.Errorf("client.Delete(/notes/%s) > %w", noteID, err)
	}

	s.cache.Invalidate(querycache.NewKey(querycache.KindNotes, notebookID))
	return nil
}
