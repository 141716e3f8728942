// Package notebook binds the notebook REST endpoints to the query cache.
package notebook

import (
	"context"
	"fmt"

	"github.com/avast/retry-go"

	"github.com/horuslm/horuslm/internal/api"
	"github.com/horuslm/horuslm/internal/querycache"
	"github.com/horuslm/horuslm/internal/session"
)

type restAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// SessionInfo is the slice of the session store the notebook hooks need:
// fetches only run for an authenticated user, and the list cache is scoped
// by user id.
type SessionInfo interface {
	IsAuthenticated() bool
	CurrentUser() *session.User
}

type Store struct {
	client           restAPI
	cache            *querycache.Cache
	session          SessionInfo
	maxRetryAttempts uint
}

func NewStore(client restAPI, cache *querycache.Cache, sess SessionInfo, maxRetryAttempts uint) *Store {
	if client == nil || cache == nil || sess == nil {
		panic("notebook: NewStore requires a client, cache, and session")
	}
	return &Store{
		client:           client,
		cache:            cache,
		session:          sess,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (s *Store) listKey() (querycache.Key, bool) {
	user := s.session.CurrentUser()
	if !s.session.IsAuthenticated() || user == nil {
		return querycache.Key{}, false
	}
	return querycache.NewKey(querycache.KindNotebooks, user.ID), true
}

// List returns the user's notebooks. Without an authenticated session it
// returns an empty result and performs no network call. This is the one
// fetch that retries, and auth failures stop it immediately.
func (s *Store) List(ctx context.Context) ([]Notebook, error) {
	key, ok := s.listKey()
	if !ok {
		return nil, nil
	}

	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) ([]Notebook, error) {
		var notebooks []Notebook
		var lastErr error
		if err := retry.Do(
			func() error {
				notebooks = nil
				if err := s.client.Get(ctx, "/notebooks", &notebooks); err != nil {
					lastErr = err
					if api.IsAuth(err) {
						return retry.Unrecoverable(err)
					}
					return err
				}
				return nil
			},
			retry.Context(ctx),
			retry.Attempts(s.maxRetryAttempts),
			retry.LastErrorOnly(true),
		); err != nil {
			return nil, fmt.Errorf("client.Get(/notebooks) > %w", lastErr)
		}
		return notebooks, nil
	})
}

// Get returns one notebook by id, or nil without an id.
func (s *Store) Get(ctx context.Context, id string) (*Notebook, error) {
	if id == "" {
		return nil, nil
	}

	key := querycache.NewKey(querycache.KindNotebook, id)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) (*Notebook, error) {
		var nb Notebook
		if err := s.client.Get(ctx, "/notebooks/"+id, &nb); err != nil {
			return nil, fmt.Errorf("client.Get(/notebooks/%s) > %w", id, err)
		}
		return &nb, nil
	})
}

func (s *Store) Create(ctx context.Context, input CreateInput) (*Notebook, error) {
	var created Notebook
	if err := s.client.Post(ctx, "/notebooks", input, &created); err != nil {
		return nil, fmt.Errorf("client.Post(/notebooks) > %w", err)
	}

	if key, ok := s.listKey(); ok {
		s.cache.Invalidate(key)
	}
	return &created, nil
}

func (s *Store) Update(ctx context.Context, id string, updates UpdateInput) (*Notebook, error) {
	var updated Notebook
	if err := s.client.Put(ctx, "/notebooks/"+id, updates, &updated); err != nil {
		return nil, fmt.Errorf("client.Put(/notebooks/%s) > %w", id, err)
	}

	s.cache.Invalidate(querycache.NewKey(querycache.KindNotebook, updated.ID))
	s.cache.InvalidateKind(querycache.KindNotebooks)
	return &updated, nil
}

// Delete removes a notebook; the backend cascades to its sources, notes, and
// chat history. Client-side, exactly the notebook list, the notebook itself,
// and that notebook's sources go stale.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/notebooks/"+id, nil); err != nil {
		return fmt.Errorf("client.Delete(/notebooks/%s) > %w", id, err)
	}

	if key, ok := s.listKey(); ok {
		s.cache.Invalidate(key)
	}
	s.cache.Invalidate(querycache.NewKey(querycache.KindNotebook, id))
	s.cache.Invalidate(querycache.NewKey(querycache.KindSources, id))
	return nil
}

type generateRequest struct {
	FilePath   string `json:"filePath,omitempty"`
	SourceType string `json:"sourceType"`
}

// Generate asks the backend to derive the notebook's title and description
// from the given source material.
func (s *Store) Generate(ctx context.Context, notebookID, filePath, sourceType string) error {
	if err := s.client.Post(ctx, "/notebooks/"+notebookID+"/generate", generateRequest{
		FilePath:   filePath,
		SourceType: sourceType,
	}, nil); err != nil {
		return fmt.Errorf("client.Post(/notebooks/%s/generate) > %w", notebookID, err)
	}

	s.cache.InvalidateKind(querycache.KindNotebooks)
	s.cache.InvalidateKind(querycache.KindNotebook)
	return nil
}
