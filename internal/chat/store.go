package chat

import (
	"context"
	"fmt"

	"github.com/horuslm/horuslm/internal/querycache"
)

type restAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// SessionInfo is the slice of the session store the chat store depends on.
type SessionInfo interface {
	IsAuthenticated() bool
}

type Store struct {
	client  restAPI
	cache   *querycache.Cache
	session SessionInfo
}

func NewStore(client restAPI, cache *querycache.Cache, session SessionInfo) *Store {
	if client == nil || cache == nil || session == nil {
		panic("chat: NewStore requires a client, cache, and session")
	}
	return &Store{client: client, cache: cache, session: session}
}

type sourceRow struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
}

// Messages returns a notebook's chat history in normalized form. Without a
// notebook id or an authenticated session it returns empty without touching
// the network.
func (s *Store) Messages(ctx context.Context, notebookID string) ([]Message, error) {
	if notebookID == "" || !s.session.IsAuthenticated() {
		return nil, nil
	}

	key := querycache.NewKey(querycache.KindChatMessages, notebookID)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) ([]Message, error) {
		var records []RawRecord
		if err := s.client.Get(ctx, "/chat/history/"+notebookID, &records); err != nil {
			return nil, fmt.Errorf("client.Get(/chat/history/%s) > %w", notebookID, err)
		}

		// Sources resolve citation ids to titles for rendering.
		var sources []sourceRow
		if err := s.client.Get(ctx, "/sources/notebook/"+notebookID, &sources); err != nil {
			return nil, fmt.Errorf("client.Get(/sources/notebook/%s) > %w", notebookID, err)
		}
		lookup := make(SourceLookup, len(sources))
		for _, src := range sources {
			lookup[src.ID] = SourceInfo{Title: src.Title, Type: src.Type}
		}

		messages := make([]Message, 0, len(records))
		for _, record := range records {
			messages = append(messages, Transform(record, lookup))
		}
		return messages, nil
	})
}

// Send submits a user message. The assistant's answer arrives through
// history polling, so nothing is invalidated here.
func (s *Store) Send(ctx context.Context, notebookID, content string) error {
	if !s.session.IsAuthenticated() {
		return fmt.Errorf("chat: not authenticated")
	}

	body := map[string]string{"message": content}
	if err := s.client.Post(ctx, "/chat/send/"+notebookID, body, nil); err != nil {
		return fmt.Errorf("client.Post(/chat/send/%s) > %w", notebookID, err)
	}
	return nil
}

// ClearHistory deletes every message of a notebook.
func (s *Store) ClearHistory(ctx context.Context, notebookID string) error {
	if !s.session.IsAuthenticated() {
		return fmt.Errorf("chat: not authenticated")
	}

	if err := s.client.Delete(ctx, "/chat/history/"+notebookID, nil); err != nil {
		return fmt.Errorf("client.Delete(/chat/history/%s) > %w", notebookID, err)
	}

	s.cache.Invalidate(querycache.NewKey(querycache.KindChatMessages, notebookID))
	return nil
}
