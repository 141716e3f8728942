package note

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horuslm/horuslm/internal/querycache"
	"github.com/horuslm/horuslm/internal/testutil"
)

func TestStore_List(t *testing.T) {
	t.Run("empty notebook id returns nothing without a network call", func(t *testing.T) {
		client := testutil.NewAPIClient(t, nil, testutil.RefuseAllRequests(t))
		store := NewStore(client, querycache.New())

		notes, err := store.List(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("list is fetched once and then served from cache", func(t *testing.T) {
		var calls atomic.Int32
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			assert.Equal(t, "/notes/notebook/nb-1", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id": "note-1", "notebook_id": "nb-1", "title": "Summary", "source_type": "ai_response"}]`))
		})
		store := NewStore(client, querycache.New())

		for i := 0; i < 2; i++ {
			notes, err := store.List(context.Background(), "nb-1")
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, SourceAI, notes[0].SourceType)
		}
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestStore_Create(t *testing.T) {
	var body map[string]any
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/notes", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "note-2", "notebook_id": "nb-1", "title": "Idea"}`))
	})
	cache := querycache.New()
	store := NewStore(client, cache)

	updates, cancel := cache.Watch(querycache.NewKey(querycache.KindNotes, "nb-1"))
	defer cancel()

	created, err := store.Create(context.Background(), CreateInput{NotebookID: "nb-1", Title: "Idea", Content: "text"})
	require.NoError(t, err)
	assert.Equal(t, "note-2", created.ID)
	// Untyped notes default to user-written.
	assert.Equal(t, "user", body["source_type"])

	select {
	case <-updates:
	default:
		t.Fatal("creating a note must invalidate the notebook's note list")
	}
}

func TestStore_Update(t *testing.T) {
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/notes/note-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "note-1", "notebook_id": "nb-1", "title": "Edited"}`))
	})
	cache := querycache.New()
	store := NewStore(client, cache)

	updates, cancel := cache.Watch(querycache.NewKey(querycache.KindNotes, "nb-1"))
	defer cancel()

	title := "Edited"
	updated, err := store.Update(context.Background(), "note-1", UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)

	select {
	case <-updates:
	default:
		t.Fatal("updating a note must invalidate the notebook's note list")
	}
}

func TestStore_Delete(t *testing.T) {
	t.Run("success invalidates the note list", func(t *testing.T) {
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/notes/note-1", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		})
		cache := querycache.New()
		store := NewStore(client, cache)

		updates, cancel := cache.Watch(querycache.NewKey(querycache.KindNotes, "nb-1"))
		defer cancel()

		require.NoError(t, store.Delete(context.Background(), "note-1", "nb-1"))

		select {
		case <-updates:
		default:
			t.Fatal("deleting a note must invalidate the notebook's note list")
		}
	})

	t.Run("failure leaves the cache untouched", func(t *testing.T) {
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		cache := querycache.New()
		store := NewStore(client, cache)

		updates, cancel := cache.Watch(querycache.NewKey(querycache.KindNotes, "nb-1"))
		defer cancel()

		require.Error(t, store.Delete(context.Background(), "note-1", "nb-1"))

		select {
		case <-updates:
			t.Fatal("a failed mutation must not invalidate anything")
		default:
		}
	})
}
