package chat

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

type fakeSession bool

func (f fakeSession) IsAuthenticated() bool { return bool(f) }

func TestStore_Messages(t *testing.T) {
	t.Run("empty notebook id returns nothing without a network call", func(t *testing.T) {
		client := testutil.NewAPIClient(t, nil, testutil.RefuseAllRequests(t))
		store := NewStore(client, querycache.New(), fakeSession(true))

		messages, err := store.Messages(context.Background(), "")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("unauthenticated session returns nothing without a network call", func(t *testing.T) {
		client := testutil.NewAPIClient(t, nil, testutil.RefuseAllRequests(t))
		store := NewStore(client, querycache.New(), fakeSession(false))

		messages, err := store.Messages(context.Background(), "nb-1")
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("history is transformed with source titles and cached", func(t *testing.T) {
		var historyCalls atomic.Int32
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/chat/history/nb-1":
				historyCalls.Add(1)
				_, _ = w.Write([]byte(`[
					{"id": 1, "session_id": "nb-1", "message": "What is this about?"},
					{"id": 2, "session_id": "nb-1", "message": {"type": "ai", "content": "{\"output\": [{\"text\": \"It covers testing.\", \"citations\": [{\"chunk_index\": 1, \"chunk_source_id\": \"src-1\", \"chunk_lines_from\": 3, \"chunk_lines_to\": 8}]}]}"}}
				]`))
			case "/sources/notebook/nb-1":
				_, _ = w.Write([]byte(`[{"id": "src-1", "title": "Handbook", "type": "pdf"}]`))
			default:
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
		})
		store := NewStore(client, querycache.New(), fakeSession(true))

		for i := 0; i < 2; i++ {
			messages, err := store.Messages(context.Background(), "nb-1")
			require.NoError(t, err)
			require.Len(t, messages, 2)

			assert.Equal(t, RoleHuman, messages[0].Role)
			assert.Equal(t, "What is this about?", messages[0].Content)

			assert.Equal(t, RoleAI, messages[1].Role)
			require.Len(t, messages[1].Citations, 1)
			assert.Equal(t, "Handbook", messages[1].Citations[0].SourceTitle)
			assert.Equal(t, "Lines 3-8", messages[1].Citations[0].Excerpt)
		}
		assert.Equal(t, int32(1), historyCalls.Load())
	})
}

func TestStore_Send(t *testing.T) {
	t.Run("posts the message and invalidates nothing", func(t *testing.T) {
		var body map[string]string
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/chat/send/nb-1", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		})
		cache := querycache.New()
		store := NewStore(client, cache, fakeSession(true))

		updates, cancel := cache.Watch(querycache.NewKey(querycache.KindChatMessages, "nb-1"))
		defer cancel()

		require.NoError(t, store.Send(context.Background(), "nb-1", "Summarize chapter 1"))
		assert.Equal(t, map[string]string{"message": "Summarize chapter 1"}, body)

		// The answer arrives via polling; sending must not invalidate.
		select {
		case <-updates:
			t.Fatal("sending must not invalidate the chat history")
		default:
		}
	})

	t.Run("unauthenticated send fails without a network call", func(t *testing.T) {
		client := testutil.NewAPIClient(t, nil, testutil.RefuseAllRequests(t))
		store := NewStore(client, querycache.New(), fakeSession(false))

		require.Error(t, store.Send(context.Background(), "nb-1", "hello"))
	})
}

func TestStore_ClearHistory(t *testing.T) {
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/chat/history/nb-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	cache := querycache.New()
	store := NewStore(client, cache, fakeSession(true))

	updates, cancel := cache.Watch(querycache.NewKey(querycache.KindChatMessages, "nb-1"))
	defer cancel()

	require.NoError(t, store.ClearHistory(context.Background(), "nb-1"))

	select {
	case <-updates:
	default:
		t.Fatal("clearing history must invalidate the chat messages key")
	}
}
