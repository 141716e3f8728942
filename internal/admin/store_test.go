package admin

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

func TestStore_ListConfigs(t *testing.T) {
	var calls atomic.Int32
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/admin/llm-configs", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "cfg-1", "name": "Local", "provider": "ollama", "model": "llama3", "is_active": true, "is_default": true}]`))
	})
	store := NewStore(client, querycache.New())

	for i := 0; i < 2; i++ {
		configs, err := store.ListConfigs(context.Background())
		require.NoError(t, err)
		require.Len(t, configs, 1)
		assert.Equal(t, ProviderOllama, configs[0].Provider)
		assert.True(t, configs[0].IsDefault)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_CreateConfig(t *testing.T) {
	t.Run("cloud provider without an API key is rejected locally", func(t *testing.T) {
		client := testutil.NewAPIClient(t, nil, testutil.RefuseAllRequests(t))
		store := NewStore(client, querycache.New())

		_, err := store.CreateConfig(context.Background(), ConfigInput{
			Name:     "GPT",
			Provider: ProviderOpenAI,
			Model:    "gpt-4",
		})
		require.ErrorIs(t, err, ErrAPIKeyRequired)
	})

	t.Run("ollama needs no API key", func(t *testing.T) {
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/admin/llm-configs", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "cfg-2", "name": "Local", "provider": "ollama", "model": "llama3"}`))
		})
		cache := querycache.New()
		store := NewStore(client, cache)

		updates, cancel := cache.Watch(querycache.NewKey(querycache.KindLLMConfigs, adminScope))
		defer cancel()

		created, err := store.CreateConfig(context.Background(), ConfigInput{
			Name:     "Local",
			Provider: ProviderOllama,
			Model:    "llama3",
		})
		require.NoError(t, err)
		assert.Equal(t, "cfg-2", created.ID)

		select {
		case <-updates:
		default:
			t.Fatal("creating a config must invalidate the config list")
		}
	})

	t.Run("unknown provider is rejected locally", func(t *testing.T) {
		client := testutil.NewAPIClient(t, nil, testutil.RefuseAllRequests(t))
		store := NewStore(client, querycache.New())

		_, err := store.CreateConfig(context.Background(), ConfigInput{
			Name:     "Custom",
			Provider: Provider("mystery"),
			Model:    "m1",
		})
		require.Error(t, err)
	})
}

func TestStore_UpdateConfig(t *testing.T) {
	var body map[string]any
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/llm-configs/cfg-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "cfg-1", "name": "GPT", "provider": "openai", "model": "gpt-4"}`))
	})
	store := NewStore(client, querycache.New())

	// A blank key means the stored one stays; no local rejection.
	updated, err := store.UpdateConfig(context.Background(), "cfg-1", ConfigInput{
		Name:     "GPT",
		Provider: ProviderOpenAI,
		Model:    "gpt-4",
	})
	require.NoError(t, err)
	assert.Equal(t, "cfg-1", updated.ID)
	_, sent := body["api_key"]
	assert.False(t, sent)
}

func TestStore_DeleteConfig(t *testing.T) {
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/llm-configs/cfg-1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	cache := querycache.New()
	store := NewStore(client, cache)

	updates, cancel := cache.Watch(querycache.NewKey(querycache.KindLLMConfigs, adminScope))
	defer cancel()

	require.NoError(t, store.DeleteConfig(context.Background(), "cfg-1"))

	select {
	case <-updates:
	default:
		t.Fatal("deleting a config must invalidate the config list")
	}
}

func TestStore_OllamaModels(t *testing.T) {
	t.Run("lists installed models", func(t *testing.T) {
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/admin/ollama-models", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"name": "llama3:8b", "model": "llama3:8b", "size": 4661224676}]`))
		})
		store := NewStore(client, querycache.New())

		models, err := store.OllamaModels(context.Background())
		require.NoError(t, err)
		require.Len(t, models, 1)
		assert.Equal(t, "llama3:8b", models[0].Name)
	})

	t.Run("an unreachable daemon degrades to an empty list", func(t *testing.T) {
		client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		store := NewStore(client, querycache.New())

		models, err := store.OllamaModels(context.Background())
		require.NoError(t, err)
		assert.Empty(t, models)
	})
}

func TestStore_Stats(t *testing.T) {
	client := testutil.NewAPIClient(t, testutil.StaticToken("token"), func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"totalUsers": 12,
			"totalNotebooks": 40,
			"totalSources": 120,
			"totalDocuments": 300,
			"sourceTypes": [{"type": "pdf", "count": "80"}],
			"activeUsers": [{"id": "u1", "email": "ada@example.com", "full_name": "Ada", "notebook_count": "7"}]
		}`))
	})
	store := NewStore(client, querycache.New())

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalUsers)
	require.Len(t, stats.SourceTypes, 1)
	assert.Equal(t, "80", stats.SourceTypes[0].Count)
	require.Len(t, stats.ActiveUsers, 1)
	assert.Equal(t, "Ada", stats.ActiveUsers[0].FullName)
}
