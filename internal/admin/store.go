// Package admin wraps the admin endpoints for language-model configuration
// and system statistics.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/horuslm/horuslm/internal/querycache"
)

type restAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// ErrAPIKeyRequired rejects cloud-provider configs created without a key.
var ErrAPIKeyRequired = errors.New("admin: an API key is required for this provider")

const adminScope = "all"

type Store struct {
	client   restAPI
	cache    *querycache.Cache
	validate *validator.Validate
}

func NewStore(client restAPI, cache *querycache.Cache) *Store {
	if client == nil || cache == nil {
		panic("admin: NewStore requires a client and a cache")
	}
	return &Store{
		client:   client,
		cache:    cache,
		validate: validator.New(),
	}
}

// ListConfigs returns every configured language model.
func (s *Store) ListConfigs(ctx context.Context) ([]LLMConfig, error) {
	key := querycache.NewKey(querycache.KindLLMConfigs, adminScope)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) ([]LLMConfig, error) {
		var configs []LLMConfig
		if err := s.client.Get(ctx, "/admin/llm-configs", &configs); err != nil {
			return nil, fmt.Errorf("client.Get(/admin/llm-configs) > %w", err)
		}
		return configs, nil
	})
}

// CreateConfig registers a new model configuration. Cloud providers need an
// API key; Ollama runs locally and does not.
func (s *Store) CreateConfig(ctx context.Context, input ConfigInput) (*LLMConfig, error) {
	if err := s.validateConfig(input, true); err != nil {
		return nil, err
	}

	var created LLMConfig
	if err := s.client.Post(ctx, "/admin/llm-configs", input, &created); err != nil {
		return nil, fmt.Errorf("client.Post(/admin/llm-configs) > %w", err)
	}

	s.cache.InvalidateKind(querycache.KindLLMConfigs)
	return &created, nil
}

// UpdateConfig rewrites a model configuration. A blank API key keeps the
// stored one, so the key requirement is not enforced here.
func (s *Store) UpdateConfig(ctx context.Context, configID string, input ConfigInput) (*LLMConfig, error) {
	if err := s.validateConfig(input, false); err != nil {
		return nil, err
	}

	var updated LLMConfig
	if err := s.client.Put(ctx, "/admin/llm-configs/"+configID, input, &updated); err != nil {
		return nil, fmt.Errorf("client.Put(/admin/llm-configs/%s) > %w", configID, err)
	}

	s.cache.InvalidateKind(querycache.KindLLMConfigs)
	return &updated, nil
}

func (s *Store) DeleteConfig(ctx context.Context, configID string) error {
	if err := s.client.Delete(ctx, "/admin/llm-configs/"+configID, nil); err != nil {
		return fmt.Errorf("client.Delete(/admin/llm-configs/%s) > %w", configID, err)
	}

	s.cache.InvalidateKind(querycache.KindLLMConfigs)
	return nil
}

func (s *Store) validateConfig(input ConfigInput, requireKey bool) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid model configuration > %w", err)
	}
	if requireKey && input.Provider != ProviderOllama && input.APIKey == "" {
		return ErrAPIKeyRequired
	}
	return nil
}

// OllamaModels lists the models installed on the local Ollama daemon. The
// daemon is optional, so a failed fetch degrades to an empty list instead of
// failing the admin view.
func (s *Store) OllamaModels(ctx context.Context) ([]OllamaModel, error) {
	key := querycache.NewKey(querycache.KindOllamaModels, adminScope)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) ([]OllamaModel, error) {
		var models []OllamaModel
		if err := s.client.Get(ctx, "/admin/ollama-models", &models); err != nil {
			slog.Default().Warn("failed to list Ollama models", "error", err)
			return []OllamaModel{}, nil
		}
		return models, nil
	})
}

// Stats returns the admin dashboard snapshot.
func (s *Store) Stats(ctx context.Context) (*SystemStats, error) {
	key := querycache.NewKey(querycache.KindSystemStats, adminScope)
	return querycache.FetchAs(ctx, s.cache, key, func(ctx context.Context) (*SystemStats, error) {
		var stats SystemStats
		if err := s.client.Get(ctx, "/admin/stats", &stats); err != nil {
			return nil, fmt.Errorf("client.Get(/admin/stats) > %w", err)
		}
		return &stats, nil
	})
}
