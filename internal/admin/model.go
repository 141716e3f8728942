package admin

import "time"

// Provider identifies a language-model backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// LLMConfig is one configured language model. The backend redacts api_key on
// reads; a blank key on update means "keep the stored one".
type LLMConfig struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Provider  Provider       `json:"provider"`
	Model     string         `json:"model"`
	APIKey    string         `json:"api_key,omitempty"`
	BaseURL   string         `json:"base_url,omitempty"`
	IsActive  bool           `json:"is_active"`
	IsDefault bool           `json:"is_default"`
	Config    map[string]any `json:"config,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type ConfigInput struct {
	Name      string         `json:"name" validate:"required"`
	Provider  Provider       `json:"provider" validate:"required,oneof=ollama openai anthropic gemini"`
	Model     string         `json:"model" validate:"required"`
	APIKey    string         `json:"api_key,omitempty"`
	BaseURL   string         `json:"base_url,omitempty" validate:"omitempty,url"`
	IsActive  bool           `json:"is_active"`
	IsDefault bool           `json:"is_default"`
	Config    map[string]any `json:"config,omitempty"`
}

// OllamaModel is one locally installed model reported by the Ollama daemon.
type OllamaModel struct {
	Name       string    `json:"name"`
	Model      string    `json:"model"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

// SystemStats is the admin dashboard snapshot. The backend reports counters
// in camelCase, unlike the entity endpoints.
type SystemStats struct {
	TotalUsers     int              `json:"totalUsers"`
	TotalNotebooks int              `json:"totalNotebooks"`
	TotalSources   int              `json:"totalSources"`
	TotalDocuments int              `json:"totalDocuments"`
	SourceTypes    []SourceTypeStat `json:"sourceTypes"`
	ActiveUsers    []ActiveUser     `json:"activeUsers"`
}

type SourceTypeStat struct {
	Type  string `json:"type"`
	Count string `json:"count"`
}

type ActiveUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	NotebookCount string `json:"notebook_count"`
}
