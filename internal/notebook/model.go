package notebook

import "time"

// GenerationStatus tracks the backend's derivation of a notebook's title and
// description from its first source.
type GenerationStatus string

const (
	GenerationPending    GenerationStatus = "pending"
	GenerationGenerating GenerationStatus = "generating"
	GenerationCompleted  GenerationStatus = "completed"
	GenerationFailed     GenerationStatus = "failed"
)

// Notebook is the top-level user-owned container for sources, notes, and
// chat history. Field names follow the backend's wire format.
type Notebook struct {
	ID                     string           `json:"id"`
	Title                  string           `json:"title"`
	Description            string           `json:"description,omitempty"`
	GenerationStatus       GenerationStatus `json:"generation_status"`
	AudioOverviewStatus    string           `json:"audio_overview_generation_status,omitempty"`
	AudioOverviewURL       string           `json:"audio_overview_url,omitempty"`
	AudioOverviewExpiresAt *time.Time       `json:"audio_overview_expires_at,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type UpdateInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}
