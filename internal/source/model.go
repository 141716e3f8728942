package source

import "time"

// Type is the kind of material a source was ingested from.
type Type string

const (
	TypePDF     Type = "pdf"
	TypeText    Type = "text"
	TypeWebsite Type = "website"
	TypeYouTube Type = "youtube"
	TypeAudio   Type = "audio"
)

// Source is a single ingested document or media reference attached to a
// notebook. Field names follow the backend's wire format.
type Source struct {
	ID               string         `json:"id"`
	NotebookID       string         `json:"notebook_id"`
	Title            string         `json:"title"`
	Type             Type           `json:"type"`
	Content          string         `json:"content,omitempty"`
	URL              string         `json:"url,omitempty"`
	FilePath         string         `json:"file_path,omitempty"`
	FileSize         int64          `json:"file_size,omitempty"`
	ProcessingStatus string         `json:"processing_status,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ReadyForGeneration reports whether the field the source's type requires
// for notebook content generation is present.
func (s Source) ReadyForGeneration() bool {
	switch s.Type {
	case TypePDF, TypeAudio:
		return s.FilePath != ""
	case TypeText:
		return s.Content != ""
	case TypeWebsite, TypeYouTube:
		return s.URL != ""
	}
	return false
}

// GenerationPath is the material reference handed to content generation:
// the stored file for uploads, the URL otherwise.
func (s Source) GenerationPath() string {
	if s.FilePath != "" {
		return s.FilePath
	}
	return s.URL
}

type AddInput struct {
	NotebookID       string         `json:"notebook_id"`
	Title            string         `json:"title"`
	Type             Type           `json:"type"`
	Content          string         `json:"content,omitempty"`
	URL              string         `json:"url,omitempty"`
	FilePath         string         `json:"file_path,omitempty"`
	FileSize         int64          `json:"file_size,omitempty"`
	ProcessingStatus string         `json:"processing_status,omitempty"`
	Metadata         map[string]any `json:"metadata"`
}

type UpdateInput struct {
	Title            *string `json:"title,omitempty"`
	FilePath         *string `json:"file_path,omitempty"`
	ProcessingStatus *string `json:"processing_status,omitempty"`
}
