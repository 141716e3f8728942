package note

import "time"

// SourceType distinguishes user-written notes from saved assistant answers.
type SourceType string

const (
	SourceUser SourceType = "user"
	SourceAI   SourceType = "ai_response"
)

// Note is a saved piece of text in a notebook, either typed by the user or
// captured from a chat answer.
type Note struct {
	ID            string     `json:"id"`
	NotebookID    string     `json:"notebook_id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	SourceType    SourceType `json:"source_type"`
	ExtractedText string     `json:"extracted_text,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type CreateInput struct {
	NotebookID    string     `json:"notebook_id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	SourceType    SourceType `json:"source_type,omitempty"`
	ExtractedText string     `json:"extracted_text,omitempty"`
}

type UpdateInput struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}
