package source

import "context"

//go:generate mockgen -source=interface.go -destination=../mocks/source/mock_generator.go -package=mock_source

// ContentGenerator starts notebook title/description generation. Its failure
// never rolls back the source write that triggered it.
type ContentGenerator interface {
	Generate(ctx context.Context, notebookID, filePath, sourceType string) error
}
