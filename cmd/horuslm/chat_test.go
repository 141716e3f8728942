package main

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/horuslm/horuslm/internal/chat"
)

func TestRenderMessage(t *testing.T) {
	restore := color.NoColor
	color.NoColor = true
	defer func() {
		color.NoColor = restore
	}()

	t.Run("plain message", func(t *testing.T) {
		var buf bytes.Buffer
		renderMessage(&buf, chat.Message{Role: chat.RoleHuman, Content: "Hello"})
		assert.Equal(t, "human: Hello\n", buf.String())
	})

	t.Run("segmented answer with citation markers", func(t *testing.T) {
		id := 1
		var buf bytes.Buffer
		renderMessage(&buf, chat.Message{
			Role:     chat.RoleAI,
			Segments: []chat.Segment{{Text: "Covered in chapter 2.", CitationID: &id}},
			Citations: []chat.Citation{{
				CitationID:  1,
				SourceTitle: "Handbook",
				SourceType:  "pdf",
				Excerpt:     "Lines 3-8",
			}},
		})
		assert.Equal(t, "ai: Covered in chapter 2. [1]\n  [1] Handbook (pdf), Lines 3-8\n", buf.String())
	})
}
