// Package chat normalizes the loosely-typed chat history wire format into a
// closed message representation and binds the chat endpoints to the query
// cache.
package chat

import (
	"encoding/json"
	"fmt"
)

// Role tags who produced a message.
type Role string

const (
	RoleHuman Role = "human"
	RoleAI    Role = "ai"
)

// Segment is one run of message text, optionally tied to a citation group.
type Segment struct {
	Text       string `json:"text"`
	CitationID *int   `json:"citation_id,omitempty"`
}

// Citation points a segment at the source lines it was answered from.
type Citation struct {
	CitationID  int    `json:"citation_id"`
	SourceID    string `json:"source_id"`
	SourceTitle string `json:"source_title"`
	SourceType  string `json:"source_type"`
	ChunkIndex  int    `json:"chunk_index"`
	LinesFrom   int    `json:"chunk_lines_from"`
	LinesTo     int    `json:"chunk_lines_to"`
	Excerpt     string `json:"excerpt"`
}

// Message is the normalized form every history record is reduced to. Content
// holds the plain text; Segments and Citations are only set when the backend
// delivered a structured answer.
type Message struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Segments  []Segment  `json:"segments,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

// RawRecord is one row of the history endpoint. The message field varies in
// shape between plain strings and typed objects, so it stays undecoded here.
type RawRecord struct {
	ID        json.Number     `json:"id"`
	SessionID string          `json:"session_id"`
	Message   json.RawMessage `json:"message"`
}

// SourceInfo resolves a citation's source id to display data.
type SourceInfo struct {
	Title string
	Type  string
}

// SourceLookup maps source ids to their display data.
type SourceLookup map[string]SourceInfo

const (
	unknownSourceTitle = "Unknown Source"
	defaultSourceType  = "pdf"

	emptyContent   = "Empty message"
	unparsableText = "Unable to parse message"
)

// rawCitation is the pipeline's citation shape embedded inside AI answers.
type rawCitation struct {
	ChunkIndex    int    `json:"chunk_index"`
	ChunkSourceID string `json:"chunk_source_id"`
	LinesFrom     int    `json:"chunk_lines_from"`
	LinesTo       int    `json:"chunk_lines_to"`
}

type aiPayload struct {
	Output []struct {
		Text      string        `json:"text"`
		Citations []rawCitation `json:"citations"`
	} `json:"output"`
}

// Transform reduces one raw history record to a Message. It is total: any
// malformed or partial record degrades to a fallback representation instead
// of failing.
func Transform(raw RawRecord, lookup SourceLookup) Message {
	msg := Message{ID: raw.ID.String(), SessionID: raw.SessionID}

	// Unmarshal treats JSON null as a no-op, so it has to be rejected
	// before the plain-string probe.
	if len(raw.Message) == 0 || string(raw.Message) == "null" {
		msg.Role = RoleHuman
		msg.Content = unparsableText
		return msg
	}

	var plain string
	if err := json.Unmarshal(raw.Message, &plain); err == nil {
		msg.Role = RoleHuman
		msg.Content = plain
		return msg
	}

	var typed struct {
		Type    *string         `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw.Message, &typed); err != nil || typed.Type == nil || typed.Content == nil {
		msg.Role = RoleHuman
		msg.Content = unparsableText
		return msg
	}

	var content string
	isString := json.Unmarshal(typed.Content, &content) == nil

	if *typed.Type == string(RoleAI) && isString {
		msg.Role = RoleAI
		var payload aiPayload
		if err := json.Unmarshal([]byte(content), &payload); err != nil || payload.Output == nil {
			// Not the structured answer shape; keep the text verbatim.
			msg.Content = content
			return msg
		}
		msg.Segments, msg.Citations = expandOutput(payload, lookup)
		for _, segment := range msg.Segments {
			msg.Content += segment.Text
		}
		return msg
	}

	msg.Role = RoleHuman
	if *typed.Type == string(RoleAI) {
		msg.Role = RoleAI
	}
	switch {
	case isString && content != "":
		msg.Content = content
	case isString:
		msg.Content = emptyContent
	default:
		// Some pipelines store pre-structured content objects.
		var structured struct {
			Segments  []Segment  `json:"segments"`
			Citations []Citation `json:"citations"`
		}
		if err := json.Unmarshal(typed.Content, &structured); err == nil && len(structured.Segments) > 0 {
			msg.Segments = structured.Segments
			msg.Citations = structured.Citations
			for _, segment := range msg.Segments {
				msg.Content += segment.Text
			}
			return msg
		}
		msg.Content = emptyContent
	}
	return msg
}

// expandOutput flattens the pipeline answer into segments and citations. All
// citations of one output item share a single citation id; the counter
// advances per item that carries citations, not per citation.
func expandOutput(payload aiPayload, lookup SourceLookup) ([]Segment, []Citation) {
	var (
		segments  []Segment
		citations []Citation
	)
	nextID := 1
	for _, item := range payload.Output {
		segment := Segment{Text: item.Text}
		if len(item.Citations) > 0 {
			id := nextID
			segment.CitationID = &id
			for _, c := range item.Citations {
				info, ok := lookup[c.ChunkSourceID]
				if !ok {
					info = SourceInfo{Title: unknownSourceTitle, Type: defaultSourceType}
				}
				if info.Title == "" {
					info.Title = unknownSourceTitle
				}
				if info.Type == "" {
					info.Type = defaultSourceType
				}
				citations = append(citations, Citation{
					CitationID:  id,
					SourceID:    c.ChunkSourceID,
					SourceTitle: info.Title,
					SourceType:  info.Type,
					ChunkIndex:  c.ChunkIndex,
					LinesFrom:   c.LinesFrom,
					LinesTo:     c.LinesTo,
					Excerpt:     fmt.Sprintf("Lines %d-%d", c.LinesFrom, c.LinesTo),
				})
			}
			nextID++
		}
		segments = append(segments, segment)
	}
	return segments, citations
}
