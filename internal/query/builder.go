// Package query turns an extracted post plus the user's note into a
// single web-search query via a chat completion, with a deterministic
// fallback when the completion cannot be trusted.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kalambet/postscope/internal/groq"
	"github.com/kalambet/postscope/internal/source"
)

const builderSystem = `You are a research query generator.

You receive:
- post_text: the text of a social media post (may be empty)
- user_note: what the user wants to find out

Produce ONE web search query that combines the key entities and claims
from the post with the user's research intent. The query should be
specific enough to surface primary sources.

Respond ONLY with JSON:
{"query": "<the search query>"}`

// Chatter is the completion surface the builder needs.
type Chatter interface {
	Chat(ctx context.Context, req groq.ChatRequest) (string, error)
}

// Builder derives a search query from post text and a user note.
type Builder struct {
	client Chatter
	model  string
}

func NewBuilder(client Chatter, model string) *Builder {
	return &Builder{client: client, model: model}
}

// Build returns a search query. It never fails: any completion or
// parse problem degrades to the deterministic fallback.
func (b *Builder) Build(ctx context.Context, postText, note string, kind source.Kind) string {
	payload, err := json.Marshal(map[string]string{
		"post_text": postText,
		"user_note": note,
	})
	if err != nil {
		return Fallback(note, kind)
	}

	content, err := b.client.Chat(ctx, groq.ChatRequest{
		Model:       b.model,
		Temperature: 0.2,
		Messages: []groq.Message{
			{Role: "system", Content: builderSystem},
			{Role: "user", Content: string(payload)},
		},
	})
	if err != nil {
		slog.Warn("query completion failed, using fallback", "error", err)
		return Fallback(note, kind)
	}

	var out struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		slog.Warn("query response is not valid JSON, using fallback", "error", err)
		return Fallback(note, kind)
	}
	if q := strings.TrimSpace(out.Query); q != "" {
		return q
	}
	slog.Warn("query response has empty query, using fallback")
	return Fallback(note, kind)
}

// Fallback combines the note and source kind into a usable query.
func Fallback(note string, kind source.Kind) string {
	return fmt.Sprintf("%s (source: %s)", note, kind)
}
