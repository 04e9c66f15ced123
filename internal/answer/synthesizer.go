// Package answer runs the web-search-capable answer completion for a
// research query and collects the streamed response.
package answer

import (
	"context"
	"io"
	"log/slog"

	"github.com/kalambet/postscope/internal/groq"
)

// Streamer is the streaming completion surface the synthesizer needs.
type Streamer interface {
	ChatStream(ctx context.Context, req groq.ChatRequest) (io.ReadCloser, error)
}

// Synthesizer produces a researched answer for a query.
type Synthesizer struct {
	client Streamer
	model  string
}

func NewSynthesizer(client Streamer, model string) *Synthesizer {
	return &Synthesizer{client: client, model: model}
}

// Answer streams a completion for the query and returns the assembled
// text. It never fails: any transport or stream problem degrades to
// whatever text arrived, possibly empty.
func (s *Synthesizer) Answer(ctx context.Context, q string) string {
	stream, err := s.client.ChatStream(ctx, groq.ChatRequest{
		Model:       s.model,
		Temperature: 0.5,
		MaxTokens:   2048,
		TopP:        1,
		Stream:      true,
		Messages: []groq.Message{
			{Role: "user", Content: q},
		},
	})
	if err != nil {
		slog.Warn("answer completion failed", "error", err)
		return ""
	}
	defer stream.Close()

	text, err := groq.CollectDeltas(stream)
	if err != nil {
		slog.Warn("answer stream ended early", "error", err, "collected", len(text))
	}
	return text
}
