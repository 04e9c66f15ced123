// Package extract recovers the main text of a social post. Two extractors
// exist: one asks a completion model to visit the URL and answer in strict
// JSON, the other drives a browser-automation agent and recovers text from
// its loosely shaped run result. Both are best-effort; callers treat any
// failure as "no post text".
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kalambet/postscope/internal/groq"
)

const extractorSystem = `You are PostExtractor. Visit the given social post URL (LinkedIn or X) and return ONLY the main post text.
Input: The user will provide a URL directly.
Rules:
- Return ONLY JSON: {"post_text": "..."}
- Exclude reactions, counts, and comments; include text from 'see more' / collapsed content if applicable
- If the page is not directly accessible, infer the gist from any preview/snippet and user-visible text
- No markdown, no extra text`

// Extractor recovers post text from a post URL.
type Extractor interface {
	Extract(ctx context.Context, postURL string) (string, error)
}

// Chatter is the slice of the completion client used here.
type Chatter interface {
	Chat(ctx context.Context, req groq.ChatRequest) (string, error)
}

// CompletionExtractor asks a web-capable completion model to visit the URL
// and return the post text as strict JSON.
type CompletionExtractor struct {
	client Chatter
	model  string
}

// NewCompletionExtractor creates a CompletionExtractor using the given client
// and model name.
func NewCompletionExtractor(client Chatter, model string) *CompletionExtractor {
	return &CompletionExtractor{client: client, model: model}
}

// Extract returns the post text, ErrNoText when the model answered without a
// post_text field, or a wrapped error when the call or parse failed.
func (e *CompletionExtractor) Extract(ctx context.Context, postURL string) (string, error) {
	raw, err := e.client.Chat(ctx, groq.ChatRequest{
		Model:       e.model,
		Temperature: 0.0,
		Messages: []groq.Message{
			{Role: "system", Content: extractorSystem},
			{Role: "user", Content: postURL},
		},
	})
	if err != nil {
		return "", fmt.Errorf("extraction chat: %w", err)
	}

	var payload struct {
		PostText *string `json:"post_text"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", fmt.Errorf("parsing extraction response: %w", err)
	}
	if payload.PostText == nil {
		return "", ErrNoText
	}
	return *payload.PostText, nil
}

// AgentRunner is the slice of the browser agent used here. The run result is
// untyped on purpose: its shape is not guaranteed.
type AgentRunner interface {
	Run(ctx context.Context, task, url string) (any, error)
}

// AgentExtractor extracts X posts through the browser-automation agent.
type AgentExtractor struct {
	agent AgentRunner
}

// NewAgentExtractor creates an AgentExtractor backed by the given agent.
func NewAgentExtractor(agent AgentRunner) *AgentExtractor {
	return &AgentExtractor{agent: agent}
}

// Extract runs the agent against the URL and recovers text from whatever it
// returned. ErrNoText means the run produced nothing recognizable.
func (e *AgentExtractor) Extract(ctx context.Context, postURL string) (string, error) {
	result, err := e.agent.Run(ctx, buildAgentTask(postURL), postURL)
	if err != nil {
		return "", fmt.Errorf("agent run: %w", err)
	}
	return RecoverText(result)
}

func buildAgentTask(postURL string) string {
	var b strings.Builder
	b.WriteString("Navigate to this X/Twitter post: ")
	b.WriteString(postURL)
	b.WriteString("\n\nExtract the following information:\n")
	b.WriteString("1. The author's name (display name, not @username)\n")
	b.WriteString("2. The main tweet text (the actual post content)\n\n")
	b.WriteString("Format the output as:\nAuthor: [Author Name]\nTweet: [Tweet Text]\n\n")
	b.WriteString("Do not include timestamps, likes, retweets, or any other metadata.\n")
	b.WriteString("If the tweet has images or videos, briefly describe what they show.")
	return b.String()
}
