package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kalambet/postscope/internal/groq"
)

// mockChatter implements Chatter for testing.
type mockChatter struct {
	response string
	err      error
	lastReq  groq.ChatRequest
}

func (m *mockChatter) Chat(_ context.Context, req groq.ChatRequest) (string, error) {
	m.lastReq = req
	return m.response, m.err
}

func TestCompletionExtract(t *testing.T) {
	mock := &mockChatter{response: `{"post_text": "We just shipped v2 of our platform."}`}
	e := NewCompletionExtractor(mock, "groq/compound-mini")

	got, err := e.Extract(context.Background(), "https://linkedin.com/posts/x")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "We just shipped v2 of our platform." {
		t.Errorf("got %q", got)
	}

	if mock.lastReq.Model != "groq/compound-mini" {
		t.Errorf("model = %q", mock.lastReq.Model)
	}
	if mock.lastReq.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", mock.lastReq.Temperature)
	}
	if len(mock.lastReq.Messages) != 2 || mock.lastReq.Messages[1].Content != "https://linkedin.com/posts/x" {
		t.Errorf("messages = %+v, want URL as the user message", mock.lastReq.Messages)
	}
}

func TestCompletionExtract_CallFailed(t *testing.T) {
	mock := &mockChatter{err: fmt.Errorf("connection refused")}
	e := NewCompletionExtractor(mock, "m")

	_, err := e.Extract(context.Background(), "https://linkedin.com/posts/x")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoText) {
		t.Error("transport failure must not be ErrNoText")
	}
}

func TestCompletionExtract_MalformedJSON(t *testing.T) {
	mock := &mockChatter{response: "Sure! Here's the post text: ..."}
	e := NewCompletionExtractor(mock, "m")

	if _, err := e.Extract(context.Background(), "u"); err == nil {
		t.Fatal("expected error on malformed JSON")
	}
}

func TestCompletionExtract_MissingField(t *testing.T) {
	mock := &mockChatter{response: `{"text": "wrong key"}`}
	e := NewCompletionExtractor(mock, "m")

	_, err := e.Extract(context.Background(), "u")
	if !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}

// mockAgent implements AgentRunner.
type mockAgent struct {
	result   any
	err      error
	lastTask string
	lastURL  string
}

func (m *mockAgent) Run(_ context.Context, task, url string) (any, error) {
	m.lastTask = task
	m.lastURL = url
	return m.result, m.err
}

func TestAgentExtract(t *testing.T) {
	mock := &mockAgent{result: map[string]any{"final_result": "Author: A\nTweet: hi"}}
	e := NewAgentExtractor(mock)

	got, err := e.Extract(context.Background(), "https://x.com/foo/status/1")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Author: A\nTweet: hi" {
		t.Errorf("got %q", got)
	}
	if mock.lastURL != "https://x.com/foo/status/1" {
		t.Errorf("url = %q", mock.lastURL)
	}
	if !strings.Contains(mock.lastTask, "https://x.com/foo/status/1") {
		t.Errorf("task does not mention the URL: %q", mock.lastTask)
	}
	if !strings.Contains(mock.lastTask, "Author:") {
		t.Errorf("task does not request the output format: %q", mock.lastTask)
	}
}

func TestAgentExtract_RunFailed(t *testing.T) {
	mock := &mockAgent{err: fmt.Errorf("chrome not found")}
	e := NewAgentExtractor(mock)

	_, err := e.Extract(context.Background(), "u")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoText) {
		t.Error("run failure must not be ErrNoText")
	}
}

func TestAgentExtract_NothingRecognizable(t *testing.T) {
	mock := &mockAgent{result: map[string]any{"status": "done"}}
	e := NewAgentExtractor(mock)

	_, err := e.Extract(context.Background(), "u")
	if !errors.Is(err, ErrNoText) {
		t.Errorf("err = %v, want ErrNoText", err)
	}
}
