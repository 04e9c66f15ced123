// Package browser drives a headless-capable Chrome session via rod to pull
// the visible text of a social post page. Runs are single-shot: each Run
// launches (or connects to) a browser, navigates, extracts, and tears down.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// Profile controls page-load waits and headless mode for a run.
type Profile struct {
	Headless          bool
	PageLoadWait      time.Duration
	ActionWait        time.Duration
	NavigationTimeout time.Duration
}

// DefaultProfile returns the defaults used when no configuration is supplied.
func DefaultProfile() Profile {
	return Profile{
		Headless:          false,
		PageLoadWait:      500 * time.Millisecond,
		ActionWait:        500 * time.Millisecond,
		NavigationTimeout: 30 * time.Second,
	}
}

// StepResult is one recorded action within a run.
type StepResult struct {
	ID               string `json:"id"`
	Action           string `json:"action"`
	ExtractedContent string `json:"extracted_content,omitempty"`
	IsDone           bool   `json:"is_done"`
	Error            string `json:"error,omitempty"`
}

// RunHistory is the record of a completed run. Its shape is not part of the
// agent contract — consumers must treat the run result as opaque and recover
// text defensively.
type RunHistory struct {
	RunID      string       `json:"run_id"`
	Task       string       `json:"task"`
	URL        string       `json:"url"`
	Steps      []StepResult `json:"steps"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// FinalResult returns the extracted content of the last done step, or "".
func (h *RunHistory) FinalResult() string {
	for i := len(h.Steps) - 1; i >= 0; i-- {
		if h.Steps[i].IsDone && h.Steps[i].ExtractedContent != "" {
			return h.Steps[i].ExtractedContent
		}
	}
	return ""
}

func (h *RunHistory) step(action, content string, done bool) {
	h.Steps = append(h.Steps, StepResult{
		ID:               uuid.NewString(),
		Action:           action,
		ExtractedContent: content,
		IsDone:           done,
	})
}

// Agent runs browser automation tasks against post URLs.
type Agent struct {
	profile Profile
}

// NewAgent creates an Agent with the given profile.
func NewAgent(profile Profile) *Agent {
	if profile.NavigationTimeout == 0 {
		profile.NavigationTimeout = 30 * time.Second
	}
	return &Agent{profile: profile}
}

// Run launches a browser, navigates to the URL and extracts the page's
// visible text, recording each action as a step. The task string describes
// the extraction goal and is kept on the history for traceability. The
// returned value is intentionally untyped; callers must not rely on its shape.
func (a *Agent) Run(ctx context.Context, task, url string) (any, error) {
	hist := &RunHistory{
		RunID:     uuid.NewString(),
		Task:      task,
		URL:       url,
		StartedAt: time.Now().UTC(),
	}

	l := launcher.New().Headless(a.profile.Headless)
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Cleanup()

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer b.Close()

	page, err := b.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer page.Close()
	hist.step("navigate", "", false)

	if err := page.Timeout(a.profile.NavigationTimeout).WaitLoad(); err != nil {
		// Pages behind consent walls often never settle; keep whatever loaded.
		hist.step("wait_load", fmt.Sprintf("Waited for load: %v", err), false)
	}

	if a.profile.PageLoadWait > 0 {
		select {
		case <-time.After(a.profile.PageLoadWait):
			hist.step("wait", fmt.Sprintf("Waited for %s", a.profile.PageLoadWait), false)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	// Settle dynamic content (lazy-loaded post bodies) before reading.
	if a.profile.ActionWait > 0 {
		if err := page.Mouse.Scroll(0, 400, 1); err != nil {
			hist.step("scroll", fmt.Sprintf("Scroll failed: %v", err), false)
		}
		select {
		case <-time.After(a.profile.ActionWait):
			hist.step("wait", fmt.Sprintf("Waited for %s", a.profile.ActionWait), false)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	src, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}

	text := VisibleText(src)
	hist.step("extract", text, true)
	hist.FinishedAt = time.Now().UTC()
	return hist, nil
}
