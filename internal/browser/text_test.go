package browser

import (
	"strings"
	"testing"
)

func TestVisibleText(t *testing.T) {
	src := `<!doctype html>
<html>
<head><title>ignored</title><style>body{color:red}</style></head>
<body>
  <script>var tracking = true;</script>
  <article>
    <h1>Author Name</h1>
    <p>This is the   tweet
       text.</p>
  </article>
  <noscript>enable js</noscript>
</body>
</html>`

	got := VisibleText(src)

	if !strings.Contains(got, "Author Name") {
		t.Errorf("missing heading text: %q", got)
	}
	if !strings.Contains(got, "This is the tweet text.") {
		t.Errorf("whitespace not collapsed: %q", got)
	}
	for _, hidden := range []string{"tracking", "color:red", "ignored", "enable js"} {
		if strings.Contains(got, hidden) {
			t.Errorf("hidden content %q leaked into %q", hidden, got)
		}
	}
}

func TestVisibleText_Garbage(t *testing.T) {
	// html.Parse is extremely lenient; just verify no panic and sane output.
	if got := VisibleText("<<<%%%"); strings.TrimSpace(got) == "" && got != "" {
		t.Errorf("got %q", got)
	}
}

func TestRunHistoryFinalResult(t *testing.T) {
	h := &RunHistory{}
	h.step("navigate", "", false)
	h.step("wait", "Waited for 500ms", false)
	if h.FinalResult() != "" {
		t.Errorf("FinalResult() = %q, want empty before a done step", h.FinalResult())
	}

	h.step("extract", "the post text", true)
	if got := h.FinalResult(); got != "the post text" {
		t.Errorf("FinalResult() = %q", got)
	}
}
