// Package report defines the research report record and its
// append-only JSONL store.
package report

import "github.com/kalambet/postscope/internal/source"

// Report is one completed research run.
type Report struct {
	Timestamp string      `json:"timestamp"`
	PostURL   string      `json:"post_url"`
	UserNote  string      `json:"user_note"`
	Source    source.Kind `json:"source"`
	PostText  string      `json:"post_text"`
	Query     string      `json:"query"`
	Answer    string      `json:"compound_answer"`
}
