// Package pipeline orchestrates one research run: classify the post
// URL, extract the post text, build a search query, synthesize an
// answer, and persist the resulting report.
//
// Every stage is best effort. A stage that fails leaves its output
// empty (or a deterministic fallback) and the run continues; the only
// error Run can return is a persistence failure.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kalambet/postscope/internal/extract"
	"github.com/kalambet/postscope/internal/report"
	"github.com/kalambet/postscope/internal/source"
)

// QueryBuilder derives a search query from the extracted text and note.
type QueryBuilder interface {
	Build(ctx context.Context, postText, note string, kind source.Kind) string
}

// AnswerSynthesizer produces a researched answer for a query.
type AnswerSynthesizer interface {
	Answer(ctx context.Context, query string) string
}

// ReportSink persists completed reports.
type ReportSink interface {
	Append(r report.Report) error
}

// Runner wires the four stages and the sink.
type Runner struct {
	linkedin extract.Extractor
	x        extract.Extractor
	generic  extract.Extractor
	builder  QueryBuilder
	answerer AnswerSynthesizer
	sink     ReportSink
}

func NewRunner(linkedin, x, generic extract.Extractor, builder QueryBuilder, answerer AnswerSynthesizer, sink ReportSink) *Runner {
	return &Runner{
		linkedin: linkedin,
		x:        x,
		generic:  generic,
		builder:  builder,
		answerer: answerer,
		sink:     sink,
	}
}

func (r *Runner) extractorFor(kind source.Kind) extract.Extractor {
	switch kind {
	case source.LinkedIn:
		return r.linkedin
	case source.X:
		return r.x
	default:
		return r.generic
	}
}

// Run executes the full pipeline for one post and persists the report.
// The returned error is non-nil only when persistence fails; the
// report itself is returned either way.
func (r *Runner) Run(ctx context.Context, postURL, note string) (report.Report, error) {
	started := time.Now()
	kind := source.Detect(postURL)
	log := slog.With("url", postURL, "source", kind)
	log.Info("research run started")

	extractStart := time.Now()
	postText, err := r.extractorFor(kind).Extract(ctx, postURL)
	if err != nil {
		if errors.Is(err, extract.ErrNoText) {
			log.Warn("no post text recovered", "elapsed", time.Since(extractStart))
		} else {
			log.Warn("post extraction failed", "error", err, "elapsed", time.Since(extractStart))
		}
		postText = ""
	} else {
		log.Info("post text extracted", "chars", len(postText), "elapsed", time.Since(extractStart))
	}

	queryStart := time.Now()
	q := r.builder.Build(ctx, postText, note, kind)
	log.Info("query built", "query", q, "elapsed", time.Since(queryStart))

	answerStart := time.Now()
	answer := r.answerer.Answer(ctx, q)
	log.Info("answer synthesized", "chars", len(answer), "elapsed", time.Since(answerStart))

	rep := report.Report{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		PostURL:   postURL,
		UserNote:  note,
		Source:    kind,
		PostText:  postText,
		Query:     q,
		Answer:    answer,
	}
	if err := r.sink.Append(rep); err != nil {
		log.Error("persisting report failed", "error", err)
		return rep, err
	}
	log.Info("research run finished", "elapsed", time.Since(started))
	return rep, nil
}
