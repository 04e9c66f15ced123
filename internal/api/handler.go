// Package api exposes the research pipeline over HTTP and MCP.
package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/postscope/internal/report"
)

const maxRequestBodySize = 1 << 20 // 1MB

// listLimit caps how many reports a single listing returns.
const listLimit = 200

//go:embed viewer.html
var viewerHTML []byte

// PipelineRunner abstracts the research pipeline for the API layer.
type PipelineRunner interface {
	Run(ctx context.Context, postURL, note string) (report.Report, error)
}

// ReportLister abstracts report listing for the API layer.
type ReportLister interface {
	List(limit int) ([]report.Report, error)
}

type Deps struct {
	Pipeline PipelineRunner
	Reports  ReportLister
}

// TriggerRequest starts one research run.
type TriggerRequest struct {
	URL  string `json:"url"`
	Note string `json:"note"`
}

func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(AllowAll)

	r.Get("/", handleViewer)
	r.Get("/reports", handleListReports(deps))
	r.Post("/trigger", handleTrigger(deps))

	return r
}

func handleViewer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(viewerHTML)
}

func handleListReports(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reports, err := deps.Reports.List(listLimit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list reports: %v", err)
			return
		}

		if reports == nil {
			reports = []report.Report{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reports)
	}
}

func handleTrigger(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req TriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required")
			return
		}

		rep, err := deps.Pipeline.Run(r.Context(), req.URL, req.Note)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to persist report: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
