package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/postscope/internal/answer"
	"github.com/kalambet/postscope/internal/api"
	"github.com/kalambet/postscope/internal/browser"
	"github.com/kalambet/postscope/internal/config"
	"github.com/kalambet/postscope/internal/extract"
	"github.com/kalambet/postscope/internal/groq"
	"github.com/kalambet/postscope/internal/pipeline"
	"github.com/kalambet/postscope/internal/query"
	"github.com/kalambet/postscope/internal/report"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the postscope server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running postscope server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show postscope system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "postscope.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "postscope version %s\n", version)

	cfg := config.Load()

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if cfg.Groq.APIKey == "" {
		printWarning("GROQ_API_KEY is not set; completion stages will return degraded results")
	}

	// Refuse to double-start: probe the port before touching the PID file.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	probeURL := fmt.Sprintf("http://127.0.0.1:%d/reports", cfg.Server.Port)
	probeClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := probeClient.Get(probeURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("postscope is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("postscope is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Build the research pipeline.
	groqClient := groq.NewWithBaseURL(cfg.Groq.APIKey, cfg.Groq.BaseURL)
	agent := browser.NewAgent(browser.Profile{
		Headless:          cfg.Browser.Headless,
		PageLoadWait:      time.Duration(cfg.Browser.PageLoadWaitMs) * time.Millisecond,
		ActionWait:        time.Duration(cfg.Browser.ActionWaitMs) * time.Millisecond,
		NavigationTimeout: time.Duration(cfg.Browser.NavigationTimeoutMs) * time.Millisecond,
	})

	linkedinExtractor := extract.NewCompletionExtractor(groqClient, cfg.Groq.ExtractModel)
	xExtractor := extract.NewAgentExtractor(agent)
	genericExtractor := extract.NewCompletionExtractor(groqClient, cfg.Groq.ExtractModel)

	builder := query.NewBuilder(groqClient, cfg.Groq.QueryModel)
	synthesizer := answer.NewSynthesizer(groqClient, cfg.Groq.AnswerModel)
	store := report.Open(cfg.Storage.DataDir)

	runner := pipeline.NewRunner(linkedinExtractor, xExtractor, genericExtractor, builder, synthesizer, store)

	// HTTP server.
	handler := api.NewHandler(api.Deps{Pipeline: runner, Reports: store})
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server on stdio.
	mcpSrv := api.NewMCPServer(api.MCPDeps{Pipeline: runner, Reports: store})
	stdioSrv := server.NewStdioServer(mcpSrv)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(os.Stderr, "postscope listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := stdioSrv.Listen(gctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
		return nil
	})
	slog.Info("MCP server started (stdio transport)")

	g.Go(func() error {
		<-gctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	cfg := config.Load()

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("postscope is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop postscope (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to postscope (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg := config.Load()

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/reports")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		defer resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
			var reports []json.RawMessage
			if json.NewDecoder(resp.Body).Decode(&reports) == nil {
				printStatus("Reports", "%s", countLabel(len(reports), 200))
			}
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.Groq.APIKey == "" {
		printStatus("Groq API key", "not set")
	} else {
		printStatus("Groq API key", "set")
	}
	printStatus("Extract model", "%s", cfg.Groq.ExtractModel)
	printStatus("Query model", "%s", cfg.Groq.QueryModel)
	printStatus("Answer model", "%s", cfg.Groq.AnswerModel)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func countLabel(count, limit int) string {
	if count >= limit {
		return fmt.Sprintf("%d+", count)
	}
	return fmt.Sprintf("%d", count)
}
