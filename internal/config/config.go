// Package config holds the explicit runtime configuration for postscope.
// All settings come from defaults overridden by environment variables; an
// optional .env file in the working directory is loaded first. Nothing in the
// rest of the codebase reads the environment directly.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Groq    GroqConfig
	Browser BrowserConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type GroqConfig struct {
	APIKey       string
	BaseURL      string
	ExtractModel string
	QueryModel   string
	AnswerModel  string
}

type BrowserConfig struct {
	Headless            bool
	PageLoadWaitMs      int
	ActionWaitMs        int
	NavigationTimeoutMs int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Groq: GroqConfig{
			BaseURL:      "https://api.groq.com/openai/v1",
			ExtractModel: "groq/compound-mini",
			QueryModel:   "moonshotai/kimi-k2-instruct",
			AnswerModel:  "groq/compound",
		},
		Browser: BrowserConfig{
			Headless:            false,
			PageLoadWaitMs:      500,
			ActionWaitMs:        500,
			NavigationTimeoutMs: 30000,
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from defaults, an optional .env file, and
// POSTSCOPE_* / GROQ_API_KEY environment variables.
//
// A missing Groq API key is not an error: every completion-backed stage has a
// defined degraded result, so the server can run (and be tested) without one.
func Load() Config {
	// Best effort; absence of .env is the normal case.
	_ = godotenv.Load()
	return loadWith(os.Getenv)
}

// loadWith applies environment overrides through the given lookup function.
// Split out so tests can inject an environment.
func loadWith(getenv func(string) string) Config {
	cfg := defaults()

	if v := getenv("GROQ_API_KEY"); v != "" {
		cfg.Groq.APIKey = v
	}
	if v := getenv("POSTSCOPE_GROQ_BASE_URL"); v != "" {
		cfg.Groq.BaseURL = v
	}
	if v := getenv("POSTSCOPE_EXTRACT_MODEL"); v != "" {
		cfg.Groq.ExtractModel = v
	}
	if v := getenv("POSTSCOPE_QUERY_MODEL"); v != "" {
		cfg.Groq.QueryModel = v
	}
	if v := getenv("POSTSCOPE_ANSWER_MODEL"); v != "" {
		cfg.Groq.AnswerModel = v
	}
	if v := getenv("POSTSCOPE_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := getenv("POSTSCOPE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Malformed numeric/boolean overrides are ignored and the default kept.
	if v := getenv("POSTSCOPE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := getenv("POSTSCOPE_BROWSER_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			cfg.Browser.Headless = headless
		}
	}
	if v := getenv("POSTSCOPE_PAGE_LOAD_WAIT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Browser.PageLoadWaitMs = ms
		}
	}
	if v := getenv("POSTSCOPE_ACTION_WAIT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			cfg.Browser.ActionWaitMs = ms
		}
	}
	if v := getenv("POSTSCOPE_NAVIGATION_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Browser.NavigationTimeoutMs = ms
		}
	}

	return cfg
}
