// Package app wires configuration, stores and the digest runner for the
// go_podcast binaries.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/env"

	"github.com/anatolykoptev/go_podcast/internal/channels"
	"github.com/anatolykoptev/go_podcast/internal/digest"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/storage"
)

// App is the opened state shared by the MCP server and the CLI.
type App struct {
	Channels  *channels.Manager
	Store     *storage.TranscriptStore
	History   *storage.History // nil when the history database could not be opened
	Archive   *storage.Archive // nil unless DATABASE_URL is set
	Runner    *digest.Runner
	OutputDir string
}

// Options override the environment for one process.
type Options struct {
	ConfigDir string // default PODCAST_CONFIG_DIR or "config"
	OutputDir string // default: output_directory from channels.yaml
}

// Open loads the channel config, initialises the engine from the environment
// and settings.yaml, and opens the stores.
func Open(ctx context.Context, o Options) (*App, error) {
	configDir := o.ConfigDir
	if configDir == "" {
		configDir = env.Str("PODCAST_CONFIG_DIR", "config")
	}
	m, err := channels.Open(configDir)
	if err != nil {
		return nil, err
	}
	settings := m.Settings()

	c := EngineConfig(settings)
	if err := initLLM(ctx, &c); err != nil {
		slog.Warn("llm init failed, using heuristic analysis", slog.String("provider", c.LLMProvider), slog.Any("error", err))
	}
	engine.Init(c)
	engine.InitCache(env.Str("REDIS_URL", ""), env.Duration("CACHE_TTL", 24*time.Hour),
		c.CacheMaxEntries, c.CacheCleanupInterval)

	dataDir := env.Str("PODCAST_DATA_DIR", "data")
	store, err := storage.NewTranscriptStore(filepath.Join(dataDir, "transcripts"))
	if err != nil {
		return nil, err
	}
	a := &App{Channels: m, Store: store, OutputDir: o.OutputDir}
	if a.OutputDir == "" {
		a.OutputDir = m.Defaults().OutputDirectory
	}

	if h, err := storage.OpenHistory(filepath.Join(dataDir, "processing_history.db")); err != nil {
		slog.Warn("history disabled", slog.Any("error", err))
	} else {
		a.History = h
	}

	if dbURL := env.Str("DATABASE_URL", ""); dbURL != "" {
		arch, err := storage.ConnectArchive(ctx, dbURL)
		if err != nil {
			slog.Warn("analysis archive disabled", slog.Any("error", err))
		} else {
			a.Archive = arch
		}
	}

	opts := []digest.Option{
		digest.WithChannels(m),
		digest.WithConcurrency(settings.Processing.ConcurrentChannels),
	}
	if a.History != nil {
		opts = append(opts, digest.WithHistory(a.History))
	}
	if a.Archive != nil {
		opts = append(opts, digest.WithArchive(a.Archive))
	}
	a.Runner = digest.NewRunner(store, opts...)

	slog.Info("podcast app ready",
		slog.String("config", configDir),
		slog.String("data", dataDir),
		slog.String("llm", c.LLMProvider),
		slog.Bool("history", a.History != nil),
		slog.Bool("archive", a.Archive != nil))
	return a, nil
}

// Close releases the database handles.
func (a *App) Close() {
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			slog.Warn("history close failed", slog.Any("error", err))
		}
	}
	if a.Archive != nil {
		a.Archive.Close()
	}
}

// EngineConfig reads the engine configuration from the environment, taking
// processing limits from settings.
func EngineConfig(s channels.Settings) engine.Config {
	return engine.Config{
		LLMProvider:           strings.ToLower(env.Str("LLM_PROVIDER", "")),
		LLMAPIKey:             env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:    env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:            env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:              env.Str("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:        env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:          env.Int("LLM_MAX_TOKENS", 2000),
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		TranscriptLangs:       env.List("TRANSCRIPT_LANGS", "en,en-US,en-GB"),
		MaxTranscriptChars:    s.Processing.MaxTranscriptLength,
		YouTubeRPS:            env.Float("YOUTUBE_RPS", 2),
		YouTubeBurst:          env.Int("YOUTUBE_BURST", 4),
		RetryAttempts:         s.Processing.RetryAttempts,
		RetryDelay:            time.Duration(s.Processing.RetryDelay) * time.Second,
		Analysis:              s.AnalysisConfig(),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// initLLM picks the provider: LLM_PROVIDER when set, otherwise gemini when
// GEMINI_API_KEY is present, openai when LLM_API_KEY is, else none.
func initLLM(ctx context.Context, c *engine.Config) error {
	geminiKey := env.Str("GEMINI_API_KEY", "")
	if c.LLMProvider == "" {
		switch {
		case geminiKey != "":
			c.LLMProvider = "gemini"
		case c.LLMAPIKey != "":
			c.LLMProvider = "openai"
		default:
			c.LLMProvider = "none"
		}
	}
	switch c.LLMProvider {
	case "gemini":
		fn, err := engine.NewGeminiLLM(ctx, geminiKey, env.Str("GEMINI_MODEL", "gemini-2.5-flash"))
		if err != nil {
			c.LLMProvider = "none"
			return err
		}
		c.LLM = fn
	case "openai":
		if c.LLMAPIKey == "" {
			c.LLMProvider = "none"
			return errors.New("LLM_API_KEY is required for the openai provider")
		}
		c.LLM = engine.NewOpenAILLM(*c)
	case "none":
	default:
		p := c.LLMProvider
		c.LLMProvider = "none"
		return errors.New("unknown LLM_PROVIDER " + p)
	}
	return nil
}
