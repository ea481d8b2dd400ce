// go_podcast: podcast transcript digest MCP server.
//
// Exposes MCP tools for the weekly digest of YouTube podcast channels,
// channel uploads, transcripts, transcript analysis and summaries, and the
// processing history. Runs as HTTP MCP server or stdio transport.
package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_podcast/internal/app"
	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/anatolykoptev/go_podcast/internal/podserver"
)

var version = "dev"

func main() {
	_ = godotenv.Load()
	mcpPort := env.Str("MCP_PORT", "8895")

	a, err := app.Open(context.Background(), app.Options{})
	if err != nil {
		slog.Error("init failed", slog.Any("error", err))
		return
	}
	defer a.Close()

	slog.Info("starting go_podcast",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_podcast",
		Version: version,
	}, nil)

	podserver.RegisterTools(server, podserver.Deps{
		Runner:    a.Runner,
		History:   a.History,
		Channels:  a.Channels,
		OutputDir: a.OutputDir,
	})
	slog.Info("tools registered", slog.Int("count", 7))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_podcast",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 900 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}
