package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gridironlab/cfbd-mcp/internal/auth"
	"github.com/gridironlab/cfbd-mcp/internal/cfbd"
	"github.com/gridironlab/cfbd-mcp/internal/config"
	"github.com/gridironlab/cfbd-mcp/internal/logging"
	"github.com/gridironlab/cfbd-mcp/internal/mcpserver"
	"github.com/gridironlab/cfbd-mcp/internal/server"
	"github.com/gridironlab/cfbd-mcp/internal/state"
)

var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)

	// Durable token store.
	persist, err := state.Open(cfg.TokenStorePath, logger)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}
	defer persist.Close()

	store := auth.NewStore(persist, cfg.StaticBearerToken, logger)
	defer store.Stop()

	// Response cache. Optional: without REDIS_URL every tool call goes
	// straight upstream.
	var cache cfbd.Cache
	if cfg.RedisURL != "" {
		cache, err = cfbd.NewRedisCache(context.Background(), cfg.RedisURL, "cfbd", logger)
		if err != nil {
			return fmt.Errorf("connecting cache: %w", err)
		}
		defer cache.Close()
	}

	ttl, err := cfbd.LoadTTLPolicy(cfg.TTLPolicyFile)
	if err != nil {
		return fmt.Errorf("loading ttl policy: %w", err)
	}

	client := cfbd.NewClient(cfg.CFBDAPIKey, cfg.CFBDBaseURL, cache, ttl, logger, nil)

	// MCP server setup.
	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: "cfbd-mcp", Version: Version},
		nil,
	)
	mcpserver.RegisterTools(mcpServer, client)
	mcpserver.RegisterPrompts(mcpServer)
	mcpserver.RegisterResources(mcpServer)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	mux := server.NewMux(server.MuxConfig{
		Store:      store,
		MCPHandler: mcpHandler,
		Logger:     logger,
		ServerURL:  cfg.ServerURL,
	})

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server",
		"listen", cfg.ListenAddr,
		"server_url", cfg.ServerURL,
		"environment", cfg.Environment,
		"cache_enabled", cache != nil,
		"tokens_loaded", store.TokenCount(),
	)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
