// Package server provides HTTP server construction for cfbd-mcp.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gridironlab/cfbd-mcp/internal/auth"
)

// MuxConfig holds dependencies for building the HTTP mux.
type MuxConfig struct {
	Store      *auth.Store
	MCPHandler http.Handler
	Logger     *slog.Logger
	ServerURL  string
}

// NewMux builds the HTTP mux with OAuth discovery, authorization,
// token, liveness and MCP endpoints. The MCP endpoint is protected by
// Bearer token middleware.
func NewMux(cfg MuxConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/oauth-protected-resource", auth.HandleProtectedResourceMetadata(cfg.ServerURL))
	mux.HandleFunc("/.well-known/oauth-authorization-server", auth.HandleServerMetadata(cfg.ServerURL))
	mux.HandleFunc("/authorize", auth.HandleAuthorize(cfg.Store, cfg.Logger))
	mux.HandleFunc("/token", auth.HandleToken(cfg.Store, cfg.Logger))

	authMiddleware := auth.Middleware(cfg.Store, cfg.Logger, cfg.ServerURL)
	mux.Handle("/mcp", authMiddleware(cfg.MCPHandler))

	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("User-agent: *\nDisallow: /\n"))
	})

	// Liveness probe. Unknown paths under / stay 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("OK"))
	})

	return mux
}
