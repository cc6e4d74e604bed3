package e2e_test

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/gridironlab/cfbd-mcp/internal/auth"
	"github.com/gridironlab/cfbd-mcp/internal/cfbd"
	apperrors "github.com/gridironlab/cfbd-mcp/internal/errors"
	"github.com/gridironlab/cfbd-mcp/internal/mcpserver"
	"github.com/gridironlab/cfbd-mcp/internal/server"
)

const (
	testClientID = "e2e-test-client"
	// RFC 7636 requires verifiers of 43 to 128 characters.
	pkceVerifier = "e2e-test-pkce-verifier-that-is-long-enough-0"
	redirectURI  = "http://127.0.0.1:19876/callback"
	staticToken  = "e2e-static-deploy-token"
)

// harness holds the full e2e stack: a fake upstream API and a real
// HTTP server backed by the OAuth layer and MCP tool server.
type harness struct {
	URL           string
	Store         *auth.Store
	Client        *http.Client
	UpstreamCalls *atomic.Int64
}

// newHarness starts a fake upstream serving the given body, wires up
// the full OAuth + MCP HTTP stack via server.NewMux, and starts an
// httptest server in front of it.
func newHarness(t *testing.T, upstreamBody string) *harness {
	t.Helper()

	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamBody))
	}))
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client := cfbd.NewClient("e2e-key", upstream.URL, newMemCache(), cfbd.DefaultTTLPolicy(), logger, nil)

	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: "cfbd-mcp-e2e", Version: "test"},
		nil,
	)
	mcpserver.RegisterTools(mcpServer, client)
	mcpserver.RegisterPrompts(mcpServer)
	mcpserver.RegisterResources(mcpServer)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return mcpServer
	}, nil)

	store := auth.NewStore(nil, staticToken, logger)
	t.Cleanup(store.Stop)

	// Use NewUnstartedServer so the listener address is known before
	// building the mux (the metadata document embeds the server URL).
	ts := httptest.NewUnstartedServer(nil)
	serverURL := "http://" + ts.Listener.Addr().String()

	ts.Config.Handler = server.NewMux(server.MuxConfig{
		Store:      store,
		MCPHandler: mcpHandler,
		Logger:     logger,
		ServerURL:  serverURL,
	})
	ts.Start()
	t.Cleanup(ts.Close)

	return &harness{
		URL:           serverURL,
		Store:         store,
		Client:        ts.Client(),
		UpstreamCalls: &calls,
	}
}

// memCache is a minimal in-memory response cache for the harness.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := m.entries[key]; ok {
		return value, nil
	}
	return nil, apperrors.ErrCacheMiss
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.entries[key] = value
	return nil
}

func (m *memCache) Close() error { return nil }

func pkceChallenge(verifier string) string {
	h := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// tokenResponse is the JSON body returned by POST /token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// authCodeFlow performs the full authorization code + PKCE flow:
// GET /authorize (no redirect following, scrape the code from the
// Location header), then POST /token.
func (h *harness) authCodeFlow(t *testing.T) tokenResponse {
	t.Helper()

	challenge := pkceChallenge(pkceVerifier)

	authURL := h.URL + "/authorize?" + url.Values{
		"response_type":         {"code"},
		"client_id":             {testClientID},
		"redirect_uri":          {redirectURI},
		"state":                 {"e2e-state"},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}.Encode()

	noRedirect := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := noRedirect.Get(authURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "e2e-state", location.Query().Get("state"))

	code := location.Query().Get("code")
	require.NotEmpty(t, code)

	return h.exchangeCode(t, code, pkceVerifier)
}

// exchangeCode posts the token request and decodes the response. The
// request must succeed; failure paths use doPostForm directly.
func (h *harness) exchangeCode(t *testing.T, code, verifier string) tokenResponse {
	t.Helper()

	resp := h.doPostForm(t, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"client_id":     {testClientID},
		"code_verifier": {verifier},
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr tokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	return tr
}

func (h *harness) doPostForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, h.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.Client.Do(req)
	require.NoError(t, err)
	return resp
}

// mcpSession opens an MCP client session over the streamable HTTP
// transport using the given bearer token.
func (h *harness) mcpSession(t *testing.T, token string) *mcp.ClientSession {
	t.Helper()

	transport := &mcp.StreamableClientTransport{
		Endpoint: h.URL + "/mcp",
		HTTPClient: &http.Client{
			Transport: &bearerTransport{token: token, base: http.DefaultTransport},
		},
	}

	client := mcp.NewClient(
		&mcp.Implementation{Name: "e2e-client", Version: "test"},
		nil,
	)
	session, err := client.Connect(t.Context(), transport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

// bearerTransport injects the Authorization header on every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (bt *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+bt.token)
	return bt.base.RoundTrip(clone)
}

func extractTextContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "first content is not TextContent")
	return tc.Text
}
