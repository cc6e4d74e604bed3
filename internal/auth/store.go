// Package auth implements the OAuth 2.1 authorization-code-with-PKCE
// flow for the MCP server. The server is both authorization server and
// resource server. Authorization codes live in memory; issued tokens
// are persisted so they remain valid across restarts.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/gridironlab/cfbd-mcp/internal/state"
)

// Grant represents a pending authorization code.
type Grant struct {
	Code          string
	ClientID      string
	RedirectURI   string
	CodeChallenge string
	ExpiresAt     time.Time
}

const (
	// codeExpiry bounds how long an authorization code may sit
	// unexchanged.
	codeExpiry = 5 * time.Minute

	// cleanupInterval controls how often expired codes are reaped.
	cleanupInterval = 5 * time.Minute

	// authCodeBytes is the number of random bytes in an authorization
	// code (hex-encoded to twice this length).
	authCodeBytes = 32

	// tokenBytes is the number of random bytes in a bearer token.
	tokenBytes = 32

	// sessionBytes is the number of random bytes in a session ID.
	sessionBytes = 16
)

// Store holds pending authorization codes and the set of issued
// tokens. Token membership is kept in memory for O(1) gate checks and
// written through to the durable store on issuance.
type Store struct {
	mu     sync.RWMutex
	codes  map[string]*Grant // code -> Grant
	tokens map[string]state.IssuedToken
	stopGC chan struct{}

	persist     *state.Store // nil disables persistence
	staticToken string
	logger      *slog.Logger
}

// NewStore creates a store, loading previously issued tokens from the
// durable backend when one is provided. A nil persist runs the store
// memory-only; tokens are then lost on restart but the service still
// works. staticToken, when non-empty, is accepted by ValidateToken
// without ever being written to the store.
//
// A background goroutine reaps expired codes; call Stop to clean it up.
func NewStore(persist *state.Store, staticToken string, logger *slog.Logger) *Store {
	s := &Store{
		codes:       make(map[string]*Grant),
		tokens:      make(map[string]state.IssuedToken),
		stopGC:      make(chan struct{}),
		persist:     persist,
		staticToken: staticToken,
		logger:      logger,
	}

	if persist != nil {
		loaded, err := persist.AllTokens()
		if err != nil {
			logger.Warn("loading persisted tokens failed, starting empty",
				slog.String("error", err.Error()),
			)
		}

		for _, t := range loaded {
			s.tokens[t.TokenHash] = t
		}
	}

	go s.gcLoop()

	return s
}

// Stop terminates the background cleanup goroutine.
func (s *Store) Stop() {
	close(s.stopGC)
}

func (s *Store) gcLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopGC:
			return
		}
	}
}

// cleanup removes all expired codes from the store.
func (s *Store) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, g := range s.codes {
		if now.After(g.ExpiresAt) {
			delete(s.codes, k)
		}
	}
}

// NewGrant generates a one-time code for the given client and stores
// the pending grant. The returned code expires after codeExpiry.
func (s *Store) NewGrant(clientID, redirectURI, codeChallenge string) string {
	code := RandomHex(authCodeBytes)

	s.mu.Lock()
	s.codes[code] = &Grant{
		Code:          code,
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		CodeChallenge: codeChallenge,
		ExpiresAt:     time.Now().Add(codeExpiry),
	}
	s.mu.Unlock()

	return code
}

// ConsumeGrant retrieves and deletes a pending grant. The code is
// removed even when expired so it can never be replayed. Returns nil
// if the code is unknown or expired.
func (s *Store) ConsumeGrant(code string) *Grant {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.codes[code]
	if !ok {
		return nil
	}
	delete(s.codes, code)

	if time.Now().After(g.ExpiresAt) {
		return nil
	}
	return g
}

// IssueToken mints a new opaque bearer token for the client, attaches
// a fresh session ID, and persists the record before returning. A
// persistence failure is logged and the token remains valid for the
// life of this process.
func (s *Store) IssueToken(clientID string) string {
	raw := RandomHex(tokenBytes)
	rec := state.IssuedToken{
		TokenHash: state.TokenHash(raw),
		ClientID:  clientID,
		SessionID: RandomHex(sessionBytes),
		IssuedAt:  time.Now().UTC(),
	}

	if s.persist != nil {
		if err := s.persist.SaveToken(rec); err != nil {
			s.logger.Warn("persisting token failed, token valid until restart",
				slog.String("error", err.Error()),
			)
		}
	}

	s.mu.Lock()
	s.tokens[rec.TokenHash] = rec
	s.mu.Unlock()

	return raw
}

// ValidateToken reports whether a raw bearer token is recognized,
// either as the configured static deployment token or as a token
// issued through the OAuth flow.
func (s *Store) ValidateToken(raw string) bool {
	if s.staticToken != "" &&
		subtle.ConstantTimeCompare([]byte(raw), []byte(s.staticToken)) == 1 {
		return true
	}

	hash := state.TokenHash(raw)

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.tokens[hash]
	return ok
}

// TokenCount returns the number of issued tokens known to this process.
func (s *Store) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// RandomHex generates a cryptographically random hex string of the given byte length.
func RandomHex(byteLen int) string {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
