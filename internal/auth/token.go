package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/gridironlab/cfbd-mcp/internal/errors"
)

// maxRequestBody bounds the token request body size.
const maxRequestBody = 1 << 20

type tokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
	CodeVerifier string `json:"code_verifier"`
	ClientID     string `json:"client_id"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleToken returns the /token handler.
func HandleToken(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

		// Support both JSON and form-encoded bodies.
		var req tokenRequest
		if r.Header.Get("Content-Type") == "application/json" {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
				return
			}
		} else {
			if err := r.ParseForm(); err != nil {
				writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
				return
			}
			req = tokenRequest{
				GrantType:    r.FormValue("grant_type"),
				Code:         r.FormValue("code"),
				RedirectURI:  r.FormValue("redirect_uri"),
				CodeVerifier: r.FormValue("code_verifier"),
				ClientID:     r.FormValue("client_id"),
			}
		}

		if req.GrantType != "authorization_code" {
			writeJSONError(w, http.StatusBadRequest, "unsupported_grant_type", "only authorization_code is supported")
			return
		}

		if req.Code == "" {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "code is required")
			return
		}

		token, err := exchange(store, req)
		if err != nil {
			logger.Debug("token exchange failed",
				slog.String("client_id", req.ClientID),
				slog.String("error", err.Error()),
			)
			writeJSONError(w, http.StatusBadRequest, "invalid_grant", err.Error())

			return
		}

		logger.Info("token issued", slog.String("client_id", req.ClientID))

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
		})
	}
}

// exchange validates a code exchange request and mints a token.
// Validation order: code first, then client binding, then PKCE.
func exchange(store *Store, req tokenRequest) (string, error) {
	grant := store.ConsumeGrant(req.Code)
	if grant == nil {
		return "", apperrors.ErrInvalidGrant
	}

	if grant.ClientID != req.ClientID || grant.RedirectURI != req.RedirectURI {
		return "", apperrors.ErrClientMismatch
	}

	if !verifyPKCE(req.CodeVerifier, grant.CodeChallenge) {
		return "", apperrors.ErrPKCEFailure
	}

	return store.IssueToken(grant.ClientID), nil
}

// verifyPKCE checks that SHA256(verifier) matches the challenge (S256 method).
func verifyPKCE(verifier, challenge string) bool {
	if !validVerifier(verifier) {
		return false
	}

	h := sha256.Sum256([]byte(verifier))
	computed := base64.RawURLEncoding.EncodeToString(h[:])

	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}

// validVerifier enforces the RFC 7636 code verifier grammar: 43 to 128
// characters from the unreserved set.
func validVerifier(v string) bool {
	if len(v) < 43 || len(v) > 128 {
		return false
	}

	for _, c := range v {
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '.' || c == '_' || c == '~':
		default:
			return false
		}
	}

	return true
}

type jsonError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: code, ErrorDescription: description})
}
