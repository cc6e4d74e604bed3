package auth

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// HandleAuthorize returns the /authorize handler. Any client_id and
// redirect_uri pair is accepted here; the binding is enforced at token
// exchange, which fails unless the same pair is presented with the
// code. The caller's state value is echoed back unchanged so the
// client can correlate the redirect with its own request.
func HandleAuthorize(store *Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		q := r.URL.Query()

		if rt := q.Get("response_type"); rt != "code" {
			http.Error(w, "response_type must be \"code\"", http.StatusBadRequest)
			return
		}

		clientID := q.Get("client_id")
		redirectURI := q.Get("redirect_uri")
		if clientID == "" || redirectURI == "" {
			http.Error(w, "client_id and redirect_uri are required", http.StatusBadRequest)
			return
		}

		codeChallenge := q.Get("code_challenge")
		if codeChallenge == "" {
			http.Error(w, "code_challenge is required (PKCE)", http.StatusBadRequest)
			return
		}

		// Only the S256 transform is ever stored, so reject anything else
		// up front rather than letting the exchange fail later.
		if method := q.Get("code_challenge_method"); method != "" && method != "S256" {
			http.Error(w, "only S256 code_challenge_method is supported", http.StatusBadRequest)
			return
		}

		code := store.NewGrant(clientID, redirectURI, codeChallenge)

		logger.Debug("authorization code issued",
			slog.String("client_id", clientID),
		)

		// Build the redirect with proper encoding. Use "&" if the
		// redirect URI already carries a query component.
		params := url.Values{}
		params.Set("code", code)

		if st := q.Get("state"); st != "" {
			params.Set("state", st)
		}

		sep := "?"
		if strings.Contains(redirectURI, "?") {
			sep = "&"
		}

		http.Redirect(w, r, redirectURI+sep+params.Encode(), http.StatusFound)
	}
}
