package auth

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// Middleware returns HTTP middleware that validates Bearer tokens
// before the request reaches the streaming MCP transport. A rejected
// request never allocates transport session state. Unauthenticated
// requests get a 401 with a plain-text body and a WWW-Authenticate
// header pointing at the protected resource metadata (RFC 9728).
func Middleware(store *Store, logger *slog.Logger, serverURL string) func(http.Handler) http.Handler {
	metadataURL := serverURL + "/.well-known/oauth-protected-resource"
	// RFC 6750 Section 3.1: no error attribute when no token was provided.
	wwwAuthNoToken := fmt.Sprintf(`Bearer resource_metadata="%s"`, metadataURL)
	wwwAuthInvalid := fmt.Sprintf(`Bearer error="invalid_token", resource_metadata="%s"`, metadataURL)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logger.Warn("unauthorized: missing or invalid header",
					slog.String("ip", ip),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("WWW-Authenticate", wwwAuthNoToken)
				http.Error(w, "Unauthorized: Missing or invalid header", http.StatusUnauthorized)

				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if !store.ValidateToken(token) {
				logger.Warn("unauthorized: token not recognized",
					slog.String("ip", ip),
					slog.String("token_prefix", tokenPrefix(token)),
				)
				w.Header().Set("WWW-Authenticate", wwwAuthInvalid)
				http.Error(w, "Unauthorized: Token not recognized", http.StatusUnauthorized)

				return
			}

			logger.Debug("authorized request",
				slog.String("ip", ip),
				slog.String("token_prefix", tokenPrefix(token)),
			)

			next.ServeHTTP(w, r)
		})
	}
}

// tokenPrefix returns the first 8 characters of a token for logging.
// Full tokens never appear in logs.
func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
