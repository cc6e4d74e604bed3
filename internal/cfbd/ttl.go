package cfbd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTTL applies to any endpoint without an explicit policy entry.
const DefaultTTL = 30 * time.Minute

// TTLPolicy maps endpoint paths to cache lifetimes. Historical data
// (completed games, season records) tolerates long TTLs; in-progress
// data like plays and drives goes stale quickly.
type TTLPolicy map[string]time.Duration

// DefaultTTLPolicy returns the built-in per-endpoint cache lifetimes.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		"/games":              time.Hour,
		"/records":            time.Hour,
		"/games/teams":        time.Hour,
		"/plays":              15 * time.Minute,
		"/drives":             15 * time.Minute,
		"/play/stats":         15 * time.Minute,
		"/rankings":           time.Hour,
		"/metrics/wp/pregame": 10 * time.Minute,
		"/game/box/advanced":  time.Hour,
	}
}

// TTLFor returns the cache lifetime for an endpoint path. A trailing
// slash is ignored so "/games/" and "/games" share a policy entry.
func (p TTLPolicy) TTLFor(path string) time.Duration {
	path = strings.TrimSuffix(path, "/")
	if ttl, ok := p[path]; ok {
		return ttl
	}
	return DefaultTTL
}

// LoadTTLPolicy reads per-endpoint TTL overrides from a YAML file and
// merges them over the defaults. The file maps endpoint paths to Go
// duration strings:
//
//	/plays: 5m
//	/rankings: 2h
func LoadTTLPolicy(path string) (TTLPolicy, error) {
	policy := DefaultTTLPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ttl policy file: %w", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing ttl policy file: %w", err)
	}

	for endpoint, value := range raw {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("ttl for %s: %w", endpoint, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("ttl for %s must be positive", endpoint)
		}
		policy[strings.TrimSuffix(endpoint, "/")] = ttl
	}

	return policy, nil
}
