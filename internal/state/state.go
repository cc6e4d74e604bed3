// Package state persists issued bearer tokens in a bbolt database so
// they survive process restarts.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// storeDirPerm is the permission mode for the store directory.
	storeDirPerm = fs.FileMode(0o700)

	// storeFilePerm is the permission mode for the database file.
	storeFilePerm = fs.FileMode(0o600)

	// storeOpenTimeout is the maximum time to wait for the bolt file lock.
	storeOpenTimeout = 5 * time.Second
)

var tokensBucket = []byte("tokens")

// TokenHash returns the SHA-256 hex digest of a token string. Tokens
// are stored by hash so raw credentials never reach disk.
func TokenHash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// IssuedToken is one persisted bearer token record.
type IssuedToken struct {
	TokenHash string    `json:"token_hash"`
	ClientID  string    `json:"client_id,omitempty"`
	SessionID string    `json:"session_id"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Store wraps a bbolt database holding issued tokens.
type Store struct {
	db *bolt.DB
}

// Open opens the token database at the given path, creating it if it
// does not exist. A corrupt database file is moved aside and recreated
// rather than failing startup; previously issued tokens are lost but
// the service comes up.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), storeDirPerm); err != nil {
		return nil, fmt.Errorf("creating token store directory: %w", err)
	}

	db, err := openAndInit(path)
	if err != nil {
		logger.Warn("token store unreadable, starting empty",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)

		if renameErr := os.Rename(path, path+".corrupt"); renameErr != nil {
			return nil, fmt.Errorf("moving corrupt token store aside: %w", renameErr)
		}

		db, err = openAndInit(path)
		if err != nil {
			return nil, fmt.Errorf("recreating token store: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func openAndInit(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, storeFilePerm, &bolt.Options{Timeout: storeOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening token store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tokensBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing token store: %w", err)
	}

	return db, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveToken durably persists a token record. The write is flushed
// before this returns, so a token acknowledged to the client survives
// a crash immediately afterwards.
func (s *Store) SaveToken(t IssuedToken) error {
	if t.TokenHash == "" {
		return fmt.Errorf("token hash is required for persistence")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}

		return tx.Bucket(tokensBucket).Put([]byte(t.TokenHash), data)
	})
}

// DeleteToken removes a token record by its hash.
func (s *Store) DeleteToken(tokenHash string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).Delete([]byte(tokenHash))
	})
}

// AllTokens returns all persisted token records. Entries that fail to
// decode are skipped rather than aborting the load.
func (s *Store) AllTokens() ([]IssuedToken, error) {
	var tokens []IssuedToken

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).ForEach(func(k, v []byte) error {
			var t IssuedToken
			if err := json.Unmarshal(v, &t); err != nil {
				return nil
			}

			tokens = append(tokens, t)

			return nil
		})
	})

	return tokens, err
}

// TokenCount returns the number of persisted tokens.
func (s *Store) TokenCount() int {
	count := 0
	_ = s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(tokensBucket).Stats().KeyN
		return nil
	})

	return count
}
