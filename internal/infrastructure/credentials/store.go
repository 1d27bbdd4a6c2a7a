// Package credentials keeps the GitHub username and token used by the service
// and persists them to an env file.
package credentials

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	UsernameKey = "GITHUB_USERNAME"
	TokenKey    = "GITHUB_TOKEN"
)

// MissingMessage is the user facing hint returned when credentials are absent.
const MissingMessage = "GitHub credentials not set. Please use the /auth/setup endpoint first."

// ErrMissingCredentials is returned when a GitHub call is attempted before setup.
var ErrMissingCredentials = errors.New("github credentials not set")

// Credentials is a snapshot of the configured GitHub identity.
type Credentials struct {
	Username string
	Token    string
}

// Configured reports whether both values are present.
func (c Credentials) Configured() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.Token) != ""
}

// Store holds the live credentials. Reads and updates are safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	creds Credentials
	path  string
	log   zerolog.Logger
}

// NewStore creates a store seeded with the given credentials that persists to path.
func NewStore(path string, initial Credentials, log zerolog.Logger) *Store {
	return &Store{
		creds: initial,
		path:  path,
		log:   log.With().Str("component", "credentials").Logger(),
	}
}

// Get returns the current credentials.
func (s *Store) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds
}

// Path returns the env file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// Save writes username and token into the env file, preserving any other keys
// already in it, and makes them the live credentials.
func (s *Store) Save(username, token string) error {
	creds := Credentials{Username: strings.TrimSpace(username), Token: strings.TrimSpace(token)}
	if !creds.Configured() {
		return fmt.Errorf("username and token are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values := map[string]string{}
	if _, err := os.Stat(s.path); err == nil {
		existing, err := godotenv.Read(s.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", s.path, err)
		}
		values = existing
	}
	values[UsernameKey] = creds.Username
	values[TokenKey] = creds.Token

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("could not restrict credentials file permissions")
	}

	s.creds = creds
	s.log.Info().Str("username", creds.Username).Str("path", s.path).Msg("saved GitHub credentials")
	return nil
}
