// Package session holds the authenticated user's identity and bearer token.
// The token survives process restarts through a YAML file under the config
// directory; identity is recomputed from the backend on every load.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"gopkg.in/yaml.v3"

	"github.com/horuslm/horuslm/internal/api"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// authAPI is the slice of the HTTP client the store needs.
type authAPI interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

type Store struct {
	mu      sync.Mutex
	file    string
	client  authAPI
	token   string
	user    *User
	lastErr error

	validate *validator.Validate
}

// NewStore reads any persisted token from file. The HTTP client is attached
// afterwards with SetClient because the client itself needs the store as its
// token source.
func NewStore(file string) *Store {
	s := &Store{
		file:     file,
		validate: validator.New(),
	}
	s.token = s.readTokenFile()
	return s
}

// SetClient attaches the HTTP client. Calling any network operation before
// this is a wiring bug and panics.
func (s *Store) SetClient(client authAPI) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
}

func (s *Store) api() authAPI {
	if s.client == nil {
		panic("session: store used before SetClient")
	}
	return s.client
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName,omitempty" validate:"-"`
}

type authResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Login exchanges credentials for a session. On failure the prior session is
// left untouched and the backend-provided message, when present, is surfaced.
func (s *Store) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

// Register creates an account and enters the resulting session. Same contract
// as Login.
func (s *Store) Register(ctx context.Context, email, password, fullName string) error {
	return s.authenticate(ctx, "/auth/register", credentials{Email: email, Password: password, FullName: fullName})
}

func (s *Store) authenticate(ctx context.Context, path string, creds credentials) error {
	if err := s.validate.Struct(creds); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}

	var response authResponse
	if err := s.api().Post(ctx, path, creds, &response); err != nil {
		// The backend's own message wins here; login failures are about
		// credentials, not permissions.
		message := "authentication failed"
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}
		s.mu.Lock()
		s.lastErr = errors.New(message)
		s.mu.Unlock()
		return fmt.Errorf("client.Post(%s) > %w", path, err)
	}

	s.mu.Lock()
	s.token = response.Token
	user := response.User
	s.user = &user
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.writeTokenFile(response.Token); err != nil {
		slog.Default().Warn("failed to persist session token",
			"file", s.file,
			"error", err,
		)
	}
	return nil
}

// Logout clears the session unconditionally. It never fails to the caller;
// file removal problems are only logged.
func (s *Store) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.lastErr = nil
	s.mu.Unlock()

	if err := os.Remove(s.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("failed to remove session file",
			"file", s.file,
			"error", err,
		)
	}
}

// VerifyOnLoad validates the persisted token. An expired or undecodable token
// is discarded locally without a network call; otherwise the current-user
// profile confirms the session, and a failed confirmation invalidates it.
func (s *Store) VerifyOnLoad(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		s.discard(fmt.Errorf("invalid session token: %w", err))
		return nil
	}
	// The client holds no signing key; only the expiry claim is trusted
	// locally, the backend verifies the signature on /auth/me.
	if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil {
		if expiry.Before(time.Now()) {
			s.discard(nil)
			return nil
		}
	}

	var user User
	if err := s.api().Get(ctx, "/auth/me", &user); err != nil {
		s.discard(errors.New("invalid session"))
		return fmt.Errorf("client.Get(/auth/me) > %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.lastErr = nil
	s.mu.Unlock()
	return nil
}

func (s *Store) discard(reason error) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.lastErr = reason
	s.mu.Unlock()

	if err := os.Remove(s.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("failed to remove session file",
			"file", s.file,
			"error", err,
		)
	}
}

type sessionFile struct {
	Token string `yaml:"token"`
}

func (s *Store) readTokenFile() string {
	contents, err := os.ReadFile(s.file)
	if err != nil {
		return ""
	}
	var persisted sessionFile
	if err := yaml.Unmarshal(contents, &persisted); err != nil {
		slog.Default().Warn("failed to parse session file",
			"file", s.file,
			"error", err,
		)
		return ""
	}
	return persisted.Token
}

func (s *Store) writeTokenFile(token string) error {
	contents, err := yaml.Marshal(sessionFile{Token: token})
	if err != nil {
		return fmt.Errorf("yaml.Marshal > %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0700); err != nil {
		return fmt.Errorf("os.MkdirAll > %w", err)
	}
	if err := os.WriteFile(s.file, contents, 0600); err != nil {
		return fmt.Errorf("os.WriteFile > %w", err)
	}
	return nil
}
