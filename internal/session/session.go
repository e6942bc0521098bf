package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/CaptainBerkay35/taskmanager/internal/api"
	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

const credentialsFile = "credentials.json"

// Authenticator is the slice of the API client the store needs.
// *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (api.AuthResponse, error)
	Register(ctx context.Context, username, email, password, fullName string) (api.AuthResponse, error)
}

// Result is the caller-visible outcome of login/register. These
// operations never surface transport or auth failures as Go errors; the
// Message is safe to show the user as-is.
type Result struct {
	OK      bool
	Message string
}

// snapshot is the persisted (token, user) pair.
type snapshot struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Store owns the process-wide authentication state: the current user, the
// bearer token, and their persistence across runs.
type Store struct {
	path string
	auth Authenticator

	// Loading is true only while the initial restore-from-disk runs.
	Loading bool

	token string
	user  *domain.User
}

// Open restores a previously persisted session from the workspace
// credentials file. A well-formed snapshot authenticates without any
// network call; a corrupted one is deleted and ignored.
func Open(workspace string, auth Authenticator) (*Store, error) {
	dir := filepath.Join(workspace, ".taskmanager")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &Store{path: filepath.Join(dir, credentialsFile), auth: auth, Loading: true}
	defer func() { s.Loading = false }()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if json.Unmarshal(data, &snap) != nil || snap.Token == "" || snap.User.Username == "" {
		// corrupted snapshot: clear it and start unauthenticated
		_ = os.Remove(s.path)
		return s, nil
	}
	s.token = snap.Token
	u := snap.User
	s.user = &u
	return s, nil
}

// Authenticated reports whether a user session is active.
func (s *Store) Authenticated() bool { return s.user != nil }

// Token returns the bearer token, empty when unauthenticated.
func (s *Store) Token() string { return s.token }

// User returns the active profile, nil when unauthenticated.
func (s *Store) User() *domain.User { return s.user }

// Login authenticates against the API and persists the session on
// success.
func (s *Store) Login(ctx context.Context, username, password string) Result {
	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return failure(err)
	}
	return s.establish(resp)
}

// Register creates an account and persists the session on success;
// symmetric to Login.
func (s *Store) Register(ctx context.Context, username, email, password, fullName string) Result {
	resp, err := s.auth.Register(ctx, username, email, password, fullName)
	if err != nil {
		return failure(err)
	}
	return s.establish(resp)
}

// Logout clears the persisted credentials and resets state. Synchronous,
// no network call.
func (s *Store) Logout() error {
	s.token = ""
	s.user = nil
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) establish(resp api.AuthResponse) Result {
	user := domain.User{Username: resp.Username, Email: resp.Email, FullName: resp.FullName}
	snap := snapshot{Token: resp.Token, User: user}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Result{Message: "could not store the session"}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return Result{Message: "could not store the session: " + err.Error()}
	}
	s.token = resp.Token
	s.user = &user
	return Result{OK: true}
}

func failure(err error) Result {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return Result{Message: apiErr.UserMessage()}
	}
	return Result{Message: "could not reach the server: " + err.Error()}
}
