package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
	"github.com/CaptainBerkay35/taskmanager/internal/repo"
)

// ErrInvalidCredentials is returned on any login failure. The caller
// gets no hint whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// TakenError indicates a username or email already registered.
type TakenError struct {
	Field string
}

func (e TakenError) Error() string {
	return fmt.Sprintf("%s already taken", e.Field)
}

// Service verifies and registers accounts backed by the users table.
type Service struct {
	Repo repo.Repo
	Now  func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// RegisterOptions are parameters for creating an account.
type RegisterOptions struct {
	Username string
	Email    string
	FullName string
	Password string
}

func (s Service) Register(ctx context.Context, opts RegisterOptions) (domain.User, error) {
	if opts.Username == "" || opts.Email == "" || opts.Password == "" {
		return domain.User{}, errors.New("username, email and password are required")
	}
	if len(opts.Password) < 6 {
		return domain.User{}, errors.New("invalid password: at least 6 characters required")
	}
	if !strings.Contains(opts.Email, "@") {
		return domain.User{}, fmt.Errorf("invalid email %q", opts.Email)
	}
	if _, err := s.Repo.GetUser(ctx, opts.Username); err == nil {
		return domain.User{}, TakenError{Field: "username"}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, err
	}
	exists, err := s.Repo.UserEmailExists(ctx, opts.Email)
	if err != nil {
		return domain.User{}, err
	}
	if exists {
		return domain.User{}, TakenError{Field: "email"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	rec := repo.UserRecord{
		Username:     opts.Username,
		Email:        opts.Email,
		FullName:     opts.FullName,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.InsertUser(ctx, rec); err != nil {
		return domain.User{}, err
	}
	return domain.User{Username: rec.Username, Email: rec.Email, FullName: rec.FullName}, nil
}

// Authenticate checks the password against the stored bcrypt hash.
func (s Service) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	rec, err := s.Repo.GetUser(ctx, username)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return domain.User{Username: rec.Username, Email: rec.Email, FullName: rec.FullName}, nil
}
