package users

import (
	"context"
	"errors"
	"fmt"

	"example.com/note-keeper/internal/stringsx"
)

// Repo is the storage the account service depends on.
type Repo interface {
	Create(ctx context.Context, email, passwordHash string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) bool
}

type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// Service contains the account logic independent from transport/database.
type Service struct {
	repo   Repo
	hasher PasswordHasher
	tokens TokenIssuer
}

func NewService(repo Repo, hasher PasswordHasher, tokens TokenIssuer) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens}
}

// Signup registers a new account and returns a token for it.
func (s *Service) Signup(ctx context.Context, email, password string) (string, error) {
	email = stringsx.NormalizeEmail(email)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, email, hash)
	if errors.Is(err, ErrEmailTaken) {
		return "", ErrAlreadyExists
	}
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(u.ID, u.Email)
}

// Login checks the credentials and returns a fresh token. Unknown emails and
// wrong passwords are reported the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.ByEmail(ctx, stringsx.NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID, u.Email)
}

func (s *Service) ByID(ctx context.Context, id int64) (User, error) {
	return s.repo.ByID(ctx, id)
}
