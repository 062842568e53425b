// Package auth implements accounts and credentials: bcrypt password hashes in a
// UserStore, and HS256 tokens for the HTTP surface.
package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"prepify-quiz/internal/domain"
)

// UserStore persists accounts.
type UserStore interface {
	User(ctx context.Context, username string) (domain.User, error)
	CreateUser(ctx context.Context, user domain.User) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	// DeleteUser removes the account together with its results and subject performance.
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context, exclude, search string) ([]domain.User, error)
}

// Service is the account use-case layer.
type Service struct {
	users UserStore
	cost  int
}

func NewService(users UserStore, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, cost: bcryptCost}
}

// Login checks the password and returns the account.
func (s *Service) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.User(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// User returns the stored account.
func (s *Service) User(ctx context.Context, username string) (domain.User, error) {
	return s.users.User(ctx, username)
}

// Register creates a regular (non-admin) account.
func (s *Service) Register(ctx context.Context, username, password string) error {
	return s.create(ctx, username, password, false)
}

// AddAdmin creates an administrator account.
func (s *Service) AddAdmin(ctx context.Context, username, password string) error {
	return s.create(ctx, username, password, true)
}

// ResetPassword replaces the user's password hash.
func (s *Service) ResetPassword(ctx context.Context, username, newPassword string) error {
	if newPassword == "" {
		return domain.Invalidf("new password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, username, string(hash)); err != nil {
		return err
	}
	log.Printf("password reset for %s", username)
	return nil
}

// DeleteUser removes the account and its history.
func (s *Service) DeleteUser(ctx context.Context, username string) error {
	if err := s.users.DeleteUser(ctx, username); err != nil {
		return err
	}
	log.Printf("user %s deleted", username)
	return nil
}

// ListUsers lists accounts other than exclude, optionally filtered by a username substring.
func (s *Service) ListUsers(ctx context.Context, exclude, search string) ([]domain.User, error) {
	return s.users.ListUsers(ctx, exclude, strings.TrimSpace(search))
}

func (s *Service) create(ctx context.Context, username, password string, admin bool) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Invalidf("username is required")
	}
	if password == "" {
		return domain.Invalidf("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	return s.users.CreateUser(ctx, domain.User{
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      admin,
	})
}
