package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"prepify-quiz/internal/domain"
)

// UserStore is an in-memory account store. When results is set, deleting a
// user also drops their history.
type UserStore struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	results *ResultStore
}

func NewUserStore(results *ResultStore) *UserStore {
	return &UserStore{users: make(map[string]domain.User), results: results}
}

func (s *UserStore) User(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return domain.ErrUserExists
	}
	s.users[user.Username] = user
	return nil
}

func (s *UserStore) UpdatePassword(_ context.Context, username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	s.users[username] = u
	return nil
}

func (s *UserStore) DeleteUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, username)
	if s.results != nil {
		s.results.DeleteUserData(username)
	}
	return nil
}

func (s *UserStore) ListUsers(_ context.Context, exclude, search string) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for name, u := range s.users {
		if name == exclude {
			continue
		}
		if search != "" && !strings.Contains(name, search) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
