package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"prepify-quiz/internal/domain"
)

// QuestionStore is an in-memory question bank (useful for tests/demos).
type QuestionStore struct {
	mu        sync.RWMutex
	nextID    int64
	questions map[int64]domain.Question
}

// NewQuestionStore seeds the store; questions without an ID get one assigned.
func NewQuestionStore(seed ...domain.Question) *QuestionStore {
	s := &QuestionStore{questions: make(map[int64]domain.Question)}
	for _, q := range seed {
		if q.ID == 0 {
			s.nextID++
			q.ID = s.nextID
		} else if q.ID > s.nextID {
			s.nextID = q.ID
		}
		s.questions[q.ID] = q
	}
	return s
}

func (s *QuestionStore) Questions(_ context.Context, category string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.Category == category {
			out = append(out, q)
		}
	}
	sortByID(out)
	return out, nil
}

func (s *QuestionStore) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, q := range s.questions {
		if _, ok := seen[q.Category]; ok {
			continue
		}
		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}
	sort.Strings(out)
	return out, nil
}

func (s *QuestionStore) Question(_ context.Context, id int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, nil
}

func (s *QuestionStore) AddQuestion(_ context.Context, q domain.Question) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	q.ID = s.nextID
	s.questions[q.ID] = q
	return q.ID, nil
}

func (s *QuestionStore) UpdateQuestion(_ context.Context, q domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[q.ID]; !ok {
		return domain.ErrQuestionNotFound
	}
	s.questions[q.ID] = q
	return nil
}

func (s *QuestionStore) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *QuestionStore) SearchQuestions(_ context.Context, query string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(query)
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if needle == "" ||
			strings.Contains(strings.ToLower(q.Text), needle) ||
			strings.Contains(strings.ToLower(q.Subject), needle) {
			out = append(out, q)
		}
	}
	sortByID(out)
	return out, nil
}

func sortByID(qs []domain.Question) {
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
}
