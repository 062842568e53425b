package memory

import (
	"context"
	"sort"
	"sync"

	"prepify-quiz/internal/domain"
)

// ResultStore keeps quiz results and accumulated subject performance in memory.
type ResultStore struct {
	mu          sync.RWMutex
	results     map[string][]domain.ResultEntry
	performance map[string]map[string]domain.SubjectScore
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		results:     make(map[string][]domain.ResultEntry),
		performance: make(map[string]map[string]domain.SubjectScore),
	}
}

func (s *ResultStore) Record(_ context.Context, record domain.QuizRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[record.UserID] = append(s.results[record.UserID], domain.ResultEntry{
		Category:   record.Category,
		Percentage: record.Score.Percentage,
		Correct:    record.Score.Correct,
		Total:      record.Score.Total,
		Timestamp:  record.Timestamp,
	})
	perf, ok := s.performance[record.UserID]
	if !ok {
		perf = make(map[string]domain.SubjectScore)
		s.performance[record.UserID] = perf
	}
	for _, sub := range record.SubjectRecords() {
		acc := perf[sub.Subject]
		acc.Correct += sub.Correct
		acc.Total += sub.Total
		perf[sub.Subject] = acc
	}
	return nil
}

func (s *ResultStore) RecentResults(_ context.Context, userID string, limit int) ([]domain.ResultEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.results[userID]
	out := make([]domain.ResultEntry, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (s *ResultStore) ResultSummary(_ context.Context, userID string) (int, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.results[userID]
	if len(all) == 0 {
		return 0, 0, nil
	}
	sum := 0.0
	for _, r := range all {
		sum += r.Percentage
	}
	return len(all), sum / float64(len(all)), nil
}

func (s *ResultStore) SubjectPerformance(_ context.Context, userID string) ([]domain.SubjectPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SubjectPerformance, 0, len(s.performance[userID]))
	for subject, acc := range s.performance[userID] {
		out = append(out, domain.SubjectPerformance{Subject: subject, Correct: acc.Correct, Total: acc.Total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subject < out[j].Subject })
	return out, nil
}

// DeleteUserData drops everything recorded for userID.
func (s *ResultStore) DeleteUserData(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, userID)
	delete(s.performance, userID)
}
