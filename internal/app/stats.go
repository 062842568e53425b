package app

import (
	"context"
	"math"
	"sort"

	"prepify-quiz/internal/domain"
)

const (
	dashboardRecent = 5
	progressWindow  = 10
)

// ResultReader exposes persisted results for reporting.
type ResultReader interface {
	RecentResults(ctx context.Context, userID string, limit int) ([]domain.ResultEntry, error)
	ResultSummary(ctx context.Context, userID string) (count int, average float64, err error)
	SubjectPerformance(ctx context.Context, userID string) ([]domain.SubjectPerformance, error)
}

// StatsService answers dashboard-style questions about a user's history.
type StatsService struct {
	results ResultReader
}

func NewStatsService(results ResultReader) *StatsService {
	return &StatsService{results: results}
}

// Dashboard returns the quiz count, average score and the latest results.
func (s *StatsService) Dashboard(ctx context.Context, userID string) (domain.Dashboard, error) {
	count, avg, err := s.results.ResultSummary(ctx, userID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	recent, err := s.results.RecentResults(ctx, userID, dashboardRecent)
	if err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{
		TotalQuizzes: count,
		AverageScore: math.Round(avg*10) / 10,
		Recent:       recent,
	}, nil
}

// Progress returns the most recent results, newest first.
func (s *StatsService) Progress(ctx context.Context, userID string) ([]domain.ResultEntry, error) {
	return s.results.RecentResults(ctx, userID, progressWindow)
}

// Performance returns accumulated per-subject accuracy, weakest first.
func (s *StatsService) Performance(ctx context.Context, userID string) ([]domain.SubjectPerformance, error) {
	perf, err := s.results.SubjectPerformance(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SubjectPerformance, 0, len(perf))
	for _, p := range perf {
		if p.Total <= 0 {
			continue
		}
		p.Accuracy = 100 * float64(p.Correct) / float64(p.Total)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy != out[j].Accuracy {
			return out[i].Accuracy < out[j].Accuracy
		}
		return out[i].Subject < out[j].Subject
	})
	return out, nil
}

// WeakestSubject returns the subject with the lowest accumulated accuracy.
// ok is false when the user has no recorded performance.
func (s *StatsService) WeakestSubject(ctx context.Context, userID string) (domain.SubjectPerformance, bool, error) {
	perf, err := s.Performance(ctx, userID)
	if err != nil || len(perf) == 0 {
		return domain.SubjectPerformance{}, false, err
	}
	return perf[0], true, nil
}
