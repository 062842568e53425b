// Package quiz holds the quiz core: the question bank view, session builder,
// the per-attempt state machine and the scorer. Nothing here touches storage
// directly; questions arrive through a QuestionSource.
package quiz

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"prepify-quiz/internal/domain"
)

// QuestionSource fetches questions from a backing store or cache.
type QuestionSource interface {
	Questions(ctx context.Context, category string) ([]domain.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

// Bank is a read-only, filterable view over a QuestionSource.
type Bank struct {
	source QuestionSource

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBank(source QuestionSource) *Bank {
	return NewBankWithRand(source, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewBankWithRand allows deterministic sampling in tests.
func NewBankWithRand(source QuestionSource, rnd *rand.Rand) *Bank {
	return &Bank{source: source, rnd: rnd}
}

// Categories lists every category with at least one question.
func (b *Bank) Categories(ctx context.Context) ([]string, error) {
	categories, err := b.source.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return uniqueSorted(categories), nil
}

// Subjects lists the subjects available within a category.
func (b *Bank) Subjects(ctx context.Context, category string) ([]string, error) {
	questions, err := b.source.Questions(ctx, category)
	if err != nil {
		return nil, err
	}
	subjects := make([]string, 0, len(questions))
	for _, q := range questions {
		subjects = append(subjects, q.Subject)
	}
	return uniqueSorted(subjects), nil
}

// Available counts questions matching the filter.
func (b *Bank) Available(ctx context.Context, category string, subjects []string) (int, error) {
	matches, err := b.matching(ctx, category, subjects)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// Sample draws count distinct questions uniformly at random. When fewer match it
// returns *domain.InsufficientQuestionsError and no questions.
func (b *Bank) Sample(ctx context.Context, category string, subjects []string, count int) ([]domain.Question, error) {
	if count <= 0 {
		return nil, domain.Invalidf("question count must be positive, got %d", count)
	}
	matches, err := b.matching(ctx, category, subjects)
	if err != nil {
		return nil, err
	}
	if len(matches) < count {
		return nil, &domain.InsufficientQuestionsError{Requested: count, Available: len(matches)}
	}

	// partial Fisher-Yates: the first count slots end up a uniform sample
	b.mu.Lock()
	for i := 0; i < count; i++ {
		j := i + b.rnd.Intn(len(matches)-i)
		matches[i], matches[j] = matches[j], matches[i]
	}
	b.mu.Unlock()

	out := make([]domain.Question, count)
	copy(out, matches[:count])
	return out, nil
}

func (b *Bank) matching(ctx context.Context, category string, subjects []string) ([]domain.Question, error) {
	if strings.TrimSpace(category) == "" {
		return nil, domain.Invalidf("category is required")
	}
	if len(subjects) == 0 {
		return nil, domain.Invalidf("at least one subject is required")
	}
	wanted := make(map[string]struct{}, len(subjects))
	for _, s := range subjects {
		wanted[s] = struct{}{}
	}

	questions, err := b.source.Questions(ctx, category)
	if err != nil {
		return nil, err
	}
	matches := make([]domain.Question, 0, len(questions))
	seen := make(map[int64]struct{}, len(questions))
	for _, q := range questions {
		if q.Category != category {
			continue
		}
		if _, ok := wanted[q.Subject]; !ok {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		matches = append(matches, q)
	}
	return matches, nil
}

func uniqueSorted(values []string) []string {
	set := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := set[v]; ok {
			continue
		}
		set[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
