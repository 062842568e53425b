package app

import (
	"context"
	"log"
	"strings"

	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

// QuestionStore is the writable question bank used by administrators.
type QuestionStore interface {
	quiz.QuestionSource
	Question(ctx context.Context, id int64) (domain.Question, error)
	AddQuestion(ctx context.Context, q domain.Question) (int64, error)
	UpdateQuestion(ctx context.Context, q domain.Question) error
	DeleteQuestion(ctx context.Context, id int64) error
	SearchQuestions(ctx context.Context, query string) ([]domain.Question, error)
}

// CacheInvalidator drops cached questions for a category after a write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, category string)
}

// AdminService manages the question bank.
type AdminService struct {
	questions QuestionStore
	caches    []CacheInvalidator
}

func NewAdminService(questions QuestionStore, caches ...CacheInvalidator) *AdminService {
	return &AdminService{questions: questions, caches: caches}
}

// AddQuestion validates and stores a new question, returning its ID.
func (a *AdminService) AddQuestion(ctx context.Context, q domain.Question) (int64, error) {
	q = trimQuestion(q)
	if err := q.Validate(); err != nil {
		return 0, err
	}
	id, err := a.questions.AddQuestion(ctx, q)
	if err != nil {
		return 0, err
	}
	a.invalidate(ctx, q.Category)
	log.Printf("question %d added to %s/%s", id, q.Category, q.Subject)
	return id, nil
}

// UpdateQuestion replaces the stored question with the same ID.
func (a *AdminService) UpdateQuestion(ctx context.Context, q domain.Question) error {
	q = trimQuestion(q)
	if err := q.Validate(); err != nil {
		return err
	}
	old, err := a.questions.Question(ctx, q.ID)
	if err != nil {
		return err
	}
	if err := a.questions.UpdateQuestion(ctx, q); err != nil {
		return err
	}
	a.invalidate(ctx, old.Category)
	if old.Category != q.Category {
		a.invalidate(ctx, q.Category)
	}
	return nil
}

// DeleteQuestion removes a question permanently.
func (a *AdminService) DeleteQuestion(ctx context.Context, id int64) error {
	old, err := a.questions.Question(ctx, id)
	if err != nil {
		return err
	}
	if err := a.questions.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, old.Category)
	log.Printf("question %d deleted", id)
	return nil
}

// Question fetches one question by ID.
func (a *AdminService) Question(ctx context.Context, id int64) (domain.Question, error) {
	return a.questions.Question(ctx, id)
}

// SearchQuestions matches text or subject; an empty query lists everything.
func (a *AdminService) SearchQuestions(ctx context.Context, query string) ([]domain.Question, error) {
	return a.questions.SearchQuestions(ctx, strings.TrimSpace(query))
}

func (a *AdminService) invalidate(ctx context.Context, category string) {
	for _, c := range a.caches {
		c.Invalidate(ctx, category)
	}
}

// trimQuestion strips stray whitespace from labels only; option and answer text is kept verbatim.
func trimQuestion(q domain.Question) domain.Question {
	q.Category = strings.TrimSpace(q.Category)
	q.Subject = strings.TrimSpace(q.Subject)
	q.Text = strings.TrimSpace(q.Text)
	return q
}
