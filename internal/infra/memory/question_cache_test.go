package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingSource{QuestionSource: NewQuestionStore(sampleQuestions()...)}
	cache := NewQuestionCache(loader, time.Minute)

	qs, err := cache.Questions(context.Background(), "MDCAT")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("expected 2 MDCAT questions, got %d", len(qs))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.Questions(context.Background(), "MDCAT"); err != nil {
		t.Fatalf("questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	cache.Invalidate(context.Background(), "MDCAT")
	if _, err := cache.Questions(context.Background(), "MDCAT"); err != nil {
		t.Fatalf("questions 3: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionCacheExpires(t *testing.T) {
	loader := &countingSource{QuestionSource: NewQuestionStore(sampleQuestions()...)}
	cache := NewQuestionCache(loader, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.Questions(context.Background(), "ECAT")
	now = now.Add(2 * time.Minute)
	_, _ = cache.Questions(context.Background(), "ECAT")
	if loader.calls != 2 {
		t.Fatalf("expected expired entry to reload, loader calls %d", loader.calls)
	}
}

func TestQuestionStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore(sampleQuestions()...)

	id, err := store.AddQuestion(ctx, domain.Question{
		Category:      "MDCAT",
		Subject:       "Chemistry",
		Text:          "Symbol for sodium?",
		Options:       [4]string{"Na", "So", "Sd", "N"},
		CorrectAnswer: "Na",
	})
	if err != nil || id != 4 {
		t.Fatalf("add: id=%d err=%v", id, err)
	}

	found, err := store.SearchQuestions(ctx, "sodium")
	if err != nil || len(found) != 1 || found[0].ID != id {
		t.Fatalf("search by text: %+v %v", found, err)
	}
	found, _ = store.SearchQuestions(ctx, "chem")
	if len(found) != 1 {
		t.Fatalf("search by subject: expected 1, got %d", len(found))
	}

	q := found[0]
	q.Text = "Chemical symbol for sodium?"
	if err := store.UpdateQuestion(ctx, q); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := store.Question(ctx, id); got.Text != q.Text {
		t.Fatalf("expected updated text, got %q", got.Text)
	}

	if err := store.DeleteQuestion(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Question(ctx, id); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.DeleteQuestion(ctx, id); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestQuestionCacheDropsLoadRacingInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore(sampleQuestions()...)
	source := &gatedSource{QuestionSource: store, entered: make(chan struct{}), release: make(chan struct{})}
	cache := NewQuestionCache(source, time.Minute)

	done := make(chan []domain.Question)
	go func() {
		qs, _ := cache.Questions(ctx, "MDCAT")
		done <- qs
	}()
	<-source.entered

	if err := store.DeleteQuestion(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	cache.Invalidate(ctx, "MDCAT")
	close(source.release)
	if stale := <-done; len(stale) != 2 {
		t.Fatalf("expected in-flight load to see its own snapshot, got %d", len(stale))
	}

	qs, err := cache.Questions(ctx, "MDCAT")
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(qs) != 1 || qs[0].ID == 1 {
		t.Fatalf("expected deleted question gone after invalidate, got %+v", qs)
	}
}

// gatedSource reads the store, then holds its first load until released.
type gatedSource struct {
	quiz.QuestionSource
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedSource) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	qs, err := g.QuestionSource.Questions(ctx, category)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return qs, err
}

type countingSource struct {
	quiz.QuestionSource
	calls int
}

func (l *countingSource) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	l.calls++
	return l.QuestionSource.Questions(ctx, category)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            1,
			Category:      "MDCAT",
			Subject:       "Biology",
			Text:          "Powerhouse of the cell?",
			Options:       [4]string{"Mitochondria", "Nucleus", "Ribosome", "Golgi"},
			CorrectAnswer: "Mitochondria",
		},
		{
			ID:            2,
			Category:      "MDCAT",
			Subject:       "Physics",
			Text:          "SI unit of force?",
			Options:       [4]string{"Joule", "Newton", "Watt", "Pascal"},
			CorrectAnswer: "Newton",
		},
		{
			ID:            3,
			Category:      "ECAT",
			Subject:       "Maths",
			Text:          "What is 2 + 2?",
			Options:       [4]string{"3", "4", "5", "22"},
			CorrectAnswer: "4",
		},
	}
}
