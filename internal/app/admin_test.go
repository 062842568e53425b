package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"prepify-quiz/internal/app"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/infra/memory"
)

type invalidations struct{ categories []string }

func (i *invalidations) Invalidate(_ context.Context, category string) {
	i.categories = append(i.categories, category)
}

func TestAdminServiceValidatesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuestionStore()
	inv := &invalidations{}
	admin := app.NewAdminService(store, inv)

	bad := domain.Question{Category: "MDCAT", Subject: "Biology", Text: "?", Options: [4]string{"a", "b", "c", "d"}, CorrectAnswer: "e"}
	if _, err := admin.AddQuestion(ctx, bad); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	q := domain.Question{
		Category:      " MDCAT ",
		Subject:       "Biology",
		Text:          "Basic unit of life?",
		Options:       [4]string{"Cell", "Atom", "Organ", "Tissue"},
		CorrectAnswer: "Cell",
	}
	id, err := admin.AddQuestion(ctx, q)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	stored, err := admin.Question(ctx, id)
	if err != nil || stored.Category != "MDCAT" {
		t.Fatalf("expected trimmed category, got %+v %v", stored, err)
	}

	stored.Category = "ECAT"
	if err := admin.UpdateQuestion(ctx, stored); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := admin.DeleteQuestion(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{"MDCAT", "MDCAT", "ECAT", "ECAT"}
	if len(inv.categories) != len(want) {
		t.Fatalf("expected invalidations %v, got %v", want, inv.categories)
	}
	for i := range want {
		if inv.categories[i] != want[i] {
			t.Fatalf("expected invalidations %v, got %v", want, inv.categories)
		}
	}
}

func TestStatsServiceReports(t *testing.T) {
	ctx := context.Background()
	results := memory.NewResultStore()
	stats := app.NewStatsService(results)

	if _, ok, err := stats.WeakestSubject(ctx, "alice"); ok || err != nil {
		t.Fatalf("expected no weakest subject without history")
	}

	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_ = results.Record(ctx, domain.QuizRecord{
			UserID:    "alice",
			Category:  "MDCAT",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Score: domain.ScoreResult{
				Correct:    i % 3,
				Total:      3,
				Percentage: float64(i%3) * 100 / 3,
				PerSubject: map[string]domain.SubjectScore{
					"Biology": {Correct: 1, Total: 1},
					"Physics": {Correct: i % 3 / 2, Total: 2},
				},
			},
		})
	}

	dash, err := stats.Dashboard(ctx, "alice")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.TotalQuizzes != 12 || len(dash.Recent) != 5 || dash.AverageScore != 33.3 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
	progress, _ := stats.Progress(ctx, "alice")
	if len(progress) != 10 || !progress[0].Timestamp.Equal(base.Add(11*time.Minute)) {
		t.Fatalf("expected 10 newest-first results, got %d", len(progress))
	}

	weakest, ok, err := stats.WeakestSubject(ctx, "alice")
	if err != nil || !ok || weakest.Subject != "Physics" {
		t.Fatalf("expected Physics weakest, got %+v ok=%v err=%v", weakest, ok, err)
	}
}
