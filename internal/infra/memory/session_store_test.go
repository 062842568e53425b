package memory

import (
	"testing"

	"prepify-quiz/internal/app"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	q, err := quiz.NewSession(sampleQuestions()[:1], domain.ModeStandard, 60, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Save(app.NewSession("s-1", "alice", "MDCAT", q))
	if got, ok := store.Get("s-1"); !ok || got.UserID() != "alice" {
		t.Fatalf("expected session present")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", store.Len())
	}

	store.Delete("s-1")
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed")
	}
}
