package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/auth"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/infra/memory"
	"prepify-quiz/internal/quiz"
	"prepify-quiz/internal/timer"
)

type testEnv struct {
	server   *httptest.Server
	sched    *timer.Manual
	tokens   *auth.Tokens
	accounts *auth.Service
	results  *memory.ResultStore
}

func newTestEnv(t *testing.T, timing quiz.Timing) *testEnv {
	t.Helper()
	questions := memory.NewQuestionStore(sampleQuestions()...)
	cache := memory.NewQuestionCache(questions, time.Minute)
	results := memory.NewResultStore()
	users := memory.NewUserStore(results)
	sched := timer.NewManual()

	env := &testEnv{
		sched:    sched,
		tokens:   auth.NewTokens("test-secret", time.Hour),
		accounts: auth.NewService(users, bcrypt.MinCost),
		results:  results,
	}
	handler := NewRouter(Deps{
		Quiz:     app.NewQuizService(memory.NewSessionStore(), quiz.NewBuilder(quiz.NewBank(cache), quiz.WithTiming(timing)), results, sched),
		Admin:    app.NewAdminService(questions, cache),
		Stats:    app.NewStatsService(results),
		Accounts: env.accounts,
		Tokens:   env.tokens,
	})
	env.server = httptest.NewServer(handler)
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) token(t *testing.T, username string, admin bool) string {
	t.Helper()
	ctx := context.Background()
	var err error
	if admin {
		err = e.accounts.AddAdmin(ctx, username, "pw")
	} else {
		err = e.accounts.Register(ctx, username, "pw")
	}
	if err != nil {
		t.Fatalf("create %s: %v", username, err)
	}
	tok, err := e.tokens.Issue(domain.User{Username: username, IsAdmin: admin})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func sampleQuestions() []domain.Question {
	mk := func(subject, text, correct string, options [4]string) domain.Question {
		return domain.Question{Category: "MDCAT", Subject: subject, Text: text, Options: options, CorrectAnswer: correct}
	}
	return []domain.Question{
		mk("Biology", "Powerhouse of the cell?", "Mitochondria", [4]string{"Mitochondria", "Nucleus", "Ribosome", "Golgi"}),
		mk("Biology", "Basic unit of life?", "Cell", [4]string{"Cell", "Atom", "Organ", "Tissue"}),
		mk("Physics", "SI unit of force?", "Newton", [4]string{"Joule", "Newton", "Watt", "Pascal"}),
	}
}

// correctFor maps question text to its answer.
var correctFor = map[string]string{
	"Powerhouse of the cell?": "Mitochondria",
	"Basic unit of life?":     "Cell",
	"SI unit of force?":       "Newton",
}
