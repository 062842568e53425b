package redis

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)

	q, err := quiz.NewSession(sampleQuestions(), domain.ModeStandard, 120, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Save(app.NewSession("s-1", "alice", "MDCAT", q))
	if got, _ := mr.Get("quiz:session:s-1"); got != "alice" {
		t.Fatalf("expected redis key to hold owner, got %q", got)
	}
	if _, ok := store.Get("s-1"); !ok {
		t.Fatalf("expected session kept locally")
	}

	store.Delete("s-1")
	if mr.Exists("quiz:session:s-1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s-1"); ok {
		t.Fatalf("expected session removed locally")
	}
}

func TestSessionStoreMarkerOutlivesCountdown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 10*time.Minute)

	// 20 standard questions run for 1200s, longer than the grace ttl alone
	q, err := quiz.NewSession(sampleQuestions(), domain.ModeStandard, 1200, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	store.Save(app.NewSession("s-long", "bob", "MDCAT", q))

	if ttl := mr.TTL("quiz:session:s-long"); ttl != 1200*time.Second+10*time.Minute {
		t.Fatalf("expected marker to cover countdown plus grace, got %v", ttl)
	}
}
