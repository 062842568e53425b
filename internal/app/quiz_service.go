package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
	"prepify-quiz/internal/timer"
)

// SessionRepository abstracts where live quiz sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Save(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// ResultSink durably stores the outcome of a finished session.
type ResultSink interface {
	Record(ctx context.Context, record domain.QuizRecord) error
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions  SessionRepository
	builder   *quiz.Builder
	sink      ResultSink
	scheduler timer.Scheduler
	interval  time.Duration
	now       func() time.Time
	newID     func() string
}

// ServiceOption customizes a QuizService.
type ServiceOption func(*QuizService)

// WithTickInterval changes how often the countdown advances (one tick is one second of quiz time).
func WithTickInterval(d time.Duration) ServiceOption {
	return func(s *QuizService) { s.interval = d }
}

// WithServiceClock is test-only for deterministic timestamps.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

// WithIDGenerator is test-only for predictable session IDs.
func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *QuizService) { s.newID = newID }
}

func NewQuizService(store SessionRepository, builder *quiz.Builder, sink ResultSink, scheduler timer.Scheduler, opts ...ServiceOption) *QuizService {
	s := &QuizService{
		sessions:  store,
		builder:   builder,
		sink:      sink,
		scheduler: scheduler,
		interval:  time.Second,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank exposes the question bank backing the builder.
func (s *QuizService) Bank() *quiz.Bank {
	return s.builder.Bank()
}

// Start builds a session for userID and starts its countdown.
func (s *QuizService) Start(ctx context.Context, userID string, criteria quiz.Criteria) (domain.SessionState, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.SessionState{}, domain.Invalidf("user is required")
	}
	qs, err := s.builder.Build(ctx, criteria)
	if err != nil {
		return domain.SessionState{}, err
	}

	session := NewSession(s.newID(), userID, criteria.Category, qs)
	s.sessions.Save(session)

	id := session.id
	session.mu.Lock()
	defer session.mu.Unlock()
	session.countdown = s.scheduler.Every(s.interval, func() {
		if _, err := s.Tick(context.Background(), id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("tick session %s: %v", id, err)
		}
	})
	log.Printf("session %s started for %s: %s/%s, %d questions, %ds", id, userID, criteria.Category, criteria.Mode, qs.Len(), qs.Remaining())
	return session.stateLocked(), nil
}

// SelectAnswer records the option for the session's current question.
func (s *QuizService) SelectAnswer(ctx context.Context, sessionID, option string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, func(q *quiz.Session) error { return q.SelectAnswer(option) })
}

// Advance moves to the next question, finishing or eliminating when the rules say so.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, (*quiz.Session).Advance)
}

// Retreat moves back one question.
func (s *QuizService) Retreat(ctx context.Context, sessionID string) (domain.SessionState, error) {
	return s.apply(ctx, sessionID, (*quiz.Session).Retreat)
}

// Tick consumes one second. Ticks delivered after termination are ignored.
func (s *QuizService) Tick(ctx context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.quiz.Terminated() {
		return session.stateLocked(), nil
	}
	return s.applyLocked(ctx, session, (*quiz.Session).Tick)
}

// State returns the current snapshot without changing anything.
func (s *QuizService) State(_ context.Context, sessionID string) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.stateLocked(), nil
}

// Outcome returns the scored result of a terminated session.
func (s *QuizService) Outcome(_ context.Context, sessionID string) (domain.Outcome, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Outcome{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.outcome == nil {
		return domain.Outcome{}, domain.IllegalStatef("session %s is still active", sessionID)
	}
	return *session.outcome, nil
}

// Review lists questions with selected and correct answers once the session is over.
func (s *QuizService) Review(_ context.Context, sessionID string) ([]domain.ReviewItem, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if !session.quiz.Terminated() {
		return nil, domain.IllegalStatef("answers are hidden until session %s ends", sessionID)
	}
	return session.quiz.Review(), nil
}

// Subscribe returns a channel that receives state updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionState, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// Leave stops the countdown and forgets the session. An unfinished session is discarded unrecorded.
func (s *QuizService) Leave(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.mu.Lock()
	session.countdown.Stop()
	session.mu.Unlock()
	s.sessions.Delete(sessionID)
}

func (s *QuizService) apply(ctx context.Context, sessionID string, op func(*quiz.Session) error) (domain.SessionState, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionState{}, domain.ErrSessionNotFound
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return s.applyLocked(ctx, session, op)
}

func (s *QuizService) applyLocked(ctx context.Context, session *Session, op func(*quiz.Session) error) (domain.SessionState, error) {
	if err := op(session.quiz); err != nil {
		return session.stateLocked(), err
	}
	if session.quiz.Terminated() {
		if err := s.finishLocked(ctx, session); err != nil {
			return session.stateLocked(), err
		}
	}
	return session.broadcastLocked(), nil
}

// finishLocked scores the session and hands it to the sink exactly once.
// A sink failure is logged; the outcome is kept either way.
func (s *QuizService) finishLocked(ctx context.Context, session *Session) error {
	if session.outcome != nil {
		return nil
	}
	session.countdown.Stop()

	score, err := quiz.Score(session.quiz)
	if err != nil {
		return err
	}
	outcome := domain.Outcome{
		SessionID: session.id,
		UserID:    session.userID,
		Category:  session.category,
		Reason:    session.quiz.Reason(),
		Score:     score,
		Duration:  session.quiz.Duration(),
		EndedAt:   session.quiz.EndedAt(),
	}

	record := domain.QuizRecord{
		UserID:    session.userID,
		Category:  session.category,
		Mode:      session.quiz.Mode(),
		Reason:    outcome.Reason,
		Timestamp: s.now(),
		Duration:  outcome.Duration,
		Score:     score,
	}
	if err := s.sink.Record(ctx, record); err != nil {
		log.Printf("record result for session %s: %v", session.id, err)
	} else {
		outcome.Persisted = true
	}
	session.outcome = &outcome
	log.Printf("session %s ended (%s): %d/%d", session.id, outcome.Reason, score.Correct, score.Total)
	return nil
}

// Session wraps one live quiz attempt with its lock, countdown and subscribers.
type Session struct {
	id       string
	userID   string
	category string

	mu          sync.Mutex
	quiz        *quiz.Session
	countdown   *timer.Handle
	outcome     *domain.Outcome
	subscribers map[chan domain.SessionState]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, userID, category string, q *quiz.Session) *Session {
	return &Session{
		id:          id,
		userID:      userID,
		category:    category,
		quiz:        q,
		subscribers: make(map[chan domain.SessionState]struct{}),
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

// TimeLeft is what remains on the session's countdown.
func (s *Session) TimeLeft() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.quiz.Remaining()) * time.Second
}

func (s *Session) stateLocked() domain.SessionState {
	state := s.quiz.Snapshot()
	state.SessionID = s.id
	state.Category = s.category
	return state
}

func (s *Session) subscribe() (<-chan domain.SessionState, func()) {
	ch := make(chan domain.SessionState, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.stateLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.SessionState {
	state := s.stateLocked()
	for ch := range s.subscribers {
		select {
		case ch <- state:
		default:
			// drop the stale update so a slow reader never blocks the writer
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
	return state
}
