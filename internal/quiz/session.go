package quiz

import (
	"time"

	"prepify-quiz/internal/domain"
)

// Session is one user's attempt at a fixed question set. It is not safe for
// concurrent use; the owner serializes events.
type Session struct {
	questions []domain.Question
	mode      domain.Mode
	matcher   Matcher
	now       func() time.Time

	answers   map[int]string
	current   int
	remaining int
	reason    domain.TerminationReason

	startedAt time.Time
	endedAt   time.Time
}

// NewSession starts an active session over questions with the given countdown.
func NewSession(questions []domain.Question, mode domain.Mode, remainingSeconds int, matcher Matcher) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.Invalidf("session needs at least one question")
	}
	if remainingSeconds <= 0 {
		return nil, domain.Invalidf("remaining seconds must be positive, got %d", remainingSeconds)
	}
	if _, err := DefaultTiming.PerQuestion(mode); err != nil {
		return nil, err
	}
	if matcher == nil {
		matcher = ExactMatcher{}
	}
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	return newSession(qs, mode, remainingSeconds, matcher, time.Now), nil
}

func newSession(questions []domain.Question, mode domain.Mode, remaining int, matcher Matcher, now func() time.Time) *Session {
	return &Session{
		questions: questions,
		mode:      mode,
		matcher:   matcher,
		now:       now,
		answers:   make(map[int]string),
		remaining: remaining,
		reason:    domain.ReasonNone,
		startedAt: now(),
	}
}

// SelectAnswer records option for the current question. The option must be one
// of the question's four options under the session's match policy.
func (s *Session) SelectAnswer(option string) error {
	if err := s.ensureActive("select answer"); err != nil {
		return err
	}
	q := s.questions[s.current]
	for _, opt := range q.Options {
		if s.matcher.Match(option, opt) {
			s.answers[s.current] = opt
			return nil
		}
	}
	return domain.Invalidf("%q is not an option of question %d", option, s.current+1)
}

// Advance moves forward. In sudden death a wrong or missing answer eliminates
// the player; on the last question the session finishes.
func (s *Session) Advance() error {
	if err := s.ensureActive("advance"); err != nil {
		return err
	}
	if s.mode == domain.ModeSuddenDeath && !s.isCorrect(s.current) {
		s.terminate(domain.ReasonEliminated)
		return nil
	}
	if s.current == len(s.questions)-1 {
		s.terminate(domain.ReasonFinished)
		return nil
	}
	s.current++
	return nil
}

// Retreat moves back one question, keeping recorded answers.
func (s *Session) Retreat() error {
	if err := s.ensureActive("retreat"); err != nil {
		return err
	}
	if s.current == 0 {
		return domain.IllegalStatef("cannot retreat from the first question")
	}
	s.current--
	return nil
}

// Tick consumes one second of the countdown and expires the session at zero.
func (s *Session) Tick() error {
	if err := s.ensureActive("tick"); err != nil {
		return err
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.terminate(domain.ReasonTimeExpired)
	}
	return nil
}

func (s *Session) ensureActive(op string) error {
	if s.Terminated() {
		return domain.IllegalStatef("%s: session already terminated (%s)", op, s.reason)
	}
	return nil
}

func (s *Session) terminate(reason domain.TerminationReason) {
	s.reason = reason
	s.endedAt = s.now()
}

func (s *Session) isCorrect(i int) bool {
	selected, ok := s.answers[i]
	return ok && s.matcher.Match(selected, s.questions[i].CorrectAnswer)
}

func (s *Session) Questions() []domain.Question {
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

func (s *Session) Len() int                         { return len(s.questions) }
func (s *Session) Mode() domain.Mode                { return s.mode }
func (s *Session) Current() int                     { return s.current }
func (s *Session) CurrentQuestion() domain.Question { return s.questions[s.current] }
func (s *Session) Remaining() int                   { return s.remaining }
func (s *Session) Reason() domain.TerminationReason { return s.reason }
func (s *Session) Terminated() bool                 { return s.reason != domain.ReasonNone }
func (s *Session) StartedAt() time.Time             { return s.startedAt }
func (s *Session) EndedAt() time.Time               { return s.endedAt }

// Answer returns the recorded answer for question i, if any.
func (s *Session) Answer(i int) (string, bool) {
	a, ok := s.answers[i]
	return a, ok
}

// Answers returns a copy of the sparse answer map.
func (s *Session) Answers() map[int]string {
	out := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Duration is the wall time from start to termination (or now while active).
func (s *Session) Duration() time.Duration {
	if s.Terminated() {
		return s.endedAt.Sub(s.startedAt)
	}
	return s.now().Sub(s.startedAt)
}

// Snapshot renders a client-safe view of the session.
func (s *Session) Snapshot() domain.SessionState {
	q := s.questions[s.current]
	selected := s.answers[s.current]
	return domain.SessionState{
		Mode:  s.mode,
		Index: s.current,
		Total: len(s.questions),
		Question: domain.QuestionView{
			ID:      q.ID,
			Subject: q.Subject,
			Text:    q.Text,
			Options: q.Options,
		},
		Selected:   selected,
		Answered:   len(s.answers),
		Remaining:  s.remaining,
		Terminated: s.Terminated(),
		Reason:     s.reason,
	}
}

// Review lists every question with the recorded answer and whether it matched.
func (s *Session) Review() []domain.ReviewItem {
	items := make([]domain.ReviewItem, len(s.questions))
	for i, q := range s.questions {
		selected, ok := s.answers[i]
		items[i] = domain.ReviewItem{
			Index:    i,
			Question: q,
			Selected: selected,
			Answered: ok,
			Correct:  s.isCorrect(i),
		}
	}
	return items
}
