package quiz

import (
	"context"
	"time"

	"prepify-quiz/internal/domain"
)

// Timing is the per-question time allowance, in seconds, for each mode.
type Timing struct {
	Standard    int
	SuddenDeath int
	Sprint      int
}

// DefaultTiming: sudden death shares the standard allowance.
var DefaultTiming = Timing{Standard: 60, SuddenDeath: 60, Sprint: 10}

// PerQuestion returns the allowance for mode, falling back to DefaultTiming for unset values.
func (t Timing) PerQuestion(mode domain.Mode) (int, error) {
	var secs, fallback int
	switch mode {
	case domain.ModeStandard:
		secs, fallback = t.Standard, DefaultTiming.Standard
	case domain.ModeSuddenDeath:
		secs, fallback = t.SuddenDeath, DefaultTiming.SuddenDeath
	case domain.ModeSprint:
		secs, fallback = t.Sprint, DefaultTiming.Sprint
	default:
		return 0, domain.Invalidf("unknown mode %q", mode)
	}
	if secs <= 0 {
		return fallback, nil
	}
	return secs, nil
}

// Criteria describes the quiz a user asked for.
type Criteria struct {
	Category string
	Subjects []string
	Count    int
	Mode     domain.Mode
}

// Builder turns criteria into a fresh Session.
type Builder struct {
	bank    *Bank
	timing  Timing
	matcher Matcher
	now     func() time.Time
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

func WithTiming(t Timing) BuilderOption {
	return func(b *Builder) { b.timing = t }
}

func WithMatcher(m Matcher) BuilderOption {
	return func(b *Builder) {
		if m != nil {
			b.matcher = m
		}
	}
}

// WithClock is used in tests for deterministic timestamps.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(bank *Bank, opts ...BuilderOption) *Builder {
	b := &Builder{
		bank:    bank,
		timing:  DefaultTiming,
		matcher: ExactMatcher{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Bank exposes the underlying question bank.
func (b *Builder) Bank() *Bank {
	return b.bank
}

// Build samples questions and initializes an active session.
func (b *Builder) Build(ctx context.Context, c Criteria) (*Session, error) {
	perQuestion, err := b.timing.PerQuestion(c.Mode)
	if err != nil {
		return nil, err
	}
	questions, err := b.bank.Sample(ctx, c.Category, c.Subjects, c.Count)
	if err != nil {
		return nil, err
	}
	return newSession(questions, c.Mode, len(questions)*perQuestion, b.matcher, b.now), nil
}
