package domain

import (
	"strings"
	"time"
)

// OptionCount is the fixed number of options on every question.
const OptionCount = 4

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID            int64               `json:"id" yaml:"id"`
	Category      string              `json:"category" yaml:"category"`
	Subject       string              `json:"subject" yaml:"subject"`
	Text          string              `json:"text" yaml:"text"`
	Options       [OptionCount]string `json:"options" yaml:"options"`
	CorrectAnswer string              `json:"correctAnswer" yaml:"answer"`
}

// Validate checks the record is complete and the correct answer is one of the options.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Category) == "" {
		return Invalidf("question category is empty")
	}
	if strings.TrimSpace(q.Subject) == "" {
		return Invalidf("question subject is empty")
	}
	if strings.TrimSpace(q.Text) == "" {
		return Invalidf("question text is empty")
	}
	found := false
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return Invalidf("option %d is empty", i+1)
		}
		if opt == q.CorrectAnswer {
			found = true
		}
	}
	if !found {
		return Invalidf("correct answer %q is not one of the options", q.CorrectAnswer)
	}
	return nil
}

// Mode is a named ruleset for a quiz session.
type Mode string

const (
	ModeStandard    Mode = "standard"
	ModeSuddenDeath Mode = "sudden_death"
	ModeSprint      Mode = "sprint"
)

// ParseMode maps client input onto a Mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeStandard, "":
		return ModeStandard, nil
	case ModeSuddenDeath, "death":
		return ModeSuddenDeath, nil
	case ModeSprint:
		return ModeSprint, nil
	}
	return "", Invalidf("unknown mode %q", raw)
}

// TerminationReason tags how a session ended.
type TerminationReason string

const (
	ReasonNone        TerminationReason = "none"
	ReasonFinished    TerminationReason = "finished"
	ReasonTimeExpired TerminationReason = "time_expired"
	ReasonEliminated  TerminationReason = "eliminated"
)

// SubjectScore is the correct/total pair for one subject.
type SubjectScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// ScoreResult is the immutable outcome of scoring a terminated session.
type ScoreResult struct {
	Correct    int                     `json:"correct"`
	Total      int                     `json:"total"`
	Percentage float64                 `json:"percentage"`
	PerSubject map[string]SubjectScore `json:"perSubject"`
}

// QuizRecord is handed to the result sink once per terminated session.
type QuizRecord struct {
	UserID    string
	Category  string
	Mode      Mode
	Reason    TerminationReason
	Timestamp time.Time
	Duration  time.Duration
	Score     ScoreResult
}

// SubjectRecord is the per-subject slice of a QuizRecord.
type SubjectRecord struct {
	UserID    string
	Subject   string
	Correct   int
	Total     int
	Timestamp time.Time
}

// SubjectRecords expands the record into per-subject rows.
func (r QuizRecord) SubjectRecords() []SubjectRecord {
	out := make([]SubjectRecord, 0, len(r.Score.PerSubject))
	for subject, s := range r.Score.PerSubject {
		out = append(out, SubjectRecord{
			UserID:    r.UserID,
			Subject:   subject,
			Correct:   s.Correct,
			Total:     s.Total,
			Timestamp: r.Timestamp,
		})
	}
	return out
}

// QuestionView is a client-safe projection of a question (no answer key).
type QuestionView struct {
	ID      int64               `json:"id"`
	Subject string              `json:"subject"`
	Text    string              `json:"text"`
	Options [OptionCount]string `json:"options"`
}

// SessionState is the snapshot pushed to clients after every transition.
type SessionState struct {
	SessionID  string            `json:"sessionId"`
	Category   string            `json:"category"`
	Mode       Mode              `json:"mode"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Question   QuestionView      `json:"question"`
	Selected   string            `json:"selected,omitempty"`
	Answered   int               `json:"answered"`
	Remaining  int               `json:"remaining"`
	Terminated bool              `json:"terminated"`
	Reason     TerminationReason `json:"reason"`
}

// Outcome is what a finished session leaves behind.
type Outcome struct {
	SessionID string            `json:"sessionId"`
	UserID    string            `json:"userId"`
	Category  string            `json:"category"`
	Reason    TerminationReason `json:"reason"`
	Score     ScoreResult       `json:"score"`
	Duration  time.Duration     `json:"duration"`
	EndedAt   time.Time         `json:"endedAt"`
	Persisted bool              `json:"persisted"`
}

// ReviewItem pairs a question with what was selected, for post-quiz review and reports.
type ReviewItem struct {
	Index    int      `json:"index"`
	Question Question `json:"question"`
	Selected string   `json:"selected,omitempty"`
	Answered bool     `json:"answered"`
	Correct  bool     `json:"correct"`
}

// User is an account in the credential store.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
}

// ResultEntry is one persisted quiz result.
type ResultEntry struct {
	Category   string    `json:"category"`
	Percentage float64   `json:"percentage"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	Timestamp  time.Time `json:"timestamp"`
}

// Dashboard summarizes a user's activity.
type Dashboard struct {
	TotalQuizzes int           `json:"totalQuizzes"`
	AverageScore float64       `json:"averageScore"`
	Recent       []ResultEntry `json:"recent"`
}

// SubjectPerformance is the accumulated accuracy for one subject.
type SubjectPerformance struct {
	Subject  string  `json:"subject"`
	Correct  int     `json:"correct"`
	Total    int     `json:"total"`
	Accuracy float64 `json:"accuracy"`
}
