package quiz

import "prepify-quiz/internal/domain"

// Score computes aggregate and per-subject correctness for a terminated session.
// It only reads the session, so repeated calls yield equal results.
func Score(s *Session) (domain.ScoreResult, error) {
	if !s.Terminated() {
		return domain.ScoreResult{}, domain.IllegalStatef("cannot score an active session")
	}
	total := len(s.questions)
	if total == 0 {
		return domain.ScoreResult{}, domain.ErrDivisionByZero
	}

	result := domain.ScoreResult{
		Total:      total,
		PerSubject: make(map[string]domain.SubjectScore),
	}
	for i, q := range s.questions {
		subject := result.PerSubject[q.Subject]
		subject.Total++
		if s.isCorrect(i) {
			subject.Correct++
			result.Correct++
		}
		result.PerSubject[q.Subject] = subject
	}
	result.Percentage = 100 * float64(result.Correct) / float64(total)
	return result, nil
}
