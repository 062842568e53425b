package sqlite

import (
	"context"
	"time"

	"prepify-quiz/internal/domain"
)

// Record stores one quiz result and folds its subjects into the running totals.
func (s *Store) Record(ctx context.Context, record domain.QuizRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO quiz_results (username, category, mode, reason, correct, total, percentage, duration_ms, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UserID, record.Category, string(record.Mode), string(record.Reason),
		record.Score.Correct, record.Score.Total, record.Score.Percentage,
		record.Duration.Milliseconds(), record.Timestamp.UnixNano(),
	)
	if err != nil {
		return err
	}
	for _, sub := range record.SubjectRecords() {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO subject_performance (username, subject, correct, total) VALUES (?, ?, ?, ?)
			 ON CONFLICT(username, subject) DO UPDATE SET
			   correct = correct + excluded.correct,
			   total = total + excluded.total`,
			sub.UserID, sub.Subject, sub.Correct, sub.Total,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) RecentResults(ctx context.Context, userID string, limit int) ([]domain.ResultEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, percentage, correct, total, taken_at FROM quiz_results
		 WHERE username = ? ORDER BY taken_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.ResultEntry, 0, limit)
	for rows.Next() {
		var (
			e     domain.ResultEntry
			taken int64
		)
		if err := rows.Scan(&e.Category, &e.Percentage, &e.Correct, &e.Total, &taken); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, taken).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ResultSummary(ctx context.Context, userID string) (int, float64, error) {
	var (
		count int
		avg   float64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(percentage), 0) FROM quiz_results WHERE username = ?`, userID,
	).Scan(&count, &avg)
	return count, avg, err
}

func (s *Store) SubjectPerformance(ctx context.Context, userID string) ([]domain.SubjectPerformance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT subject, correct, total FROM subject_performance WHERE username = ? ORDER BY subject`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.SubjectPerformance, 0)
	for rows.Next() {
		var p domain.SubjectPerformance
		if err := rows.Scan(&p.Subject, &p.Correct, &p.Total); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
