package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"prepify-quiz/internal/domain"
)

// Record stores one quiz result and folds its subjects into the running totals.
func (s *Store) Record(ctx context.Context, record domain.QuizRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(
		`INSERT INTO quiz_results (username, category, mode, reason, correct, total, percentage, duration_ms, taken_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.UserID, record.Category, string(record.Mode), string(record.Reason),
		record.Score.Correct, record.Score.Total, record.Score.Percentage,
		record.Duration.Milliseconds(), record.Timestamp,
	)
	subjects := record.SubjectRecords()
	for _, sub := range subjects {
		batch.Queue(
			`INSERT INTO subject_performance (username, subject, correct, total) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (username, subject) DO UPDATE SET
			   correct = subject_performance.correct + EXCLUDED.correct,
			   total = subject_performance.total + EXCLUDED.total`,
			sub.UserID, sub.Subject, sub.Correct, sub.Total,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for i := 0; i < len(subjects)+1; i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("record result: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) RecentResults(ctx context.Context, userID string, limit int) ([]domain.ResultEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, percentage, correct, total, taken_at FROM quiz_results
		 WHERE username = $1 ORDER BY taken_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent results: %w", err)
	}
	defer rows.Close()
	out := make([]domain.ResultEntry, 0, limit)
	for rows.Next() {
		var e domain.ResultEntry
		if err := rows.Scan(&e.Category, &e.Percentage, &e.Correct, &e.Total, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ResultSummary(ctx context.Context, userID string) (int, float64, error) {
	var (
		count int
		avg   float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(percentage), 0) FROM quiz_results WHERE username = $1`, userID,
	).Scan(&count, &avg)
	return count, avg, err
}

func (s *Store) SubjectPerformance(ctx context.Context, userID string) ([]domain.SubjectPerformance, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT subject, correct, total FROM subject_performance WHERE username = $1 ORDER BY subject`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("subject performance: %w", err)
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
