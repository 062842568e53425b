// Package postgres is the server store on pgx. The schema is owned by the bun
// migrations in the migrations subpackage.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"prepify-quiz/internal/domain"
)

// Store implements the question, user and result stores on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const questionColumns = `id, category, subject, question, option1, option2, option3, option4, correct_answer`

func (s *Store) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	return s.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE category = $1 ORDER BY id`, category)
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT category FROM questions ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Question(ctx context.Context, id int64) (domain.Question, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *Store) AddQuestion(ctx context.Context, q domain.Question) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO questions (category, subject, question, option1, option2, option3, option4, correct_answer)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		q.Category, q.Subject, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectAnswer,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}
	return id, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE questions SET category = $1, subject = $2, question = $3,
		   option1 = $4, option2 = $5, option3 = $6, option4 = $7, correct_answer = $8
		 WHERE id = $9`,
		q.Category, q.Subject, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectAnswer, q.ID,
	)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (s *Store) SearchQuestions(ctx context.Context, query string) ([]domain.Question, error) {
	pattern := containsPattern(query)
	return s.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question ILIKE $1 ESCAPE '\' OR subject ILIKE $1 ESCAPE '\' ORDER BY id`,
		pattern,
	)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...interface{}) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Category, &q.Subject, &q.Text,
		&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.CorrectAnswer)
	return q, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
