package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"prepify-quiz/internal/domain"
)

const questionColumns = `id, category, subject, question, option1, option2, option3, option4, correct_answer`

func (s *Store) Questions(ctx context.Context, category string) ([]domain.Question, error) {
	return s.queryQuestions(ctx, `SELECT `+questionColumns+` FROM questions WHERE category = ? ORDER BY id`, category)
}

func (s *Store) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT category FROM questions ORDER BY category`)
	if err != nil {
		return nil, err
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
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (s *Store) AddQuestion(ctx context.Context, q domain.Question) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (category, subject, question, option1, option2, option3, option4, correct_answer)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		q.Category, q.Subject, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectAnswer,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) UpdateQuestion(ctx context.Context, q domain.Question) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE questions SET category = ?, subject = ?, question = ?,
		   option1 = ?, option2 = ?, option3 = ?, option4 = ?, correct_answer = ?
		 WHERE id = ?`,
		q.Category, q.Subject, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], q.CorrectAnswer, q.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrQuestionNotFound)
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrQuestionNotFound)
}

// SearchQuestions matches the query against question text or subject (LIKE is case-insensitive for ASCII).
func (s *Store) SearchQuestions(ctx context.Context, query string) ([]domain.Question, error) {
	pattern := containsPattern(query)
	return s.queryQuestions(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question LIKE ? ESCAPE '\' OR subject LIKE ? ESCAPE '\' ORDER BY id`,
		pattern, pattern,
	)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
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

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (domain.Question, error) {
	var q domain.Question
	err := row.Scan(&q.ID, &q.Category, &q.Subject, &q.Text,
		&q.Options[0], &q.Options[1], &q.Options[2], &q.Options[3], &q.CorrectAnswer)
	return q, err
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into a LIKE substring pattern with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
