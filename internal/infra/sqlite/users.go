package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"prepify-quiz/internal/domain"
)

func (s *Store) User(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT username, password, is_admin FROM users WHERE username = ?`, username,
	).Scan(&u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO NOTHING`,
		user.Username, user.PasswordHash, user.IsAdmin,
	)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrUserExists)
}

func (s *Store) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE username = ?`, passwordHash, username)
	if err != nil {
		return err
	}
	return requireRow(res, domain.ErrUserNotFound)
}

// DeleteUser removes the account with its results and subject performance in one transaction.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subject_performance WHERE username = ?`, username); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_results WHERE username = ?`, username); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return err
	}
	if err := requireRow(res, domain.ErrUserNotFound); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListUsers(ctx context.Context, exclude, search string) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, password, is_admin FROM users
		 WHERE username <> ? AND username LIKE ? ESCAPE '\'
		 ORDER BY username`,
		exclude, containsPattern(search),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.IsAdmin); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
