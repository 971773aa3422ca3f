package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/ignitecall/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	db *sql.DB
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, session_token, user_id, expires, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.SessionToken, session.UserID, session.Expires, session.CreatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByToken は指定トークンのセッションを取得する。期限切れの場合はnilを返す。
func (r *PostgresSessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_token, user_id, expires, created_at
		 FROM sessions
		 WHERE session_token = $1 AND expires > now()`,
		token,
	).Scan(&session.ID, &session.SessionToken, &session.UserID, &session.Expires, &session.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// FindWithUserByToken はセッションとユーザーを結合して取得する。
func (r *PostgresSessionRepo) FindWithUserByToken(ctx context.Context, token string) (*model.Session, *model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.session_token, s.user_id, s.expires, s.created_at, `+userColumns+`
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token = $1`,
		token,
	)

	var (
		session model.Session
		user    userRow
	)
	dest := append([]any{
		&session.ID, &session.SessionToken, &session.UserID, &session.Expires, &session.CreatedAt,
	}, user.dest()...)
	err := row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find session with user: %w", err)
	}
	return &session, user.toModel(), nil
}

// Update はトークンで特定したセッションのユーザーIDと有効期限を更新する。
func (r *PostgresSessionRepo) Update(ctx context.Context, token, userID string, expires time.Time) (*model.Session, error) {
	session := &model.Session{}
	err := r.db.QueryRowContext(ctx,
		`UPDATE sessions SET user_id = $2, expires = $3
		 WHERE session_token = $1
		 RETURNING id, session_token, user_id, expires, created_at`,
		token, userID, expires,
	).Scan(&session.ID, &session.SessionToken, &session.UserID, &session.Expires, &session.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return session, nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE session_token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
