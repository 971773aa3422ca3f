package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/ignitecall/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "find user by ID",
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
}

// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "find user by email",
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
}

// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "find user by username",
		`SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username)
}

func (r *PostgresUserRepo) findOne(ctx context.Context, op, query string, args ...any) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return user, nil
}

// CreatePending はユーザー名確保時の仮登録ユーザーを作成する。
func (r *PostgresUserRepo) CreatePending(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, name, bio, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.Name, user.Bio, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert pending user: %w", err)
	}
	return nil
}

// Finalize は仮登録ユーザーのプロフィールを確定する。
// finalized_at IS NULL を条件に含めるため、同じ仮登録ユーザーを二度確定することはできない。
func (r *PostgresUserRepo) Finalize(ctx context.Context, id string, profile ProfileFields, finalizedAt time.Time) (*model.User, error) {
	return finalizeUser(ctx, r.db, id, profile, finalizedAt)
}

// FinalizeWithAccount は仮登録ユーザーの確定と外部アカウントの紐付けを同一トランザクションで行う。
// アカウントの挿入に失敗した場合は確定もロールバックされ、ユーザーは仮登録のまま残る。
func (r *PostgresUserRepo) FinalizeWithAccount(ctx context.Context, id string, profile ProfileFields, finalizedAt time.Time, account *model.Account) (*model.User, error) {
	if account.UserID != id {
		return nil, fmt.Errorf("account %s belongs to user %s, not %s", account.ID, account.UserID, id)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user, err := finalizeUser(ctx, tx, id, profile, finalizedAt)
	if err != nil {
		return nil, err
	}
	if err := insertAccount(ctx, tx, account); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return user, nil
}

func finalizeUser(ctx context.Context, db dbtx, id string, profile ProfileFields, finalizedAt time.Time) (*model.User, error) {
	user, err := scanUser(db.QueryRowContext(ctx,
		`UPDATE users u
		 SET name = $2, email = $3, avatar_url = $4, finalized_at = $5, updated_at = $5
		 WHERE u.id = $1 AND u.finalized_at IS NULL
		 RETURNING `+userColumns,
		id, profile.Name, nullString(profile.Email), nullString(profile.AvatarURL), finalizedAt,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMissingPendingUser
	}
	if isUniqueViolation(err) {
		return nil, model.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to finalize user: %w", err)
	}
	return user, nil
}

// UpdateProfile は名前・メールアドレス・アバターを上書きする。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id string, profile ProfileFields) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users u
		 SET name = $2, email = $3, avatar_url = $4, updated_at = now()
		 WHERE u.id = $1
		 RETURNING `+userColumns,
		id, profile.Name, nullString(profile.Email), nullString(profile.AvatarURL),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if isUniqueViolation(err) {
		return nil, model.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdateBio は自己紹介文を更新する。
func (r *PostgresUserRepo) UpdateBio(ctx context.Context, id string, bio string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET bio = $2, updated_at = now() WHERE id = $1`,
		id, bio,
	)
	if err != nil {
		return fmt.Errorf("failed to update bio: %w", err)
	}
	return requireAffected(result, model.ErrUserNotFound)
}

// DeleteByID は指定IDのユーザーを削除する。
// 関連するaccounts、sessions、user_time_intervalsはCASCADE削除される。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, model.ErrUserNotFound)
}

// requireAffected は1行も更新されなかった場合にnotFoundを返す。
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
