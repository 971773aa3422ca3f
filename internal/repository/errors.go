package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hitoshi/ignitecall/internal/model"
	"github.com/lib/pq"
)

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation はエラーが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// dbtx は*sql.DBと*sql.Txの共通インターフェース。
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// userColumns はusersテーブルのSELECT対象カラム。userRow.destと順序を合わせる。
const userColumns = `u.id, u.username, u.name, u.email, u.avatar_url, u.bio, u.finalized_at, u.created_at, u.updated_at`

// userRow はuserColumnsの読み取り先。NULL許容カラムを一時的に保持する。
type userRow struct {
	user        model.User
	email       sql.NullString
	avatarURL   sql.NullString
	finalizedAt sql.NullTime
}

// dest はuserColumnsの順にScanの格納先を返す。
func (r *userRow) dest() []any {
	return []any{
		&r.user.ID, &r.user.Username, &r.user.Name, &r.email, &r.avatarURL,
		&r.user.Bio, &r.finalizedAt, &r.user.CreatedAt, &r.user.UpdatedAt,
	}
}

// toModel はNULLをnilポインタに変換したユーザーを返す。
func (r *userRow) toModel() *model.User {
	user := r.user
	if r.email.Valid {
		email := r.email.String
		user.Email = &email
	}
	if r.avatarURL.Valid {
		avatarURL := r.avatarURL.String
		user.AvatarURL = &avatarURL
	}
	if r.finalizedAt.Valid {
		finalizedAt := r.finalizedAt.Time
		user.FinalizedAt = &finalizedAt
	}
	return &user
}

// scanUser はuserColumnsの順でユーザーを読み取る。
func scanUser(row rowScanner) (*model.User, error) {
	var r userRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.toModel(), nil
}

// nullString はnilをNULLとして渡すための変換。
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
