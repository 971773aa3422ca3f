package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/ignitecall/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Create はアカウントを作成する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	return insertAccount(ctx, r.db, account)
}

func insertAccount(ctx context.Context, db dbtx, account *model.Account) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, provider_type, provider_id, provider_account_id,
		                       access_token, refresh_token, access_token_expires, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		account.ID, account.UserID, account.ProviderType, account.ProviderID, account.ProviderAccountID,
		account.AccessToken, account.RefreshToken, account.AccessTokenExpires, account.CreatedAt,
	)
	if isUniqueViolation(err) {
		return model.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// FindUserByProviderAccount はproviderIDとproviderAccountIDで紐付くユーザーを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindUserByProviderAccount(ctx context.Context, providerID, providerAccountID string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+`
		 FROM accounts a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.provider_id = $1 AND a.provider_account_id = $2`,
		providerID, providerAccountID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by account: %w", err)
	}
	return user, nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
