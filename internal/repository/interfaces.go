// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/ignitecall/internal/model"
)

// ProfileFields はIdPから受け取るプロフィール項目。
// nilのEmail/AvatarURLはNULLとして保存する。
type ProfileFields struct {
	Name      string
	Email     *string
	AvatarURL *string
}

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// CreatePending はユーザー名確保時の仮登録ユーザーを作成する。
	// ユーザー名が重複する場合はmodel.ErrDuplicateを返す。
	CreatePending(ctx context.Context, user *model.User) error

	// Finalize は仮登録ユーザーのプロフィールを確定する。
	// 対象が存在しないか既に確定済みの場合はmodel.ErrMissingPendingUserを返す。
	Finalize(ctx context.Context, id string, profile ProfileFields, finalizedAt time.Time) (*model.User, error)

	// FinalizeWithAccount はFinalizeとアカウント作成を同一トランザクションで行う。
	// どちらかが失敗した場合はどちらも反映されない。
	// アカウントが重複する場合はmodel.ErrDuplicateを返す。
	FinalizeWithAccount(ctx context.Context, id string, profile ProfileFields, finalizedAt time.Time, account *model.Account) (*model.User, error)

	// UpdateProfile は名前・メールアドレス・アバターを上書きする。
	// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
	UpdateProfile(ctx context.Context, id string, profile ProfileFields) (*model.User, error)

	// UpdateBio は自己紹介文を更新する。
	// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
	UpdateBio(ctx context.Context, id string, bio string) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するaccounts、sessions、user_time_intervalsはCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// AccountRepository は外部IdPアカウント紐付け情報の永続化インターフェース。
type AccountRepository interface {
	// Create はアカウントを作成する。
	// (provider_id, provider_account_id) が重複する場合はmodel.ErrDuplicateを返す。
	Create(ctx context.Context, account *model.Account) error

	// FindUserByProviderAccount はproviderIDとproviderAccountIDで紐付くユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindUserByProviderAccount(ctx context.Context, providerID, providerAccountID string) (*model.User, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。トークンが重複する場合はmodel.ErrDuplicateを返す。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken はトークンで有効なセッションを取得する。期限切れ・未登録の場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// FindWithUserByToken はトークンでセッションとユーザーを結合して取得する。
	// 期限による絞り込みは行わない。見つからない場合はmodel.ErrSessionNotFoundを返す。
	FindWithUserByToken(ctx context.Context, token string) (*model.Session, *model.User, error)

	// Update はトークンで特定したセッションのユーザーIDと有効期限を更新する。
	// 見つからない場合はmodel.ErrSessionNotFoundを返す。
	Update(ctx context.Context, token, userID string, expires time.Time) (*model.Session, error)

	// DeleteByToken は指定トークンのセッションを削除する。
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// TimeIntervalRepository は曜日ごとの時間帯の永続化インターフェース。
type TimeIntervalRepository interface {
	// ReplaceForUser はユーザーの時間帯を同一トランザクションで全件置き換える。
	ReplaceForUser(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error

	// ListByUserID はユーザーの時間帯を曜日順に返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.WeekdayInterval, error)
}
