package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/ignitecall/internal/model"
	"github.com/hitoshi/ignitecall/internal/repository"
)

// Profile はIdPから受け取ったプロフィール。空文字は未設定を表す。
type Profile struct {
	Name      string
	Email     string
	AvatarURL string
}

// fields はProfileを永続化用に変換する。空文字はNULLになる。
func (p Profile) fields() repository.ProfileFields {
	f := repository.ProfileFields{Name: p.Name}
	if p.Email != "" {
		email := p.Email
		f.Email = &email
	}
	if p.AvatarURL != "" {
		avatar := p.AvatarURL
		f.AvatarURL = &avatar
	}
	return f
}

// AdapterUser は認証処理に渡すユーザー表現。
// EmailとAvatarURLは未設定の場合に空文字となり、nilにはならない。
type AdapterUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
}

// AdapterSession は認証処理に渡すセッション表現。
type AdapterSession struct {
	SessionToken string    `json:"sessionToken"`
	UserID       string    `json:"userId"`
	Expires      time.Time `json:"expires"`
}

// AccountInput はLinkAccountの入力。
// ExpiresAtがゼロ値の場合は紐付け時点の時刻を使う。
type AccountInput struct {
	UserID            string
	ProviderType      string
	ProviderID        string
	ProviderAccountID string
	AccessToken       string
	RefreshToken      string
	ExpiresAt         time.Time
}

// Adapter はユーザー・アカウント・セッションの永続化を認証処理向けに提供する。
//
// 参照系は2種類ある。GetUser/GetUserByEmail/GetUserByAccountは見つからない場合に
// nilを返し、GetSessionAndUserは見つからない場合にmodel.ErrSessionNotFoundを返す。
type Adapter struct {
	users    repository.UserRepository
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	now      func() time.Time
}

// NewAdapter はAdapterを生成する。
func NewAdapter(
	users repository.UserRepository,
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
) *Adapter {
	return &Adapter{
		users:    users,
		accounts: accounts,
		sessions: sessions,
		now:      time.Now,
	}
}

// CreateUser はユーザー名確保時に作成された仮登録ユーザーをIdPのプロフィールで確定する。
// 新しい行は作成しない。claimがnilの場合、または仮登録ユーザーが存在しないか
// 既に確定済みの場合はmodel.ErrMissingPendingUserを返す。
func (a *Adapter) CreateUser(ctx context.Context, claim *PendingClaim, profile Profile) (*AdapterUser, error) {
	if claim == nil || claim.UserID == "" {
		return nil, model.ErrMissingPendingUser
	}

	user, err := a.users.Finalize(ctx, claim.UserID, profile.fields(), a.now())
	if err != nil {
		return nil, fmt.Errorf("failed to finalize pending user: %w", err)
	}

	slog.Info("pending user finalized",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return toAdapterUser(user), nil
}

// GetUser はIDでユーザーを取得する。見つからない場合はnilを返す。
func (a *Adapter) GetUser(ctx context.Context, id string) (*AdapterUser, error) {
	user, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toAdapterUser(user), nil
}

// GetUserByEmail はメールアドレスでユーザーを取得する。見つからない場合はnilを返す。
func (a *Adapter) GetUserByEmail(ctx context.Context, email string) (*AdapterUser, error) {
	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return toAdapterUser(user), nil
}

// GetUserByAccount は外部アカウントに紐付くユーザーを取得する。見つからない場合はnilを返す。
func (a *Adapter) GetUserByAccount(ctx context.Context, providerID, providerAccountID string) (*AdapterUser, error) {
	user, err := a.accounts.FindUserByProviderAccount(ctx, providerID, providerAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by account: %w", err)
	}
	return toAdapterUser(user), nil
}

// UpdateUser は名前・メールアドレス・アバターを上書きする。
// 存在しないIDの場合はmodel.ErrUserNotFoundを返す。
func (a *Adapter) UpdateUser(ctx context.Context, id string, profile Profile) (*AdapterUser, error) {
	user, err := a.users.UpdateProfile(ctx, id, profile.fields())
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return toAdapterUser(user), nil
}

// CreateUserWithAccount は仮登録ユーザーの確定と外部アカウントの紐付けを同一トランザクションで行う。
// input.UserIDは無視し、claimのユーザーIDを使う。
// 紐付けに失敗した場合は確定も取り消され、同じclaimで再試行できる。
func (a *Adapter) CreateUserWithAccount(ctx context.Context, claim *PendingClaim, profile Profile, input AccountInput) (*AdapterUser, error) {
	if claim == nil || claim.UserID == "" {
		return nil, model.ErrMissingPendingUser
	}

	input.UserID = claim.UserID
	user, err := a.users.FinalizeWithAccount(ctx, claim.UserID, profile.fields(), a.now(), a.newAccount(input))
	if err != nil {
		return nil, fmt.Errorf("failed to finalize pending user with account: %w", err)
	}

	slog.Info("pending user finalized",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("provider", input.ProviderID),
	)
	return toAdapterUser(user), nil
}

// LinkAccount は外部アカウントをユーザーに紐付ける。
func (a *Adapter) LinkAccount(ctx context.Context, input AccountInput) error {
	if err := a.accounts.Create(ctx, a.newAccount(input)); err != nil {
		return fmt.Errorf("failed to link account: %w", err)
	}
	return nil
}

// newAccount はAccountInputから保存用のアカウントを組み立てる。
// ExpiresAtがゼロ値の場合は現在時刻を使う。
func (a *Adapter) newAccount(input AccountInput) *model.Account {
	now := a.now()
	expires := input.ExpiresAt
	if expires.IsZero() {
		expires = now
	}
	return &model.Account{
		ID:                 uuid.New().String(),
		UserID:             input.UserID,
		ProviderType:       input.ProviderType,
		ProviderID:         input.ProviderID,
		ProviderAccountID:  input.ProviderAccountID,
		AccessToken:        input.AccessToken,
		RefreshToken:       input.RefreshToken,
		AccessTokenExpires: expires,
		CreatedAt:          now,
	}
}

// CreateSession はセッションを作成する。
// トークンが既に存在する場合はmodel.ErrDuplicateを返す。
func (a *Adapter) CreateSession(ctx context.Context, token, userID string, expires time.Time) (*AdapterSession, error) {
	session := &model.Session{
		ID:           uuid.New().String(),
		SessionToken: token,
		UserID:       userID,
		Expires:      expires,
		CreatedAt:    a.now(),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return toAdapterSession(session), nil
}

// GetSessionAndUser はトークンでセッションとユーザーを取得する。
// 見つからない場合はnilではなくmodel.ErrSessionNotFoundを返す。
// 有効期限の判定は呼び出し側が行う。
func (a *Adapter) GetSessionAndUser(ctx context.Context, token string) (*AdapterSession, *AdapterUser, error) {
	session, user, err := a.sessions.FindWithUserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	return toAdapterSession(session), toAdapterUser(user), nil
}

// UpdateSession はトークンで特定したセッションのユーザーIDと有効期限を更新する。
// 存在しないトークンの場合はmodel.ErrSessionNotFoundを返す。
func (a *Adapter) UpdateSession(ctx context.Context, token, userID string, expires time.Time) (*AdapterSession, error) {
	session, err := a.sessions.Update(ctx, token, userID, expires)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return toAdapterSession(session), nil
}

// DeleteSession はトークンのセッションを削除する。
func (a *Adapter) DeleteSession(ctx context.Context, token string) error {
	if err := a.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func toAdapterUser(u *model.User) *AdapterUser {
	if u == nil {
		return nil
	}
	au := &AdapterUser{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
	}
	if u.Email != nil {
		au.Email = *u.Email
	}
	if u.AvatarURL != nil {
		au.AvatarURL = *u.AvatarURL
	}
	return au
}

func toAdapterSession(s *model.Session) *AdapterSession {
	return &AdapterSession{
		SessionToken: s.SessionToken,
		UserID:       s.UserID,
		Expires:      s.Expires,
	}
}
