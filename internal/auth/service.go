// Package auth はOAuth認証フロー、仮登録ユーザーの確定、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/ignitecall/internal/model"
)

// OAuthUserInfo はOAuthプロバイダーから取得したユーザー情報とトークンを表す。
type OAuthUserInfo struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
	Provider       string // "google" 等
	AccessToken    string
	RefreshToken   string
	Expiry         time.Time
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
type OAuthProvider interface {
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、ユーザー情報を取得する。
	ExchangeCode(ctx context.Context, code string) (*OAuthUserInfo, error)
}

// URLValidator はアバターURLの安全性を検証するインターフェース。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// SignInRecorder はサインイン結果のメトリクス記録インターフェース。
type SignInRecorder interface {
	RecordSignIn(result string)
}

// サインイン結果のラベル
const (
	SignInNewUser      = "new_user"
	SignInExistingUser = "existing_user"
	SignInFailed       = "failed"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	oauth    OAuthProvider
	adapter  *Adapter
	avatars  URLValidator
	recorder SignInRecorder
	config   ServiceConfig
	now      func() time.Time
}

// NewService はServiceを生成する。avatarsとrecorderはnilでもよい。
func NewService(
	oauth OAuthProvider,
	adapter *Adapter,
	avatars URLValidator,
	recorder SignInRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		oauth:    oauth,
		adapter:  adapter,
		avatars:  avatars,
		recorder: recorder,
		config:   config,
		now:      time.Now,
	}
}

// GetLoginURL はOAuth認証URLを生成する。
func (s *Service) GetLoginURL(state string) string {
	return s.oauth.GetLoginURL(state)
}

// HandleCallback はOAuthコールバックを処理し、セッションを発行する。
//
// 外部アカウントが未登録の場合、claimで示される仮登録ユーザーを確定してアカウントを紐付ける。
// claimがnilの場合はmodel.ErrMissingPendingUserを返す。
// 登録済みの場合はプロフィールを最新の内容で更新してログインする。
func (s *Service) HandleCallback(ctx context.Context, code string, claim *PendingClaim) (*AdapterSession, error) {
	session, result, err := s.handleCallback(ctx, code, claim)
	if s.recorder != nil {
		if err != nil {
			result = SignInFailed
		}
		s.recorder.RecordSignIn(result)
	}
	return session, err
}

func (s *Service) handleCallback(ctx context.Context, code string, claim *PendingClaim) (*AdapterSession, string, error) {
	// 1. 認可コードをトークンに交換し、ユーザー情報を取得
	info, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange oauth code: %w", err)
	}

	profile := Profile{
		Name:      info.Name,
		Email:     info.Email,
		AvatarURL: s.safeAvatarURL(info.AvatarURL),
	}

	// 2. 外部アカウントで既存ユーザーを検索
	existing, err := s.adapter.GetUserByAccount(ctx, info.Provider, info.ProviderUserID)
	if err != nil {
		return nil, "", err
	}

	var (
		userID string
		result string
	)
	if existing != nil {
		// 3a. 既存ユーザー: プロフィールを更新
		user, err := s.adapter.UpdateUser(ctx, existing.ID, profile)
		if err != nil {
			return nil, "", err
		}
		userID = user.ID
		result = SignInExistingUser
		slog.Info("existing user logged in",
			slog.String("user_id", userID),
			slog.String("provider", info.Provider),
		)
	} else {
		// 3b. 新規ユーザー: 仮登録ユーザーの確定とアカウントの紐付けを一度に行う
		user, err := s.adapter.CreateUserWithAccount(ctx, claim, profile, AccountInput{
			ProviderType:      "oauth",
			ProviderID:        info.Provider,
			ProviderAccountID: info.ProviderUserID,
			AccessToken:       info.AccessToken,
			RefreshToken:      info.RefreshToken,
			ExpiresAt:         info.Expiry,
		})
		if err != nil {
			return nil, "", err
		}
		userID = user.ID
		result = SignInNewUser
		slog.Info("new user signed up",
			slog.String("user_id", userID),
			slog.String("username", user.Username),
			slog.String("provider", info.Provider),
		)
	}

	// 4. セッションを発行
	token, err := generateSessionToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}
	session, err := s.adapter.CreateSession(ctx, token, userID, s.now().Add(s.maxAge()))
	if err != nil {
		return nil, "", err
	}

	return session, result, nil
}

// GetCurrentUser はセッショントークンから現在のユーザーを取得する。
// 期限切れのセッションはmodel.ErrSessionNotFoundとして扱う。
// 残り有効期間が半分を切ったセッションは有効期限を延長する。
func (s *Service) GetCurrentUser(ctx context.Context, token string) (*AdapterUser, error) {
	if token == "" {
		return nil, model.ErrSessionNotFound
	}

	session, user, err := s.adapter.GetSessionAndUser(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !session.Expires.After(now) {
		return nil, model.ErrSessionNotFound
	}

	if session.Expires.Sub(now) < s.maxAge()/2 {
		if _, err := s.adapter.UpdateSession(ctx, token, session.UserID, now.Add(s.maxAge())); err != nil {
			slog.Warn("failed to extend session",
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()),
			)
		}
	}

	return user, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("session token is required")
	}

	if err := s.adapter.DeleteSession(ctx, token); err != nil {
		return err
	}

	slog.Info("user logged out")
	return nil
}

// safeAvatarURL は検証に失敗したアバターURLを空にする。
func (s *Service) safeAvatarURL(raw string) string {
	if raw == "" || s.avatars == nil {
		return raw
	}
	if err := s.avatars.ValidateURL(raw); err != nil {
		slog.Warn("avatar url rejected",
			slog.String("url", raw),
			slog.String("error", err.Error()),
		)
		return ""
	}
	return raw
}

func (s *Service) maxAge() time.Duration {
	return time.Duration(s.config.SessionMaxAge) * time.Second
}

// generateSessionToken は暗号的に安全なセッショントークンを生成する。
func generateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
