// Package user はユーザー名の確保、プロフィール更新、退会のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/ignitecall/internal/model"
	"github.com/hitoshi/ignitecall/internal/repository"
)

const (
	// MinUsernameLength はユーザー名の最小文字数。
	MinUsernameLength = 3
	// MaxUsernameLength はユーザー名の最大文字数。users.usernameの列長に合わせる。
	MaxUsernameLength = 64
	// MinNameLength は氏名の最小文字数。
	MinNameLength = 3
	// MaxNameLength は氏名の最大文字数。
	MaxNameLength = 100
	// MaxBioLength は自己紹介文の最大文字数。
	MaxBioLength = 500
)

var usernamePattern = regexp.MustCompile(`^[a-z-]+$`)

// TextSanitizer は自由入力テキストをプレーンテキストに変換するインターフェース。
type TextSanitizer interface {
	SanitizeText(raw string, maxRunes int) string
}

// ClaimRecorder はユーザー名確保結果のメトリクス記録インターフェース。
type ClaimRecorder interface {
	RecordUsernameClaim(result string)
}

// ユーザー名確保結果のラベル
const (
	ClaimCreated = "created"
	ClaimTaken   = "taken"
	ClaimInvalid = "invalid"
	ClaimError   = "error"
)

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	sanitizer   TextSanitizer
	recorder    ClaimRecorder
	now         func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。recorderはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	sanitizer TextSanitizer,
	recorder ClaimRecorder,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		sanitizer:   sanitizer,
		recorder:    recorder,
		now:         time.Now,
	}
}

// NormalizeUsername はユーザー名を小文字化して形式を検証する。
func NormalizeUsername(raw string) (string, error) {
	username := strings.ToLower(strings.TrimSpace(raw))
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return "", model.NewInvalidUsernameError("ユーザー名は3文字以上で入力してください。")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return "", model.NewInvalidUsernameError("ユーザー名は64文字以内で入力してください。")
	}
	if !usernamePattern.MatchString(username) {
		return "", model.NewInvalidUsernameError("ユーザー名には英字とハイフンのみ使用できます。")
	}
	return username, nil
}

// ClaimUsername はユーザー名を確保し、IdP認証前の仮登録ユーザーを作成する。
// ユーザー名が使用済みの場合はUSERNAME_TAKENのAPIErrorを返す。
func (s *Service) ClaimUsername(ctx context.Context, rawUsername, rawName string) (*model.User, error) {
	user, err := s.claimUsername(ctx, rawUsername, rawName)
	if s.recorder != nil {
		s.recorder.RecordUsernameClaim(claimResult(err))
	}
	return user, err
}

func (s *Service) claimUsername(ctx context.Context, rawUsername, rawName string) (*model.User, error) {
	username, err := NormalizeUsername(rawUsername)
	if err != nil {
		return nil, err
	}

	name := s.sanitize(rawName, MaxNameLength)
	if utf8.RuneCountInString(name) < MinNameLength {
		return nil, model.NewInvalidNameError()
	}

	now := s.now()
	user := &model.User{
		ID:        uuid.New().String(),
		Username:  username,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.CreatePending(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, model.NewUsernameTakenError(username)
		}
		return nil, fmt.Errorf("ユーザー名の確保に失敗しました: %w", err)
	}

	slog.Info("username claimed",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)
	return user, nil
}

// UpdateProfile は自己紹介文を更新する。HTMLは除去して保存する。
func (s *Service) UpdateProfile(ctx context.Context, userID, rawBio string) (string, error) {
	bio := s.sanitize(rawBio, MaxBioLength)

	if err := s.userRepo.UpdateBio(ctx, userID, bio); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return "", model.NewUserNotFoundError()
		}
		return "", fmt.Errorf("プロフィールの更新に失敗しました: %w", err)
	}
	return bio, nil
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: sessions → user（+ CASCADE: accounts, user_time_intervals）
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
	)
	return nil
}

func (s *Service) sanitize(raw string, maxRunes int) string {
	if s.sanitizer == nil {
		return strings.TrimSpace(raw)
	}
	return s.sanitizer.SanitizeText(raw, maxRunes)
}

func claimResult(err error) string {
	if err == nil {
		return ClaimCreated
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeUsernameTaken {
			return ClaimTaken
		}
		return ClaimInvalid
	}
	return ClaimError
}
