// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// 永続化層・認証アダプタが返すセンチネルエラー。
var (
	// ErrMissingPendingUser は仮登録ユーザーを特定できないことを示す。
	// ユーザー名の確保を経ずにIdPのプロフィール確定が呼ばれた場合に返る。
	ErrMissingPendingUser = errors.New("pending user not found")

	// ErrSessionNotFound はセッショントークンに対応するセッションが存在しないことを示す。
	ErrSessionNotFound = errors.New("session not found")

	// ErrUserNotFound はユーザーが存在しないことを示す。
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicate は一意制約違反を示す。
	ErrDuplicate = errors.New("duplicate key")
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidUsername  = "INVALID_USERNAME"
	ErrCodeInvalidName      = "INVALID_NAME"
	ErrCodeUsernameTaken    = "USERNAME_TAKEN"
	ErrCodeInvalidIntervals = "INVALID_INTERVALS"
	ErrCodeNoDaysSelected   = "NO_DAYS_SELECTED"
	ErrCodeIntervalTooShort = "INTERVAL_TOO_SHORT"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodePendingUser      = "PENDING_USER_NOT_FOUND"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewInvalidRequestError はリクエストボディが不正な場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInvalidUsernameError はユーザー名の形式エラーを生成する。
func NewInvalidUsernameError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  reason,
		Category: "validation",
		Action:   "ユーザー名は3文字以上の英字とハイフンのみで入力してください。",
	}
}

// NewInvalidNameError は氏名の形式エラーを生成する。
func NewInvalidNameError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidName,
		Message:  "名前は3文字以上で入力してください。",
		Category: "validation",
		Action:   "氏名を確認してください。",
	}
}

// NewUsernameTakenError はユーザー名が既に使用されている場合のエラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("ユーザー名は既に使用されています: %s", username),
		Category: "validation",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewPendingUserNotFoundError はユーザー名確保前にIdP認証が行われた場合のエラーを生成する。
func NewPendingUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodePendingUser,
		Message:  "登録途中のユーザーが見つかりません。",
		Category: "auth",
		Action:   "ユーザー名の登録からやり直してください。",
	}
}
