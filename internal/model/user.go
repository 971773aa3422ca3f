// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// ユーザー名の確保時に仮登録され（FinalizedAtがnil）、
// IdPでの認証完了時にプロフィールが確定する。
type User struct {
	ID          string
	Username    string
	Name        string
	Email       *string
	AvatarURL   *string
	Bio         string
	FinalizedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPending はIdP認証前の仮登録ユーザーかどうかを返す。
func (u *User) IsPending() bool {
	return u.FinalizedAt == nil
}

// Account は外部IdPアカウントとの紐付け情報を表す。
// (ProviderID, ProviderAccountID) の組で一意。
type Account struct {
	ID                 string
	UserID             string
	ProviderType       string
	ProviderID         string
	ProviderAccountID  string
	AccessToken        string
	RefreshToken       string
	AccessTokenExpires time.Time
	CreatedAt          time.Time
}

// Session はユーザーのログインセッションを表す。
// SessionTokenが検索キーであり一意。
type Session struct {
	ID           string
	SessionToken string
	UserID       string
	Expires      time.Time
	CreatedAt    time.Time
}

// Expired は指定時刻においてセッションが期限切れかどうかを返す。
func (s *Session) Expired(now time.Time) bool {
	return !s.Expires.After(now)
}

// WeekdayInterval は曜日ごとの予約受付時間帯を表す。
// WeekDayは0=日曜〜6=土曜。時刻は0時からの経過分。
type WeekdayInterval struct {
	ID                 string
	UserID             string
	WeekDay            int
	StartTimeInMinutes int
	EndTimeInMinutes   int
	CreatedAt          time.Time
}
