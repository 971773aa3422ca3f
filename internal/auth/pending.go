package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

// PendingCookieName は仮登録ユーザーIDを保持するクッキー名。
// net/httpはクッキー名に "@" や ":" を許可しないため、トークン文字のみで構成する。
const PendingCookieName = "ignitecall.userId"

// DefaultPendingCookieMaxAge は仮登録クッキーの既定の有効期間（秒）。
const DefaultPendingCookieMaxAge = 3600

// PendingClaim は仮登録ユーザーを確定してよいことを示す一回限りの証明。
// PendingCookie.Readでのみ取得できる。
type PendingClaim struct {
	UserID string
}

// PendingCookieConfig は仮登録クッキーの設定。
type PendingCookieConfig struct {
	HashKey []byte // HMAC署名鍵（32バイト以上推奨）
	MaxAge  int    // 有効期間（秒）。0の場合はDefaultPendingCookieMaxAge
	Secure  bool
	Domain  string
}

// PendingCookie はユーザー名確保からIdP認証完了までの間、仮登録ユーザーIDを
// 署名付きクッキーで受け渡す。
type PendingCookie struct {
	codec  *securecookie.SecureCookie
	maxAge int
	secure bool
	domain string
}

// NewPendingCookie はPendingCookieを生成する。
func NewPendingCookie(cfg PendingCookieConfig) *PendingCookie {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultPendingCookieMaxAge
	}
	codec := securecookie.New(cfg.HashKey, nil)
	codec.MaxAge(maxAge)
	return &PendingCookie{
		codec:  codec,
		maxAge: maxAge,
		secure: cfg.Secure,
		domain: cfg.Domain,
	}
}

// Issue は仮登録ユーザーIDを署名してクッキーに設定する。
func (p *PendingCookie) Issue(w http.ResponseWriter, userID string) error {
	encoded, err := p.codec.Encode(PendingCookieName, userID)
	if err != nil {
		return fmt.Errorf("failed to encode pending user cookie: %w", err)
	}

	// IdPからのリダイレクト（トップレベルGET）で送信されるようLaxにする
	http.SetCookie(w, &http.Cookie{
		Name:     PendingCookieName,
		Value:    encoded,
		Path:     "/",
		Domain:   p.domain,
		MaxAge:   p.maxAge,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read はクッキーを検証し、PendingClaimを返す。クッキーは削除しない。
// 確定に成功した後でClearを呼び、失敗時はクッキーを残して再試行できるようにする。
// クッキーがない場合、署名が不正な場合、期限切れの場合は (nil, nil) を返す。
// 署名は正しいが内容がユーザーIDとして不正な場合はエラーを返す。
func (p *PendingCookie) Read(r *http.Request) (*PendingClaim, error) {
	cookie, err := r.Cookie(PendingCookieName)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending user cookie: %w", err)
	}

	var userID string
	if err := p.codec.Decode(PendingCookieName, cookie.Value, &userID); err != nil {
		slog.Warn("pending user cookie rejected",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	if _, err := uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("invalid user ID in pending user cookie: %w", err)
	}

	return &PendingClaim{UserID: userID}, nil
}

// Clear は仮登録クッキーを削除する。
func (p *PendingCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     PendingCookieName,
		Value:    "",
		Path:     "/",
		Domain:   p.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
