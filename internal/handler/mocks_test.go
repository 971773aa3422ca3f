package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/ignitecall/internal/auth"
	"github.com/hitoshi/ignitecall/internal/availability"
	"github.com/hitoshi/ignitecall/internal/middleware"
	"github.com/hitoshi/ignitecall/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string, claim *auth.PendingClaim) (*auth.AdapterSession, error)
	logoutFn         func(ctx context.Context, token string) error
	getCurrentUserFn func(ctx context.Context, token string) (*auth.AdapterUser, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string, claim *auth.PendingClaim) (*auth.AdapterSession, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code, claim)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, token string) (*auth.AdapterUser, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, token)
	}
	return nil, model.ErrSessionNotFound
}

type mockPendingCookie struct {
	issueFn func(w http.ResponseWriter, userID string) error
	readFn  func(r *http.Request) (*auth.PendingClaim, error)
	cleared bool
}

func (m *mockPendingCookie) Issue(w http.ResponseWriter, userID string) error {
	if m.issueFn != nil {
		return m.issueFn(w, userID)
	}
	return nil
}

func (m *mockPendingCookie) Read(r *http.Request) (*auth.PendingClaim, error) {
	if m.readFn != nil {
		return m.readFn(r)
	}
	return nil, nil
}

func (m *mockPendingCookie) Clear(w http.ResponseWriter) {
	m.cleared = true
}

type mockUserService struct {
	claimUsernameFn func(ctx context.Context, username, name string) (*model.User, error)
	updateProfileFn func(ctx context.Context, userID, bio string) (string, error)
	withdrawFn      func(ctx context.Context, userID string) error
}

func (m *mockUserService) ClaimUsername(ctx context.Context, username, name string) (*model.User, error) {
	if m.claimUsernameFn != nil {
		return m.claimUsernameFn(ctx, username, name)
	}
	return nil, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID, bio string) (string, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, bio)
	}
	return bio, nil
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

type mockAvailabilityService struct {
	saveWeekFn  func(ctx context.Context, userID string, slots []availability.WeekdaySlot) error
	listSlotsFn func(ctx context.Context, userID string) ([]availability.WeekdaySlot, error)
}

func (m *mockAvailabilityService) SaveWeek(ctx context.Context, userID string, slots []availability.WeekdaySlot) error {
	if m.saveWeekFn != nil {
		return m.saveWeekFn(ctx, userID, slots)
	}
	return nil
}

func (m *mockAvailabilityService) ListSlots(ctx context.Context, userID string) ([]availability.WeekdaySlot, error) {
	if m.listSlotsFn != nil {
		return m.listSlotsFn(ctx, userID)
	}
	return availability.DefaultSlots(), nil
}

type mockSessionFinder struct {
	sessions map[string]string // token → userID
}

func (m *mockSessionFinder) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	userID, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	return &model.Session{
		ID:           "session-" + userID,
		SessionToken: token,
		UserID:       userID,
		Expires:      time.Now().Add(time.Hour),
	}, nil
}

// --- ヘルパー ---

var testAuthConfig = AuthHandlerConfig{
	BaseURL:       "http://localhost:3000",
	SessionMaxAge: 86400,
}

// withUserID は認証済みユーザーIDをコンテキストに設定したリクエストを返す。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// findCookie はレスポンスから指定名のCookieを探す。
func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// decodeErrorCode はエラーレスポンスのコードを取り出す。
func decodeErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body.Code
}
