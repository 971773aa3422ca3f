package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/ignitecall/internal/middleware"
	"github.com/hitoshi/ignitecall/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// ClaimUsername はユーザー名を確保し、仮登録ユーザーを作成する。
	ClaimUsername(ctx context.Context, username, name string) (*model.User, error)
	// UpdateProfile は自己紹介文を更新し、保存した値を返す。
	UpdateProfile(ctx context.Context, userID, bio string) (string, error)
	// Withdraw はユーザーの退会処理を実行する。
	// accounts、sessions、user_time_intervalsもあわせて削除される。
	Withdraw(ctx context.Context, userID string) error
}

// PendingClaimIssuer は仮登録ユーザーIDを署名付きクッキーで発行するインターフェース。
type PendingClaimIssuer interface {
	Issue(w http.ResponseWriter, userID string) error
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
	pending PendingClaimIssuer
	config  AuthHandlerConfig
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface, pending PendingClaimIssuer, config AuthHandlerConfig) *UserHandler {
	return &UserHandler{
		service: service,
		pending: pending,
		config:  config,
	}
}

type claimUsernameRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}

type claimUsernameResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// ClaimUsername はユーザー名を確保し、仮登録クッキーを発行する。
// POST /users
func (h *UserHandler) ClaimUsername(w http.ResponseWriter, r *http.Request) {
	var req claimUsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return
	}

	user, err := h.service.ClaimUsername(r.Context(), req.Username, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.pending.Issue(w, user.ID); err != nil {
		slog.Error("failed to issue pending user cookie",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	writeJSON(w, http.StatusCreated, claimUsernameResponse{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
	})
}

type updateProfileRequest struct {
	Bio string `json:"bio"`
}

// UpdateProfile は自己紹介文を更新する。
// PUT /users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(err.Error()))
		return
	}

	bio, err := h.service.UpdateProfile(r.Context(), userID, req.Bio)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updateProfileRequest{Bio: bio})
}

// Withdraw はユーザーの退会処理を実行し、セッションCookieを削除する。
// DELETE /users/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
