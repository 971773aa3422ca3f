package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/ignitecall/internal/metrics"
	"github.com/hitoshi/ignitecall/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// PendingCookie は仮登録クッキーの発行と消費を行うインターフェース。*auth.PendingCookieが満たす。
type PendingCookie interface {
	PendingClaimIssuer
	PendingClaimReader
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 運用
	Logger          *slog.Logger
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer            // nilの場合は/metricsを公開しない
	HTTPMetrics     middleware.HTTPMetricsRecorder // nilの場合は記録しない

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	HSTS              bool

	// 認証
	AuthService   AuthServiceInterface
	PendingCookie PendingCookie
	AuthConfig    AuthHandlerConfig

	// ユーザー
	UserService UserServiceInterface

	// 予約受付時間帯
	AvailabilityService AvailabilityServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// 全ルート共通のミドルウェア:
//
//	Recovery → RequestID → RealIP → SecurityHeaders → Logging → Metrics → CORS
//
// 認証が必要なルートは Session → RateLimit(General) → CSRF を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPMetrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.PendingCookie, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService, deps.PendingCookie, deps.AuthConfig)
	intervalHandler := NewTimeIntervalHandler(deps.AvailabilityService)
	csrf := middleware.NewCSRFMiddleware(deps.CSRFConfig)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}
	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// ユーザー名の確保（IdP認証前。クライアントIP単位のレート制限）
	r.With(deps.RateLimiter.ClaimMiddleware(), csrf).Post("/users", userHandler.ClaimUsername)

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(csrf)

		r.Get("/users/time-intervals", intervalHandler.List)
		r.Post("/users/time-intervals", intervalHandler.Save)
		r.Put("/users/profile", userHandler.UpdateProfile)
		r.Delete("/users/me", userHandler.Withdraw)
	})

	return r
}
