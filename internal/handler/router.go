package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/middleware"
)

// HealthChecker 는 헬스 체크가 필요로 하는 DB 핑 인터페이스.
// *sql.DB 가 그대로 만족한다.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps 는 NewRouter 에 필요한 의존 관계를 묶은 구조체.
type RouterDeps struct {
	// 미들웨어 의존
	Logger        *slog.Logger
	SessionFinder middleware.SessionFinder
	RateLimiter   *middleware.RateLimiter
	CSRF          middleware.CSRFConfig

	// 운영 엔드포인트
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer

	// 핸들러
	AuthHandler  *AuthHandler
	PageHandler  *PageHandler
	UIHandler    *UIHandler
	ImageHandler *ImageHandler
}

// NewRouter 는 전체 라우팅과 미들웨어 체인을 구성한 chi.Router 를 반환한다.
//
// 미들웨어 스택의 실행 순서:
//
//	Recovery → Logging → SecurityHeaders → (Session) → CSRF → RateLimit
//
// 로그인/가입 관련 루트는 세션 없이도 접근할 수 있고,
// 그 외의 페이지는 세션이 없으면 /login 으로 리다이렉트된다.
// /ui/* JSON 엔드포인트는 리다이렉트 대신 401 을 반환한다.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 운영 엔드포인트 ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if deps.HealthChecker != nil {
			if err := deps.HealthChecker.PingContext(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.SetupMetricsRoute(deps.MetricsGatherer))
	}

	// --- 비로그인 접근 가능 루트 ---
	// 세션은 있으면 컨텍스트에 싣는다 (로그인 페이지의 리다이렉트 판단용)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/login", deps.PageHandler.LoginPage)
		r.Post("/login", deps.AuthHandler.Login)
		r.Get("/register", deps.PageHandler.RegisterPage)
		r.Post("/register", deps.AuthHandler.Register)

		// 가입 페이지의 아이디 중복 확인
		r.Get("/ui/check-id", deps.UIHandler.CheckID)
	})

	// --- 로그인이 필요한 페이지 루트 ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, false))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRF))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 검색(홈) 페이지는 검색 전용 레이트 리밋을 추가로 적용
		r.With(deps.RateLimiter.SearchMiddleware()).Get("/", deps.PageHandler.Home)

		r.Post("/logout", deps.AuthHandler.Logout)

		r.Route("/platforms", func(r chi.Router) {
			r.Get("/", deps.PageHandler.PlatformsPage)
			r.Post("/connect", deps.PageHandler.ConnectPlatform)
			r.Post("/disconnect", deps.PageHandler.DisconnectPlatform)
		})

		r.Get("/settings", deps.PageHandler.SettingsPage)
		r.Post("/settings/password", deps.AuthHandler.ChangePassword)
		r.Get("/profile", deps.PageHandler.ProfilePage)

		// 매물 썸네일 프록시
		r.Get("/img", deps.ImageHandler.Proxy)
	})

	// --- 로그인이 필요한 JSON 루트 (401 응답) ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, true))
		r.Use(deps.RateLimiter.SearchMiddleware())

		r.Get("/ui/autocomplete", deps.UIHandler.Autocomplete)
	})

	return r
}
