// Package app 은 애플리케이션의 초기화와 기동을 담당한다.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/minsu/joongomoa/internal/auth"
	"github.com/minsu/joongomoa/internal/backend"
	"github.com/minsu/joongomoa/internal/config"
	"github.com/minsu/joongomoa/internal/database"
	"github.com/minsu/joongomoa/internal/debounce"
	"github.com/minsu/joongomoa/internal/handler"
	"github.com/minsu/joongomoa/internal/logger"
	"github.com/minsu/joongomoa/internal/metrics"
	"github.com/minsu/joongomoa/internal/middleware"
	"github.com/minsu/joongomoa/internal/platform"
	"github.com/minsu/joongomoa/internal/repository"
	"github.com/minsu/joongomoa/internal/search"
	"github.com/minsu/joongomoa/internal/security"
	"github.com/minsu/joongomoa/internal/suggest"
	"github.com/minsu/joongomoa/internal/worker/cleanup"
)

// sessionCleanupInterval 은 만료 세션 정리 잡의 실행 주기.
const sessionCleanupInterval = time.Hour

// Init 은 애플리케이션의 초기화를 수행한다.
// .env 파일(있는 경우)과 환경 변수에서 Config 를 읽고, JSON 구조화 로그를 설정한다.
// writer 가 지정된 경우 로그 출력처로 그 writer 를 사용한다.
func Init(w io.Writer) (*config.Config, error) {
	// 1. .env 파일 로드 (없어도 에러 아님, 환경 변수가 우선)
	_ = godotenv.Load()

	// 2. 로그 초기화 (설정 로드 전에 로그를 쓸 수 있게 한다)
	logger.SetupDefault(w)

	// 3. 환경 변수에서 설정 로드
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run 은 애플리케이션의 메인 엔트리 포인트.
// 커맨드라인 인자에서 서브커맨드를 해석해 대응하는 모드로 기동한다.
// args 에는 os.Args[1:] 을 전달한다.
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck 는 경량 서브커맨드이므로 풀 초기화를 생략한다
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe 는 웹 서버 모드로 기동한다.
// DB 접속을 열고, 전체 의존 관계를 와이어링한 뒤 HTTP 서버를 시작한다.
// SIGINT 또는 SIGTERM 시그널을 받으면 그레이스풀 셧다운을 수행한다.
func runServe(cfg *config.Config) error {
	// 1. DB 접속
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 메트릭 수집기의 초기화
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. 리포지토리의 초기화
	sessionRepo := repository.NewPostgresSessionRepo(db)

	// 4. 백엔드 클라이언트의 초기화
	backendClient := backend.NewClient(
		&http.Client{Timeout: cfg.BackendTimeout},
		slog.Default(),
		collector,
		cfg.BackendBaseURL,
	)

	// 5. 도메인 서비스의 초기화
	authService := auth.NewService(backendClient, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge}, collector)
	searchService := search.NewService(backendClient, collector)
	suggestService := suggest.NewService(backendClient, slog.Default())
	platformService := platform.NewService(backendClient, slog.Default())

	// 6. 썸네일 프록시용 SSRF 방지 클라이언트
	ssrfGuard := security.NewSSRFGuard()
	imageClient := ssrfGuard.NewSafeClient(cfg.BackendTimeout)

	// 7. 미들웨어 설정
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.SearchRate = rate.Limit(float64(cfg.RateLimitSearch) / 60.0)
	rateLimiterCfg.SearchBurst = cfg.RateLimitSearch
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	csrfConfig := middleware.CSRFConfig{
		CookieSecure: cfg.CookieSecure,
		CookieDomain: cfg.CookieDomain,
	}

	// 8. 핸들러의 구축
	renderer := handler.NewRenderer(slog.Default())
	authConfig := handler.AuthHandlerConfig{
		CookieDomain:  cfg.CookieDomain,
		CookieSecure:  cfg.CookieSecure,
		SessionMaxAge: cfg.SessionMaxAge,
		CSRF:          csrfConfig,
	}

	deps := &handler.RouterDeps{
		Logger:        slog.Default(),
		SessionFinder: sessionRepo,
		RateLimiter:   rateLimiter,
		CSRF:          csrfConfig,

		HealthChecker:   db,
		MetricsGatherer: registry,

		AuthHandler: handler.NewAuthHandler(authService, renderer, authConfig),
		PageHandler: handler.NewPageHandler(
			searchService, platformService, authService, renderer, authConfig),
		UIHandler: handler.NewUIHandler(
			suggestService, backendClient,
			debounce.New(cfg.AutocompleteDebounce),
			debounce.New(cfg.IDCheckDebounce),
			collector,
		),
		ImageHandler: handler.NewImageHandler(ssrfGuard, imageClient),
	}

	router := handler.NewRouter(deps)

	// 9. HTTP 서버의 기동
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 그레이스풀 셧다운을 위한 시그널 핸들링
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// 만료 세션 정리 잡을 백그라운드로 기동
	cleanupJob := cleanup.NewCleanupJob(db, slog.Default())
	go cleanupJob.Start(ctx, sessionCleanupInterval)

	go func() {
		slog.Info("web server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down web server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate 는 데이터베이스 마이그레이션을 실행한다.
// 적용되지 않은 모든 마이그레이션을 순서대로 적용한다.
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck 는 헬스 체크를 실행한다.
// distroless 환경에서의 Docker 헬스 체크용 서브커맨드.
// /health 엔드포인트에 HTTP 요청을 보내 결과를 반환한다.
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL 은 데이터베이스 URL 의 인증 정보를 마스킹한다.
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
