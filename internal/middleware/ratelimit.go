package middleware

import (
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig 는 레이트 리밋 설정을 보관한다.
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // 전체 요청의 레이트 (req/sec). 120/60 = 2 req/sec
	GeneralBurst    int           // 전체 요청의 버스트 크기
	SearchRate      rate.Limit    // 검색 요청의 레이트 (req/sec). 30/60
	SearchBurst     int           // 검색 요청의 버스트 크기
	CleanupInterval time.Duration // 만료 엔트리 정리 주기
}

// DefaultRateLimiterConfig 는 기본 레이트 리밋 설정을 반환한다.
// 요건: 전체 120 req/min, 검색 30 req/min (브라우저당)
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0), // 2 req/sec
		GeneralBurst:    120,
		SearchRate:      rate.Limit(30.0 / 60.0), // 0.5 req/sec
		SearchBurst:     30,
		CleanupInterval: 5 * time.Minute,
	}
}

// clientLimiter 는 클라이언트별 리미터와 마지막 접근 시각을 보관한다.
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter 는 클라이언트(세션 또는 IP)별 레이트 리밋을 관리한다.
// 전체 요청용과 검색 요청용 두 종류를 제공한다.
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.RWMutex
	generalLimiters map[string]*clientLimiter

	searchMu       sync.RWMutex
	searchLimiters map[string]*clientLimiter

	stopCh chan struct{}
}

// NewRateLimiter 는 새 RateLimiter 를 생성한다.
// 백그라운드에서 만료 엔트리 정리를 시작한다.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*clientLimiter),
		searchLimiters:  make(map[string]*clientLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop 은 정리용 백그라운드 고루틴을 중지한다.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware 는 전체 요청용 레이트 리밋 미들웨어를 반환한다.
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			limiter := rl.getOrCreate(&rl.generalMu, rl.generalLimiters, key, rl.config.GeneralRate, rl.config.GeneralBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.GeneralRate)
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", "general"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SearchMiddleware 는 검색 요청 전용 레이트 리밋 미들웨어를 반환한다.
// 전체 요청용 리밋과는 독립적으로 동작한다.
func (rl *RateLimiter) SearchMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			limiter := rl.getOrCreate(&rl.searchMu, rl.searchLimiters, key, rl.config.SearchRate, rl.config.SearchBurst)

			if !limiter.Allow() {
				writeRateLimitResponse(w, rl.config.SearchRate)
				slog.Warn("rate limit exceeded",
					slog.String("client", key),
					slog.String("limit_type", "search"),
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GeneralLimiterCount 는 현재 관리 중인 전체 요청용 리미터 수를 반환한다. 테스트용.
func (rl *RateLimiter) GeneralLimiterCount() int {
	rl.generalMu.RLock()
	defer rl.generalMu.RUnlock()
	return len(rl.generalLimiters)
}

// SearchLimiterCount 는 현재 관리 중인 검색용 리미터 수를 반환한다. 테스트용.
func (rl *RateLimiter) SearchLimiterCount() int {
	rl.searchMu.RLock()
	defer rl.searchMu.RUnlock()
	return len(rl.searchLimiters)
}

// clientKey 는 레이트 리밋의 키를 결정한다.
// 세션이 있으면 세션 ID, 없으면 원격 IP를 사용한다 (자동완성은 비로그인 상태에서도 호출됨).
func clientKey(r *http.Request) string {
	if session := SessionFromContext(r.Context()); session != nil {
		return session.ID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getOrCreate 는 키에 해당하는 리미터를 취득하거나 생성한다.
func (rl *RateLimiter) getOrCreate(mu *sync.RWMutex, limiters map[string]*clientLimiter, key string, limit rate.Limit, burst int) *rate.Limiter {
	mu.RLock()
	cl, exists := limiters[key]
	mu.RUnlock()

	if exists {
		mu.Lock()
		cl.lastAccess = time.Now()
		mu.Unlock()
		return cl.limiter
	}

	mu.Lock()
	defer mu.Unlock()

	// 더블 체크
	if cl, exists := limiters[key]; exists {
		cl.lastAccess = time.Now()
		return cl.limiter
	}

	limiter := rate.NewLimiter(limit, burst)
	limiters[key] = &clientLimiter{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	return limiter
}

// cleanupLoop 는 백그라운드에서 만료 엔트리를 주기적으로 정리한다.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup 은 마지막 접근이 CleanupInterval 의 2배를 넘은 엔트리를 삭제한다.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	rl.generalMu.Lock()
	for key, cl := range rl.generalLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.generalLimiters, key)
		}
	}
	rl.generalMu.Unlock()

	rl.searchMu.Lock()
	for key, cl := range rl.searchLimiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.searchLimiters, key)
		}
	}
	rl.searchMu.Unlock()
}

// writeRateLimitResponse 는 429 Too Many Requests 응답을 쓴다.
// Retry-After 헤더에는 토큰이 보충될 때까지의 추정 초를 설정한다.
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := int(math.Ceil(1.0 / float64(r)))
	if retryAfterSec < 1 {
		retryAfterSec = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)

	json.NewEncoder(w).Encode(map[string]string{
		"code":     "rate_limit_exceeded",
		"message":  "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		"category": "system",
		"action":   "표시된 시간 이후에 다시 시도해주세요.",
	})
}
