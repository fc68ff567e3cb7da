package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
)

const (
	// csrfCookieName 은 CSRF 토큰을 보관하는 쿠키 이름.
	csrfCookieName = "csrf_token"

	// csrfFormField 는 폼 제출 시 CSRF 토큰을 실어 보내는 hidden 필드 이름.
	csrfFormField = "csrf_token"

	// csrfHeaderName 은 fetch 기반 요청에서 CSRF 토큰을 읽는 헤더 이름.
	csrfHeaderName = "X-CSRF-Token"
)

// CSRFConfig 는 CSRF 미들웨어의 설정.
type CSRFConfig struct {
	CookieSecure bool
	CookieDomain string
}

// NewCSRFMiddleware 는 CSRF 토큰 생성·검증 미들웨어를 반환한다.
// 안전한 메서드(GET, HEAD, OPTIONS)는 검증을 생략하고 토큰 쿠키를 설정한다.
// 상태 변경 메서드(POST, PUT, PATCH, DELETE)는 hidden 폼 필드 또는
// X-CSRF-Token 헤더의 토큰이 쿠키 값과 일치해야 통과한다.
func NewCSRFMiddleware(config CSRFConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 안전한 메서드는 검증을 생략
			if isSafeMethod(r.Method) {
				EnsureCSRFToken(w, r, config)
				next.ServeHTTP(w, r)
				return
			}

			// 상태 변경 메서드: 토큰 검증
			cookieToken, err := r.Cookie(csrfCookieName)
			if err != nil || cookieToken.Value == "" {
				slog.Warn("CSRF validation failed: missing cookie token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			submitted := r.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = r.PostFormValue(csrfFormField)
			}
			if submitted == "" {
				slog.Warn("CSRF validation failed: missing submitted token",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			if cookieToken.Value != submitted {
				slog.Warn("CSRF validation failed: token mismatch",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "CSRF token validation failed", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// EnsureCSRFToken 은 CSRF 토큰 쿠키가 없으면 새로 발급하고, 유효한 토큰 값을 반환한다.
// 페이지 핸들러가 hidden 폼 필드를 렌더링할 때 사용한다.
func EnsureCSRFToken(w http.ResponseWriter, r *http.Request, config CSRFConfig) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := generateCSRFToken()
	if err != nil {
		slog.Error("failed to generate CSRF token", slog.String("error", err.Error()))
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Domain:   config.CookieDomain,
		MaxAge:   86400, // 24시간
		HttpOnly: false, // 페이지 스크립트가 fetch 헤더에 싣기 위해 읽을 수 있어야 함
		Secure:   config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return token
}

// isSafeMethod 는 HTTP 메서드가 안전(읽기 전용)한지 판정한다.
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// generateCSRFToken 은 암호학적으로 안전한 CSRF 토큰을 생성한다.
func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
