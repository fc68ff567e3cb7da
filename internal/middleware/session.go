// Package middleware 는 HTTP 미들웨어를 제공한다.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/minsu/joongomoa/internal/model"
)

// SessionCookieName 은 세션 ID를 보관하는 쿠키 이름.
const SessionCookieName = "session_id"

// contextKey 는 컨텍스트에 값을 저장하기 위한 타입 안전 키.
type contextKey string

// sessionContextKey 는 요청 컨텍스트에 세션을 저장하는 키.
var sessionContextKey = contextKey("session")

// SessionFinder 는 세션 조회에 필요한 인터페이스.
// repository.SessionRepository 의 부분집합으로 정의한다.
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
}

// NewSessionMiddleware 는 HttpOnly 쿠키에서 세션을 읽어 유효성을 검증하고
// 요청 컨텍스트에 세션을 주입하는 미들웨어를 반환한다.
// 세션이 없거나 무효한 경우:
//   - apiMode 가 true 이면 401 Unauthorized 를 반환한다 (/ui 계열 엔드포인트용)
//   - false 이면 로그인 페이지로 303 리다이렉트한다 (페이지 라우트용)
func NewSessionMiddleware(sessionFinder SessionFinder, apiMode bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. 쿠키에서 세션 ID를 취득
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				rejectUnauthenticated(w, r, apiMode)
				return
			}

			// 2. 세션 유효성 검증
			session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
			if err != nil {
				slog.Error("failed to find session",
					slog.String("error", err.Error()),
				)
				rejectUnauthenticated(w, r, apiMode)
				return
			}
			if session == nil {
				rejectUnauthenticated(w, r, apiMode)
				return
			}

			// 3. 세션을 컨텍스트에 주입
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewOptionalSessionMiddleware 는 세션이 있으면 주입하고 없어도 통과시키는 미들웨어를 반환한다.
// 홈 화면처럼 비로그인 상태로도 접근 가능한 페이지에 사용한다.
func NewOptionalSessionMiddleware(sessionFinder SessionFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				session, err := sessionFinder.FindByID(r.Context(), cookie.Value)
				if err == nil && session != nil {
					ctx := context.WithValue(r.Context(), sessionContextKey, session)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rejectUnauthenticated 은 미인증 요청을 모드에 따라 거부한다.
func rejectUnauthenticated(w http.ResponseWriter, r *http.Request, apiMode bool) {
	if apiMode {
		WriteErrorResponse(w, http.StatusUnauthorized, model.NewSessionExpiredError())
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// SessionFromContext 는 요청 컨텍스트에서 세션을 취득한다.
// 세션 미들웨어를 통과하지 않은 요청에서는 nil 을 반환한다.
func SessionFromContext(ctx context.Context) *model.Session {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return session
}

// ContextWithSession 은 컨텍스트에 세션을 주입한다.
// 테스트 등 미들웨어 외의 컨텍스트 생성에 사용한다.
func ContextWithSession(ctx context.Context, session *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
